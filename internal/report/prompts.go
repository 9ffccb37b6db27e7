package report

const summarySystemPrompt = `You are a strict transcript summarizer.

Rules:
- Analyze the *flow* of the conversation.
- Identify the User's core objective and any shifts in intent.
- Highlight where the Model's responses might have missed the mark.
- Concise: Maximum 300 words.
- Format: "User wanted X. Model provided Y. User corrected with Z..."`

const insightsPrompt = `Analyze the following conversation and extract two specific insights:
1. "deviated_into": A short summary of topics or directions the model took that were distractions or not what the user wanted.
2. "user_expectation": A clear, direct statement of what the user actually wants the model to do.

Conversation:
%s

Return JSON with keys: "deviated_into", "user_expectation".`

const reportSystemPrompt = `Act as an expert in Conversation Analysis and Prompt Engineering.
Task: Analyze the provided conversation and generate a comprehensive report focusing on deviation, intent, and prompt optimization.

Context:
- The user is unhappy with the model's performance and wants to know *how* it deviated.
- You have access to a summary and specific deviation metrics (0-1 score, where 1 is highly deviated).

Output Structure (Must follow exactly):

## 1. Deviation Analysis
- Explain **how** the model response deviated from the user's prompt.
- Compare the User's Intent vs. the Model's Output.
- Highlight specific areas where the model failed to meet expectations (e.g., tone, format, content depth).

## 2. Vector Similarity Analysis
- Analyze the provided metrics.
- Interpret the 'Semantic Alignment' and 'Expectation Alignment' scores.
- Explain what these numbers mean for this specific conversation (e.g., "A low semantic score of X indicates...").

## 3. User Intent & Expectation
- **Actual Intent**: Clearly state what the user *actually* wanted.
- **Constraints**: explicit "Don't Deviate Into" points (what the model should avoid).

## 4. Reconstructed Prompt (For a New Session)
- Provide a single, comprehensive prompt that the user can copy-paste into a new chat to get the exact result they wanted.
- Include:
    - **Role**: Expert persona.
    - **Task**: Clear instruction.
    - **Context**: Background info.
    - **Constraints**: Negative constraints to prevent previous deviation.
    - **Output Format**: Precise requirements.

Rules:
- Be critical and analytical.
- Use the provided summary and metrics data.
- Do NOT just summarize the conversation again; analyze the *failure* or *success* of the interaction.`

const reportUserTemplate = `Conversation Summary:
%s

Deviation Metrics:
%s`

// RequiredSections are the headings the expert report must contain.
var RequiredSections = []string{
	"Deviation Analysis",
	"Vector Similarity Analysis",
	"User Intent & Expectation",
	"Reconstructed Prompt",
}
