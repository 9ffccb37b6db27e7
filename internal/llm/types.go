package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Temperature controls the randomness of the output.
	// If nil, the provider default is used.
	Temperature *float64

	// JSONMode asks the provider for a single JSON object
	// (response_format {"type":"json_object"}).
	JSONMode bool
}

// Temperature returns a pointer for ChatParams.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
