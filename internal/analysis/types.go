package analysis

// Role identifies who wrote a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single conversation entry. Roles other than user and model
// (e.g. system) are carried through to the transcript but never paired.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnPair is an adjacent user message followed by a model message.
type TurnPair struct {
	User  string
	Model string
}

// TurnResult holds the scores of a single turn pair.
type TurnResult struct {
	SemanticAlignment    float64 `json:"semantic_alignment"`
	ExpectationAlignment float64 `json:"expectation_alignment"`
	ComplexityGap        float64 `json:"complexity_gap"`
	DeviationScore       float64 `json:"deviation_score"`
}

// Trend describes how deviation moved from the first turn to the last.
type Trend string

const (
	TrendIncreasing         Trend = "increasing"
	TrendStableOrDecreasing Trend = "stable_or_decreasing"
)

// ConversationMetrics aggregates all turn results of a conversation.
type ConversationMetrics struct {
	AverageSemanticAlignment    float64 `json:"average_semantic_alignment"`
	AverageExpectationAlignment float64 `json:"average_expectation_alignment"`
	AverageDeviationScore       float64 `json:"average_deviation_score"`
	MaxDeviationScore           float64 `json:"max_deviation_score"`
	DeviationTrend              Trend   `json:"deviation_trend"`
	TurnCount                   int     `json:"turn_count"`
}

// NumericMetrics is ConversationMetrics without its categorical fields.
type NumericMetrics struct {
	AverageSemanticAlignment    float64 `json:"average_semantic_alignment"`
	AverageExpectationAlignment float64 `json:"average_expectation_alignment"`
	AverageDeviationScore       float64 `json:"average_deviation_score"`
	MaxDeviationScore           float64 `json:"max_deviation_score"`
	TurnCount                   int     `json:"turn_count"`
}

// Numeric returns the numeric fields of m.
func (m ConversationMetrics) Numeric() NumericMetrics {
	return NumericMetrics{
		AverageSemanticAlignment:    m.AverageSemanticAlignment,
		AverageExpectationAlignment: m.AverageExpectationAlignment,
		AverageDeviationScore:       m.AverageDeviationScore,
		MaxDeviationScore:           m.MaxDeviationScore,
		TurnCount:                   m.TurnCount,
	}
}

// ConversationAnalysis is the output of AnalyzeConversation.
type ConversationAnalysis struct {
	Turns   []TurnResult        `json:"turn_level_results"`
	Metrics ConversationMetrics `json:"conversation_metrics"`
}
