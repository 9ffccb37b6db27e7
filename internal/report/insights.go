package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```json|```")

// Insights is the best-effort structured description of where the model
// drifted. Both fields may be empty, in which case it encodes as {}.
type Insights struct {
	DeviatedInto    string `json:"deviated_into,omitempty"`
	UserExpectation string `json:"user_expectation,omitempty"`
}

// IsEmpty reports whether no insight was extracted.
func (i Insights) IsEmpty() bool {
	return i.DeviatedInto == "" && i.UserExpectation == ""
}

// InsightResult carries the extracted insights and, when extraction was
// degraded to the empty value, the reason.
type InsightResult struct {
	Insights Insights
	Err      error
}

// Degraded reports whether extraction failed and Insights is the empty value.
func (r InsightResult) Degraded() bool {
	return r.Err != nil
}

// StripCodeFences removes markdown ```json fences around LLM output.
func StripCodeFences(raw string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
}

// ParseInsights decodes LLM output into Insights. Any failure yields the
// empty Insights with the reason recorded.
func ParseInsights(raw string) InsightResult {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return InsightResult{Err: fmt.Errorf("empty insights response")}
	}

	var ins Insights
	if err := json.Unmarshal([]byte(cleaned), &ins); err != nil {
		return InsightResult{Err: fmt.Errorf("malformed insights json: %w", err)}
	}
	return InsightResult{Insights: ins}
}
