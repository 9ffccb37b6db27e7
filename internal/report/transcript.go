package report

import (
	"strings"

	"deviation-analyzer/internal/analysis"
)

// BuildTranscript renders every message as "ROLE:\ncontent" blocks separated
// by blank lines, with trailing whitespace removed. No message is skipped.
func BuildTranscript(conv []analysis.Message) string {
	var sb strings.Builder
	for _, m := range conv {
		sb.WriteString(strings.ToUpper(string(m.Role)))
		sb.WriteString(":\n")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}
