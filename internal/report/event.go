package report

import (
	"bytes"
	"encoding/json"
)

// Stage status messages, in emission order.
const (
	StatusEmbedding   = "Preprocessing & Embedding..."
	StatusDeviations  = "Analyzing Deviations..."
	StatusSummarizing = "Summarizing Conversation..."
	StatusInsights    = "Extracting User Expectations..."
	StatusReport      = "Generating Comprehensive Analysis..."
)

// EventKind distinguishes progress events from the terminal ones.
type EventKind int

const (
	EventStatus EventKind = iota
	EventFinal
	EventError
)

// Event is one message of the progress protocol. It encodes as exactly
// one of {"status"}, {"final_output"} or {"error"}.
type Event struct {
	Kind    EventKind
	Message string
	// Result is set on terminal events and holds whatever the run produced
	// before it ended. It is not part of the wire format.
	Result *Result
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventFinal || e.Kind == EventError
}

// MarshalJSON implements json.Marshaler. Text is emitted without HTML
// escaping, so "&", "<" and ">" stay literal.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EventFinal:
		return marshalRaw(struct {
			FinalOutput string `json:"final_output"`
		}{e.Message})
	case EventError:
		return marshalRaw(struct {
			Error string `json:"error"`
		}{e.Message})
	default:
		return marshalRaw(struct {
			Status string `json:"status"`
		}{e.Message})
	}
}

func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func statusEvent(msg string) Event {
	return Event{Kind: EventStatus, Message: msg}
}
