package p7

import (
	"encoding/json"
	"io"
)

// Event is one record of the newline-delimited streaming protocol a host
// emits while driving constrained generation: a "token" per accepted
// token, optional "status" notes, one terminal "done" or "error". The
// field set is the union over the four record types. Step has no
// omitempty and is written on every record (so a token at step 0 keeps
// it); the other fields are omitempty, and Complete is a pointer so a done
// record writes is_complete whether it is true or false.
type Event struct {
	Type     string `json:"type"`
	Step     int    `json:"step"`
	Text     string `json:"text,omitempty"`
	FullText string `json:"full_text,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Complete *bool  `json:"is_complete,omitempty"`
	Message  string `json:"message,omitempty"`
}

// TokenEvent records one accepted token and the buffer it produced.
func TokenEvent(step int, text, fullText string) Event {
	return Event{Type: "token", Step: step, Text: text, FullText: fullText}
}

// StatusEvent records a free-form progress note.
func StatusEvent(message string) Event {
	return Event{Type: "status", Message: message}
}

// DoneEvent records the terminal summary of a generation stream.
func DoneEvent(reason string, complete bool) Event {
	return Event{Type: "done", Reason: reason, Complete: &complete}
}

// ErrorEvent records a terminal failure.
func ErrorEvent(message string) Event {
	return Event{Type: "error", Message: message}
}

// EventWriter emits Events as newline-delimited JSON. It is the engine's
// half of a host's streaming response: the host supplies the writer (an
// HTTP response, a pipe, a log), the engine supplies the records.
type EventWriter struct {
	enc *json.Encoder
}

// NewEventWriter returns an EventWriter over w.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{enc: json.NewEncoder(w)}
}

// Write emits one event record followed by a newline.
func (ew *EventWriter) Write(ev Event) error {
	return ew.enc.Encode(ev)
}

// StreamEvents drives stream to exhaustion, writing a token event per
// accepted token and a final done event, and returns the stream's summary.
// A writer failure stops the drive early and is returned as-is; generation
// state up to that point stays in the stream's sampler.
func StreamEvents(stream *TokenStream, ew *EventWriter) (GenerationResult, error) {
	for {
		tok, ok := stream.Next()
		if !ok {
			break
		}
		if err := ew.Write(TokenEvent(stream.step-1, tok, stream.sampler.CurrentText())); err != nil {
			return GenerationResult{}, err
		}
	}
	result, _ := stream.Summary()
	if err := ew.Write(DoneEvent(result.StoppedReason, result.IsComplete)); err != nil {
		return result, err
	}
	return result, nil
}
