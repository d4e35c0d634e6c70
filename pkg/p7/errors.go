package p7

import "fmt"

// Kind discriminates the stable error taxonomy the engine reports across
// grammar compilation, recognition, and sampling. Callers that need to
// branch on failure mode (rather than just log it) should compare against
// these rather than parsing error strings.
type Kind string

const (
	// KindGrammarParse marks a structural error in a grammar spec: bad
	// production syntax, an unterminated literal or character class, a
	// malformed typing rule.
	KindGrammarParse Kind = "grammar_parse"
	// KindUndefinedNonterminal marks a production or typing rule that
	// references a nonterminal with no production of its own.
	KindUndefinedNonterminal Kind = "undefined_nonterminal"
	// KindTypeError marks a typing-rule unification failure: the fed
	// token is syntactically valid at the frontier but no surviving
	// derivation can assign it a consistent type.
	KindTypeError Kind = "type_error"
	// KindInvalidPrefix marks a fed token that no surviving derivation's
	// regex/literal terminal can extend, even ignoring typing.
	KindInvalidPrefix Kind = "invalid_prefix"
	// KindIncomplete marks an operation that requires a complete parse
	// (to_sexpr, a final answer) attempted on a recognizer still holding
	// an unresolved frontier.
	KindIncomplete Kind = "incomplete"
	// KindNoValidToken marks a sampler step where every vocabulary entry
	// was masked out: no token, constrained or otherwise, extends the
	// frontier.
	KindNoValidToken Kind = "no_valid"
	// KindModel marks a failure surfaced by a ModelHandle implementation
	// (the model backend itself), not by the grammar/typing engine.
	KindModel Kind = "model_error"
)

// Error is the engine's error type. It carries a stable Kind so callers can
// branch on failure mode, plus a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	// Pos is the 0-based rune offset into the fed/compiled text the error
	// concerns, or -1 if not applicable.
	Pos int
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s: %s (at %d)", e.Kind, e.Msg, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newErr(kind Kind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// StoppedReason renders an error into the stop-reason taxonomy used by
// GenerationResult: "type_error: ...", "invalid_prefix: ...", or a generic
// "error: ..." for anything else.
func StoppedReason(err error) string {
	if err == nil {
		return "complete"
	}
	if pe, ok := err.(*Error); ok {
		return fmt.Sprintf("%s: %s", pe.Kind, pe.Msg)
	}
	return fmt.Sprintf("error: %s", err.Error())
}
