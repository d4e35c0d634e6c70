package p7

import (
	"context"
	"strings"
)

// Mode is which generation regime the reasoning environment is currently
// driving.
type Mode int

const (
	// ModeThink is free-form, unconstrained generation: scratch reasoning
	// the grammar never sees.
	ModeThink Mode = iota
	// ModeGrammar is generation constrained to a specific grammar, driven
	// through a Sampler/Recognizer the same way Generate/UntilComplete
	// are.
	ModeGrammar
)

func (m Mode) String() string {
	if m == ModeGrammar {
		return "grammar"
	}
	return "think"
}

// ThinkBlock is one span of unconstrained reasoning text.
type ThinkBlock struct {
	Text string
}

// GrammarBlock is one span of grammar-constrained text, plus whether the
// recognizer considered it a complete derivation when generation stopped.
type GrammarBlock struct {
	GrammarName string
	Text        string
	IsComplete  bool
}

// Block is one entry of a ReasoningEnvironment's transcript: exactly one of
// Think or Grammar is meaningful, selected by Mode.
type Block struct {
	Mode    Mode
	Think   ThinkBlock
	Grammar GrammarBlock
}

// EnvironmentResult is the full, ordered transcript of a
// ReasoningEnvironment run, plus a stable reason the run stopped:
// "complete" (the last grammar block reached a complete derivation),
// "max_blocks" (MaxRounds was exhausted first), or "error:<msg>" (a
// ModelHandle call failed).
type EnvironmentResult struct {
	Blocks     []Block
	StopReason string
}

// ThinkBlocks returns every think block, in production order.
func (r EnvironmentResult) ThinkBlocks() []ThinkBlock {
	var out []ThinkBlock
	for _, b := range r.Blocks {
		if b.Mode == ModeThink {
			out = append(out, b.Think)
		}
	}
	return out
}

// GrammarBlocks returns every grammar-constrained block, in production
// order.
func (r EnvironmentResult) GrammarBlocks() []GrammarBlock {
	var out []GrammarBlock
	for _, b := range r.Blocks {
		if b.Mode == ModeGrammar {
			out = append(out, b.Grammar)
		}
	}
	return out
}

// FinalOutput returns the last grammar block's text, the environment's
// answer once reasoning is done, or "" if no grammar block was produced.
func (r EnvironmentResult) FinalOutput() string {
	gs := r.GrammarBlocks()
	if len(gs) == 0 {
		return ""
	}
	return gs[len(gs)-1].Text
}

// AllThoughts concatenates every think block's text, in production order,
// separated by blank lines.
func (r EnvironmentResult) AllThoughts() string {
	ts := r.ThinkBlocks()
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Text
	}
	return strings.Join(parts, "\n\n")
}

// IsComplete reports whether the environment's final grammar block, if
// any, reached a complete derivation.
func (r EnvironmentResult) IsComplete() bool {
	gs := r.GrammarBlocks()
	if len(gs) == 0 {
		return false
	}
	return gs[len(gs)-1].IsComplete
}

// String renders the transcript with explicit block tags, useful for
// logging and the demo binary.
func (r EnvironmentResult) String() string {
	var b strings.Builder
	for _, blk := range r.Blocks {
		switch blk.Mode {
		case ModeThink:
			b.WriteString("<think>\n")
			b.WriteString(blk.Think.Text)
			b.WriteString("\n</think>\n")
		case ModeGrammar:
			b.WriteString("<grammar:" + blk.Grammar.GrammarName + ">\n")
			b.WriteString(blk.Grammar.Text)
			b.WriteString("\n</grammar>\n")
		}
	}
	return b.String()
}

// UnconstrainedOptions configures a ModelHandle's free-form generation.
type UnconstrainedOptions struct {
	MaxTokens int
}

// ConstrainedOptions configures a ModelHandle's grammar-constrained
// generation.
type ConstrainedOptions struct {
	MaxTokens int
	K         int
	PreTopK   *int
	// OnToken, if non-nil, observes each accepted token of the constrained
	// generation in acceptance order.
	OnToken func(step int, token string)
}

// ModelHandle is the abstraction a ReasoningEnvironment drives: a model
// capable of both free-form and grammar-constrained generation, stripped
// of any notion of how it loads weights or runs a forward pass (both are
// the host's concern). Implementations
// wrap a real model's tokenizer/forward-pass pair, or (pkg/p7/modeltest) a
// scripted test double.
type ModelHandle interface {
	// AllowSystemPrompt reports whether this model accepts a system
	// role message; some chat templates don't.
	AllowSystemPrompt() bool
	// ThinkOpen and ThinkClose are the literal tag text a model is
	// prompted to use to delimit unconstrained reasoning, e.g. "<think>"
	// and "</think>".
	ThinkOpen() string
	ThinkClose() string
	// StopTokensUnconstrained/StopTokensConstrained are the stop
	// sequences the model's own generation loop watches for in each
	// mode.
	StopTokensUnconstrained() []string
	StopTokensConstrained() []string
	// GenerateUnconstrained runs free-form generation from prompt,
	// stopping at a configured stop token or opts.MaxTokens.
	GenerateUnconstrained(ctx context.Context, prompt string, opts UnconstrainedOptions) (string, error)
	// Generate runs grammar-constrained generation from prompt for at
	// most opts.MaxTokens tokens (0 = UntilComplete's unbounded mode
	// used instead).
	Generate(ctx context.Context, grammarSpec, prompt string, opts ConstrainedOptions) (GenerationResult, error)
	// UntilComplete runs grammar-constrained generation from prompt
	// until the grammar reaches a complete derivation or no valid token
	// remains.
	UntilComplete(ctx context.Context, grammarSpec, prompt string, opts ConstrainedOptions) (GenerationResult, error)
}

// BuildSystemPrompt constructs a system prompt for a grammar-constrained
// task from the grammar's metadata: a task description, the grammar's
// syntax hints, and (if includeExamples) its worked examples.
func BuildSystemPrompt(info GrammarInfo, taskDescription string, includeExamples bool) string {
	var b strings.Builder
	if taskDescription != "" {
		b.WriteString(taskDescription)
		b.WriteString("\n\n")
	}
	b.WriteString("You may reason freely, then produce your final answer in the ")
	b.WriteString(info.Name)
	b.WriteString(" grammar")
	if info.Description != "" {
		b.WriteString(": ")
		b.WriteString(info.Description)
	}
	b.WriteString(".\n")
	if len(info.SyntaxHints) > 0 {
		b.WriteString("\nSyntax:\n")
		for _, h := range info.SyntaxHints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	if includeExamples && len(info.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range info.Examples {
			b.WriteString("  ")
			b.WriteString(ex.Text)
			if ex.Note != "" {
				b.WriteString("  # ")
				b.WriteString(ex.Note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ReasoningEnvironment drives a ModelHandle through an alternating
// think/grammar block state machine: unconstrained reasoning followed by a
// grammar-constrained attempt at a final answer, repeating while the
// constrained attempt doesn't yet reach a complete derivation, up to
// MaxRounds rounds.
type ReasoningEnvironment struct {
	Model       ModelHandle
	GrammarName string
	GrammarSpec string
	Info        GrammarInfo
	// MaxRounds bounds how many think/grammar round trips the
	// environment will attempt before giving up and returning whatever
	// it has, even if the last grammar block is incomplete. Zero means
	// 1 (a single think pass followed by one grammar attempt).
	MaxRounds int
	// UnconstrainedOpts/ConstrainedOpts configure each mode's generation
	// calls against Model; ConstrainedOpts.OnToken observes grammar-block
	// tokens as they are accepted.
	UnconstrainedOpts UnconstrainedOptions
	ConstrainedOpts   ConstrainedOptions
	// OnModeSwitch, if non-nil, is called as each block begins, with the
	// mode being entered.
	OnModeSwitch func(mode Mode)
}

func (e *ReasoningEnvironment) enterMode(m Mode) {
	if e.OnModeSwitch != nil {
		e.OnModeSwitch(m)
	}
}

// Generate runs the environment against prompt, returning the full
// interleaved transcript.
func (e *ReasoningEnvironment) Generate(ctx context.Context, prompt string) (EnvironmentResult, error) {
	rounds := e.MaxRounds
	if rounds <= 0 {
		rounds = 1
	}

	var result EnvironmentResult
	current := prompt

	for round := 0; round < rounds; round++ {
		e.enterMode(ModeThink)
		thought, err := e.Model.GenerateUnconstrained(ctx, current, e.UnconstrainedOpts)
		if err != nil {
			result.StopReason = "error:" + err.Error()
			return result, err
		}
		result.Blocks = append(result.Blocks, Block{Mode: ModeThink, Think: ThinkBlock{Text: thought}})
		current = current + e.Model.ThinkOpen() + thought + e.Model.ThinkClose()

		e.enterMode(ModeGrammar)
		var gen GenerationResult
		if e.ConstrainedOpts.MaxTokens > 0 {
			gen, err = e.Model.Generate(ctx, e.GrammarSpec, current, e.ConstrainedOpts)
		} else {
			gen, err = e.Model.UntilComplete(ctx, e.GrammarSpec, current, e.ConstrainedOpts)
		}
		if err != nil {
			result.StopReason = "error:" + err.Error()
			return result, err
		}
		result.Blocks = append(result.Blocks, Block{
			Mode: ModeGrammar,
			Grammar: GrammarBlock{
				GrammarName: e.GrammarName,
				Text:        gen.Text,
				IsComplete:  gen.IsComplete,
			},
		})
		if gen.IsComplete {
			result.StopReason = "complete"
			return result, nil
		}
		current = current + gen.Text
	}

	result.StopReason = "max_blocks"
	return result, nil
}
