// Package modeltest provides a scripted p7.ModelHandle test double. Rather
// than faking grammar-constrained generation outright, it drives a real
// p7.Sampler over a caller-supplied vocabulary with a logit function that
// prefers the next rune of a scripted target string, so a test exercises
// the genuine recognizer/typing-rule machinery end to end while still being
// fully deterministic.
package modeltest

import (
	"context"
	"strings"

	"github.com/prop7/p7/pkg/p7"
)

var _ p7.ModelHandle = (*Handle)(nil)

// Handle is a scripted p7.ModelHandle. Thought is returned verbatim by
// every GenerateUnconstrained call. Target, if set, biases constrained
// generation toward reproducing that exact string (used to drive a
// generation through a specific, known-good derivation); if empty,
// constrained generation falls back to uniform logits over Vocab, letting
// the grammar's own masking determine what comes out.
type Handle struct {
	// Vocab is the fixed token vocabulary offered to the sampler. Callers
	// typically use single characters so every grammar terminal is
	// reachable one rune at a time.
	Vocab []string
	// Thought is returned by GenerateUnconstrained, unconditionally.
	Thought string
	// Target, if non-empty, is the string constrained generation is
	// scripted to attempt to reproduce.
	Target string
	// AllowSystem controls AllowSystemPrompt's return value.
	AllowSystem bool
	// ThinkOpenTag/ThinkCloseTag are returned by ThinkOpen/ThinkClose.
	ThinkOpenTag, ThinkCloseTag string
}

// NewHandle returns a Handle with the common defaults: "<think>"/"</think>"
// tags, system prompts allowed, and vocab split into single runes plus "".
func NewHandle(vocabText, thought, target string) *Handle {
	seen := make(map[string]bool)
	vocab := []string{""}
	seen[""] = true
	for _, r := range vocabText {
		s := string(r)
		if !seen[s] {
			seen[s] = true
			vocab = append(vocab, s)
		}
	}
	return &Handle{
		Vocab:        vocab,
		Thought:      thought,
		Target:       target,
		AllowSystem:  true,
		ThinkOpenTag: "<think>", ThinkCloseTag: "</think>",
	}
}

func (h *Handle) AllowSystemPrompt() bool { return h.AllowSystem }
func (h *Handle) ThinkOpen() string       { return h.ThinkOpenTag }
func (h *Handle) ThinkClose() string      { return h.ThinkCloseTag }

func (h *Handle) StopTokensUnconstrained() []string { return []string{h.ThinkCloseTag} }
func (h *Handle) StopTokensConstrained() []string   { return nil }

// GenerateUnconstrained ignores prompt and opts and returns Thought.
func (h *Handle) GenerateUnconstrained(ctx context.Context, prompt string, opts p7.UnconstrainedOptions) (string, error) {
	return h.Thought, nil
}

// Generate drives a real p7.Sampler over grammarSpec and h.Vocab, scripted
// toward h.Target, for at most opts.MaxTokens tokens.
func (h *Handle) Generate(ctx context.Context, grammarSpec, prompt string, opts p7.ConstrainedOptions) (p7.GenerationResult, error) {
	sampler, err := h.newSampler(grammarSpec)
	if err != nil {
		return p7.GenerationResult{}, err
	}
	k := opts.K
	if k <= 0 {
		k = 1
	}
	return p7.Generate(sampler, p7.GenerateOptions{MaxTokens: opts.MaxTokens, K: k, PreTopK: opts.PreTopK, OnToken: opts.OnToken}), nil
}

// UntilComplete is Generate with no token cap.
func (h *Handle) UntilComplete(ctx context.Context, grammarSpec, prompt string, opts p7.ConstrainedOptions) (p7.GenerationResult, error) {
	sampler, err := h.newSampler(grammarSpec)
	if err != nil {
		return p7.GenerationResult{}, err
	}
	k := opts.K
	if k <= 0 {
		k = 1
	}
	return p7.UntilComplete(sampler, p7.GenerateOptions{K: k, PreTopK: opts.PreTopK, OnToken: opts.OnToken}), nil
}

func (h *Handle) newSampler(grammarSpec string) (*p7.Sampler, error) {
	return p7.NewSampler(grammarSpec, h.Vocab, h.scriptedLogitFn())
}

// scriptedLogitFn scores h.Target's next rune highest, every other
// candidate uniformly low; once generatedSoFar is no longer a prefix of
// Target (or Target is empty), it falls back to uniform scoring and lets
// masking alone decide the outcome.
func (h *Handle) scriptedLogitFn() p7.LogitFn {
	return func(generatedSoFar string, vocab []string) []float64 {
		out := make([]float64, len(vocab))
		if h.Target == "" || !strings.HasPrefix(h.Target, generatedSoFar) {
			return out
		}
		rest := h.Target[len(generatedSoFar):]
		if rest == "" {
			return out
		}
		next := string([]rune(rest)[0])
		for i, tok := range vocab {
			if tok == next {
				out[i] = 10
			}
		}
		return out
	}
}
