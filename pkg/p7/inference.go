package p7

// GenerationResult is the outcome of a high-level generation loop: the full
// text produced, whether it is a complete well-typed derivation, how many
// tokens were emitted, and a stable stop-reason string.
type GenerationResult struct {
	Text            string
	IsComplete      bool
	TokensGenerated int
	StoppedReason   string
}

// GenerateOptions configures Generate and UntilComplete.
type GenerateOptions struct {
	// MaxTokens bounds the number of tokens Generate/UntilComplete will
	// emit before stopping with reason "max_tokens". Zero means
	// unbounded (UntilComplete's usual mode).
	MaxTokens int
	// K selects InferGreedy's sampling width: 1 for deterministic argmax,
	// >1 for softmax-weighted sampling over the top K masked candidates.
	K int
	// PreTopK, if non-nil, is forwarded to Sampler.Infer as its
	// candidate-narrowing optimization.
	PreTopK *int
	// OnToken, if non-nil, observes each accepted token in acceptance
	// order, with its 0-based step index.
	OnToken func(step int, token string)
}

// Generate emits at most opts.MaxTokens tokens from sampler, stopping early
// if the recognizer reaches a complete derivation or no valid token
// remains. MaxTokens == 0 means "run until one of those two conditions",
// i.e. Generate(sampler, opts) with MaxTokens unset behaves like
// UntilComplete with no cap.
func Generate(sampler *Sampler, opts GenerateOptions) GenerationResult {
	stream := NewTokenStream(sampler, opts)
	for {
		if _, ok := stream.Next(); !ok {
			break
		}
	}
	result, _ := stream.Summary()
	return result
}

// UntilComplete runs Generate with no token cap: it generates until the
// recognizer reaches a complete derivation or the sampler runs out of
// valid tokens. It is Generate(sampler, opts) with opts.MaxTokens forced
// to 0, named separately because it is the common case: "finish this
// grammar", not "emit N tokens".
func UntilComplete(sampler *Sampler, opts GenerateOptions) GenerationResult {
	opts.MaxTokens = 0
	return Generate(sampler, opts)
}
