package p7

// TokenStream is the lazy, pull-based form of the generation loop: each
// Next call produces exactly one accepted token, and exhaustion carries the
// same GenerationResult summary Generate returns. The caller drives the
// loop; abandoning the stream mid-way needs no cleanup, since every step's
// state lives in the wrapped Sampler and nothing runs between pulls.
type TokenStream struct {
	sampler *Sampler
	opts    GenerateOptions
	step    int
	done    bool
	result  GenerationResult
}

// NewTokenStream returns a stream over sampler, configured like Generate:
// opts.MaxTokens bounds the stream's length (0 means unbounded), opts.K and
// opts.PreTopK select each step the way InferGreedy does, and opts.OnToken
// observes each accepted token in acceptance order.
func NewTokenStream(sampler *Sampler, opts GenerateOptions) *TokenStream {
	if opts.K <= 0 {
		opts.K = 1
	}
	return &TokenStream{sampler: sampler, opts: opts}
}

// Next produces the stream's next token. ok is false once the stream is
// exhausted (completion, no valid token, the token budget, or a feed
// error); from then on Summary reports why.
func (ts *TokenStream) Next() (tok string, ok bool) {
	if ts.done {
		return "", false
	}
	if ts.sampler.IsComplete() {
		return "", ts.finish("complete", true)
	}
	if ts.opts.MaxTokens > 0 && ts.step >= ts.opts.MaxTokens {
		return "", ts.finish("max_tokens", false)
	}
	tok, valid := ts.sampler.InferGreedy(ts.opts.K, ts.opts.PreTopK)
	// An empty token is always valid but never advances the buffer; if it
	// wins the argmax the stream would otherwise yield forever.
	if !valid || tok == "" {
		return "", ts.finish("no_valid", false)
	}
	if err := ts.sampler.Feed(tok); err != nil {
		return "", ts.finish(StoppedReason(err), false)
	}
	ts.step++
	if ts.opts.OnToken != nil {
		ts.opts.OnToken(ts.step-1, tok)
	}
	return tok, true
}

func (ts *TokenStream) finish(reason string, complete bool) bool {
	ts.done = true
	ts.result = GenerationResult{
		Text:            ts.sampler.CurrentText(),
		IsComplete:      complete || ts.sampler.IsComplete(),
		TokensGenerated: ts.step,
		StoppedReason:   reason,
	}
	return false
}

// Summary returns the stream's final GenerationResult. ok is false while
// the stream has not yet been driven to exhaustion.
func (ts *TokenStream) Summary() (GenerationResult, bool) {
	return ts.result, ts.done
}
