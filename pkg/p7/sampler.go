package p7

import (
	"math"

	"github.com/google/uuid"
)

// LogitFn scores each entry of vocab given the text generated so far,
// returning one logit per vocabulary entry. It is the caller's model
// forward pass; the sampler never calls into a model itself, only into
// this callable.
type LogitFn func(generatedSoFar string, vocab []string) []float64

// Sampler pairs a Recognizer with a fixed vocabulary and a logit source,
// implementing the typed, constrained decoding law: mask out every token
// whose whole text the recognizer wouldn't accept, then sample (or take the
// argmax of) what's left.
type Sampler struct {
	recognizer        *Recognizer
	vocab             []string
	logitFn           LogitFn
	sessionID         string
	whitespacePenalty bool
}

// NewSampler compiles spec and returns a Sampler over vocab, scoring
// candidates with logitFn.
func NewSampler(spec string, vocab []string, logitFn LogitFn) (*Sampler, error) {
	g, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	return NewSamplerFromGrammar(g, vocab, logitFn), nil
}

// NewSamplerFromGrammar is NewSampler for a grammar already compiled (e.g.
// one of the built-in grammars from GetGrammar).
func NewSamplerFromGrammar(g *Grammar, vocab []string, logitFn LogitFn) *Sampler {
	return &Sampler{
		recognizer: NewRecognizer(g),
		vocab:      vocab,
		logitFn:    logitFn,
		sessionID:  uuid.NewString(),
	}
}

// WithWhitespacePenalty toggles an optional, off-by-default heuristic that
// masks out pure-whitespace candidates whenever at least one non-whitespace
// candidate survives typed masking. It exists because unconstrained
// sampling over small demo vocabularies tends to wander into runs of
// spaces; it is never applied to InferUnconstrained, and it only ever
// narrows the valid set further, never loosens it. Returns the Sampler for
// chaining.
func (s *Sampler) WithWhitespacePenalty(on bool) *Sampler {
	s.whitespacePenalty = on
	return s
}

// CurrentText returns the text fed to the sampler's recognizer so far.
func (s *Sampler) CurrentText() string { return s.recognizer.CurrentText() }

// IsComplete reports whether the text fed so far is a complete, well-typed
// derivation of the grammar.
func (s *Sampler) IsComplete() bool { return s.recognizer.IsComplete() }

// Reset returns the sampler to its initial, empty-buffer state.
func (s *Sampler) Reset() { s.recognizer.Reset() }

// Feed advances the sampler's recognizer by tok, exactly as Recognizer.Feed.
func (s *Sampler) Feed(tok string) error { return s.recognizer.Feed(tok) }

// Infer returns one masked logit per vocabulary entry: the model's raw
// logit for every token the recognizer would accept whole, and
// math.Inf(-1) for every token it wouldn't. If preTopK is non-nil, the
// logit pass still scores the whole vocabulary once, but only its preTopK
// highest-logit entries are simulated by the recognizer; every other entry
// is masked to math.Inf(-1). This is an optimization for large
// vocabularies where simulating every entry is wasteful.
func (s *Sampler) Infer(preTopK *int) []float64 {
	candidates := s.vocab
	indexMap := identityIndex(len(s.vocab))
	var raw []float64
	if preTopK != nil && *preTopK > 0 && *preTopK < len(s.vocab) {
		full := s.logitFn(s.CurrentText(), s.vocab)
		top := topKIndices(full, *preTopK)
		candidates = make([]string, len(top))
		indexMap = make([]int, len(top))
		raw = make([]float64, len(top))
		for i, idx := range top {
			candidates[i] = s.vocab[idx]
			indexMap[i] = idx
			raw[i] = full[idx]
		}
	} else {
		raw = s.logitFn(s.CurrentText(), candidates)
	}

	valid := s.recognizer.FilterCompletionIndices(candidates)
	validSet := make(map[int]bool, len(valid))
	for _, i := range valid {
		validSet[i] = true
	}
	if s.whitespacePenalty && len(valid) > 1 {
		validSet = applyWhitespacePenalty(candidates, validSet)
	}

	out := make([]float64, len(s.vocab))
	for i := range out {
		out[i] = math.Inf(-1)
	}
	for i := range candidates {
		if validSet[i] {
			out[indexMap[i]] = raw[i]
		}
	}
	dbgSampler(s.sessionID, nil, "infer: %d/%d candidates valid", len(validSet), len(candidates))
	return out
}

func applyWhitespacePenalty(candidates []string, valid map[int]bool) map[int]bool {
	hasNonWhitespace := false
	for i := range valid {
		if !isAllWhitespace(candidates[i]) {
			hasNonWhitespace = true
			break
		}
	}
	if !hasNonWhitespace {
		return valid
	}
	out := make(map[int]bool, len(valid))
	for i := range valid {
		if !isAllWhitespace(candidates[i]) {
			out[i] = true
		}
	}
	return out
}

func isAllWhitespace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// InferText is Infer followed by masked top-k selection: it returns the k
// vocabulary entries with the highest masked logit, highest first,
// excluding anything masked to -Inf. Fewer than k entries are returned if
// fewer than k survive masking.
func (s *Sampler) InferText(k int, preTopK *int) []string {
	logits := s.Infer(preTopK)
	idx := topKIndices(logits, k)
	var out []string
	for _, i := range idx {
		if math.IsInf(logits[i], -1) {
			continue
		}
		out = append(out, s.vocab[i])
	}
	return out
}

// InferGreedy picks the sampler's next token: at k == 1 the masked argmax
// (deterministic, no sampling call); at k > 1, a softmax-weighted sample
// over the top-k masked logits at temperature 1. It reports ok == false
// when every candidate was masked out (KindNoValidToken territory;
// Generate/UntilComplete report that case as a GenerationResult with
// StoppedReason "no_valid").
func (s *Sampler) InferGreedy(k int, preTopK *int) (string, bool) {
	logits := s.Infer(preTopK)
	if k <= 1 {
		best := -1
		for i, l := range logits {
			if math.IsInf(l, -1) {
				continue
			}
			if best == -1 || l > logits[best] {
				best = i
			}
		}
		if best == -1 {
			return "", false
		}
		return s.vocab[best], true
	}

	idx := topKIndices(logits, k)
	var candidates []int
	for _, i := range idx {
		if !math.IsInf(logits[i], -1) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	weights := softmax(select64(logits, candidates))
	chosen := weightedSampleIndex(weights)
	dbgSampler(s.sessionID, nil, "infer_greedy: chose %q among %d candidates", s.vocab[candidates[chosen]], len(candidates))
	return s.vocab[candidates[chosen]], true
}

// InferUnconstrained samples from the raw, unmasked logit distribution: no
// token is filtered by the recognizer at all. It exists purely so a caller
// can compare constrained and unconstrained decoding side by side; it never
// mutates the recognizer and is never affected by WithWhitespacePenalty.
func (s *Sampler) InferUnconstrained(k int) (string, bool) {
	if len(s.vocab) == 0 {
		return "", false
	}
	raw := s.logitFn(s.CurrentText(), s.vocab)
	if k <= 1 {
		best := 0
		for i, l := range raw {
			if l > raw[best] {
				best = i
			}
		}
		return s.vocab[best], true
	}
	idx := topKIndices(raw, k)
	weights := softmax(select64(raw, idx))
	chosen := weightedSampleIndex(weights)
	return s.vocab[idx[chosen]], true
}

// --- small numeric helpers --------------------------------------------

func identityIndex(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func select64(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, v := range idx {
		out[i] = vals[v]
	}
	return out
}

// topKIndices returns the indices of the k highest values in vals, highest
// first, ties broken by lower index. k is clamped to len(vals).
func topKIndices(vals []float64, k int) []int {
	if k > len(vals) {
		k = len(vals)
	}
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && less(vals, idx[j-1], idx[j]); j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	return idx[:k]
}

// less reports whether idx[a] should sort after idx[b] in a descending
// (highest logit first) order. Equal values never compare less, so the
// stable insertion sort in topKIndices leaves tied entries in their
// original (ascending index) order.
func less(vals []float64, a, b int) bool {
	return vals[a] < vals[b]
}

// softmax is a numerically stable, max-shifted softmax at temperature 1.
func softmax(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(vals))
	var sum float64
	for i, v := range vals {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1.0 / float64(len(out))
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// weightedSampleIndex draws one index from weights (assumed to sum to ~1)
// using a single process-level math/rand source seeded at package init
// rather than a caller-supplied one.
func weightedSampleIndex(weights []float64) int {
	r := samplerRand.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}
