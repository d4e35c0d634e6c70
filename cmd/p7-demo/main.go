// Command p7-demo drives a built-in grammar through constrained
// character-level generation, printing a per-step trace and a profiling
// report.
//
// Command-line flags
//   - -grammar string (default "fun"): built-in grammar to sample with
//   - -initial string: initial prefix to feed before generation; defaults
//     to a per-grammar preset
//   - -steps int (default 60): maximum tokens to generate
//
// Usage examples
//   - go run ./cmd/p7-demo -grammar stlc
//   - go run ./cmd/p7-demo -grammar imp -initial "x:Int=1;"
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/prop7/p7/pkg/p7"
)

var vocabText = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	" \n" +
	"λ" +
	".:;,(){}[]" +
	"+-*/=<>!|\"" +
	"_"

var presets = map[string]string{
	"stlc": "λf:(Int->Bool).λx:Int.",
	"fun":  "let x:Int = 1; x +",
	"imp":  "x:Int=1;if x < 3 { y:Int=x +",
	"toy":  "x:Fizz +",
	"json": "{\"a\": ",
}

// timer is a tiny named-section profiler.
type timer struct {
	totals map[string]time.Duration
	counts map[string]int
}

func newTimer() *timer {
	return &timer{totals: make(map[string]time.Duration), counts: make(map[string]int)}
}

func (t *timer) time(name string, f func()) {
	start := time.Now()
	f()
	t.totals[name] += time.Since(start)
	t.counts[name]++
}

func (t *timer) report() {
	fmt.Println("\n--- Profiling ---")
	names := make([]string, 0, len(t.totals))
	var total time.Duration
	for name, d := range t.totals {
		names = append(names, name)
		total += d
	}
	sort.Slice(names, func(i, j int) bool { return t.totals[names[i]] > t.totals[names[j]] })
	for _, name := range names {
		d := t.totals[name]
		c := t.counts[name]
		pct := 0.0
		if total > 0 {
			pct = float64(d) / float64(total) * 100
		}
		avg := 0.0
		if c > 0 {
			avg = float64(d.Milliseconds()) / float64(c)
		}
		fmt.Printf("  %-20s: %7.3fs (%5.1f%%) | %4d calls | %.2fms/call\n", name, d.Seconds(), pct, c, avg)
	}
	fmt.Printf("  %-20s: %7.3fs\n", "TOTAL", total.Seconds())
}

func randomLogits(_ string, vocab []string) []float64 {
	out := make([]float64, len(vocab))
	for i := range out {
		out[i] = rand.NormFloat64() * 2
	}
	return out
}

// sampleToken draws an index from logits at the given temperature,
// skipping masked (-Inf) entries.
func sampleToken(logits []float64, temperature float64) int {
	type cand struct {
		idx int
		l   float64
	}
	var valid []cand
	for i, l := range logits {
		if !math.IsInf(l, -1) {
			valid = append(valid, cand{i, l})
		}
	}
	if len(valid) == 0 {
		return -1
	}
	maxL := valid[0].l
	for _, c := range valid[1:] {
		if c.l > maxL {
			maxL = c.l
		}
	}
	exps := make([]float64, len(valid))
	var sum float64
	for i, c := range valid {
		exps[i] = math.Exp((c.l - maxL) / temperature)
		sum += exps[i]
	}
	r := rand.Float64()
	var cum float64
	for i, e := range exps {
		cum += e / sum
		if r < cum {
			return valid[i].idx
		}
	}
	return valid[len(valid)-1].idx
}

func main() {
	grammarName := flag.String("grammar", "fun", "built-in grammar to sample with ("+strings.Join(p7.ListGrammars(), ", ")+")")
	initial := flag.String("initial", "", "initial prefix to feed before generation (defaults to a preset)")
	steps := flag.Int("steps", 60, "maximum tokens to generate")
	flag.Parse()

	t := newTimer()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("p7: Typed Constrained Character-Level Generation")
	fmt.Println(strings.Repeat("=", 60))

	vocab := []string{""}
	for _, r := range vocabText {
		vocab = append(vocab, string(r))
	}
	fmt.Printf("\nVocab size: %d runes\n", len(vocab))

	start := *initial
	if start == "" {
		start = presets[*grammarName]
	}
	fmt.Printf("Grammar: %s\n", *grammarName)

	var sampler *p7.Sampler
	t.time("init", func() {
		g, err := p7.GetGrammar(*grammarName)
		if err != nil {
			panic(err)
		}
		sampler = p7.NewSamplerFromGrammar(g, vocab, randomLogits)
	})

	fmt.Printf("\n--- Starting with: %q ---\n", start)
	t.time("feed_initial", func() {
		if err := sampler.Feed(start); err != nil {
			panic(err)
		}
	})

	fmt.Println("\nGenerating tokens (constrained to well-typed):")
	generated := start
	const preTopK = 20
	pre := preTopK

	for step := 0; step < *steps; step++ {
		var logits []float64
		t.time("infer", func() {
			logits = sampler.Infer(&pre)
		})

		validCount := 0
		for _, l := range logits {
			if !math.IsInf(l, -1) {
				validCount++
			}
		}

		var tokenIdx int
		t.time("sample", func() {
			tokenIdx = sampleToken(logits, 0.8)
		})

		if tokenIdx < 0 {
			fmt.Printf("\n  Step %d: no valid tokens. Done.\n", step)
			break
		}

		tok := vocab[tokenIdx]
		var feedErr error
		t.time("feed", func() { feedErr = sampler.Feed(tok) })
		if feedErr != nil {
			fmt.Printf("  Step %3d: rejected %q - %v\n", step, tok, feedErr)
			break
		}
		generated += tok
		fmt.Printf("  Step %3d: %q (valid: %d/%d)\n", step, tok, validCount, len(vocab))
	}

	fmt.Println("\n--- Final ---")
	fmt.Printf("Generated (%d runes): %q\n", len([]rune(generated)), generated)
	fmt.Printf("Is complete: %v\n", sampler.IsComplete())

	fmt.Println("\n--- Valid tokens right now ---")
	var topK []string
	t.time("infer_text", func() { topK = sampler.InferText(10, &pre) })
	fmt.Printf("Top 10: %v\n", topK)

	t.report()
}
