package p7

import (
	"math/rand"
	"time"
)

// samplerRand is the process-wide source for the sampler's softmax-weighted
// draws. There is no reproducible-seed API; callers that need determinism
// inject a deterministic LogitFn and sample with K=1.
var samplerRand = rand.New(rand.NewSource(time.Now().UnixNano()))
