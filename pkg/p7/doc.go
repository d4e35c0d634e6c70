// Package p7 implements a type-aware constrained-decoding engine: a grammar
// and typing-rule compiler, an Earley-style chart recognizer that tracks a
// frontier of partial derivations together with a persistent typing
// context, a vocabulary token filter, and a typed sampler that drives a
// language model one token at a time without ever emitting a syntactically
// or type-incorrect token.
//
// Unlike CFG-only constrained decoding, grammars compiled by this package
// may carry typing rules: relations over a production's child type slots
// that must unify for a derivation to survive, threading a Gamma typing
// context through the parse the way a type checker threads an environment
// through an AST. This lets a grammar reject "well-formed but ill-typed"
// continuations (a boolean added to an Int) at generation time, not after
// the fact.
package p7
