package p7

// completedChild is the bookkeeping an item carries for each symbol it has
// already matched: the raw text that symbol spanned, and — for nonterminal
// children only — the type synthesized for that child's own derivation.
type completedChild struct {
	text  string // raw text this symbol spanned, used by bind/lookup premises
	typ   Type   // synthesized type, nil for terminals and untyped nonterminals
	sexpr string // tree representation used by ToSexpr
}

// item is a single Earley chart entry: one alternative of one nonterminal,
// partially or fully matched, anchored at an origin column. Items are
// treated as immutable values; advancing a dot produces a new item rather
// than mutating an existing one, so a chart column's item slice can grow
// safely while being iterated by index.
type item struct {
	head     string
	alt      Alt
	altIndex int
	dot      int // number of symbols in alt.Symbols fully matched
	origin   int // chart column where this alternative began
	gamma    Gamma
	children []completedChild

	// Terminal-in-progress state, meaningful only while dot < len(symbols)
	// and the symbol at dot is a terminal that has started (but not
	// necessarily finished) matching.
	litProgress int          // literal terminal: runes matched so far
	patStates   map[int]bool // pattern terminal: live NFA state set, nil if not started
	termStart   int          // pattern terminal: buffer index where matching began
}

func (it item) symbols() []Symbol { return it.alt.Symbols }

func (it item) done() bool { return it.dot == len(it.alt.Symbols) }

// atNonterm returns the nonterminal name expected next, or "" if the next
// symbol isn't a nonterminal or the item is done.
func (it item) atNonterm() string {
	if it.done() {
		return ""
	}
	sym := it.alt.Symbols[it.dot]
	return sym.NonTerm
}

func (it item) atTerminal() (Symbol, bool) {
	if it.done() {
		return Symbol{}, false
	}
	sym := it.alt.Symbols[it.dot]
	return sym, sym.IsTerminal()
}

// key identifies an item for column-local deduplication. Items are deduped
// by syntactic position only (head, alternative, dot, origin, terminal
// progress); two items differing only in Gamma or synthesized child types
// at the same syntactic position are treated as the same item, the first
// one discovered wins. This bounds chart growth; grammars whose ambiguity
// hinges purely on differing typing contexts at an otherwise-identical
// position are outside this engine's scope (see DESIGN.md).
type itemKey struct {
	head        string
	altIndex    int
	dot         int
	origin      int
	litProgress int
	patKey      string
}

func (it item) key() itemKey {
	k := itemKey{head: it.head, altIndex: it.altIndex, dot: it.dot, origin: it.origin, litProgress: it.litProgress}
	if it.patStates != nil {
		k.patKey = statesKey(it.patStates)
	}
	return k
}

func statesKey(states map[int]bool) string {
	// Small, fixed alphabet of NFA state IDs per grammar; a simple
	// sorted-join is fast enough at this scale and avoids importing a
	// hashing library for what is, per pattern, a handful of states.
	ids := make([]int, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	buf := make([]byte, 0, len(ids)*4)
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendInt(buf, id)
	}
	return string(buf)
}

func appendInt(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	neg := n < 0
	if neg {
		n = -n
	}
	start := len(buf)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// column is one chart position: the set of items live at that point in the
// fed buffer, after predict/complete closure.
type column struct {
	items []item
	seen  map[itemKey]bool
}

func newColumn() *column {
	return &column{seen: make(map[itemKey]bool)}
}

func (c *column) add(it item) bool {
	k := it.key()
	if c.seen[k] {
		return false
	}
	c.seen[k] = true
	c.items = append(c.items, it)
	return true
}

// snapshot captures enough of a recognizer's state to roll back an
// in-progress Feed that turns out to be invalid partway through.
type snapshot struct {
	bufLen     int
	numColumns int
}
