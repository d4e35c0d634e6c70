package persist

import "testing"

func TestLookupMissing(t *testing.T) {
	var m *Map
	if _, ok := m.Lookup("x"); ok {
		t.Fatalf("expected miss on empty map")
	}
}

func TestInsertShadowsWithoutMutating(t *testing.T) {
	base := (&Map{}).Insert("x", 1)
	shadowed := base.Insert("x", 2)

	if v, _ := base.Lookup("x"); v != 1 {
		t.Fatalf("base map mutated: got %v", v)
	}
	if v, _ := shadowed.Lookup("x"); v != 2 {
		t.Fatalf("shadowed lookup = %v, want 2", v)
	}
}

func TestSiblingBranchesIndependent(t *testing.T) {
	base := (&Map{}).Insert("x", 1)
	left := base.Insert("y", "L")
	right := base.Insert("y", "R")

	if v, _ := left.Lookup("y"); v != "L" {
		t.Fatalf("left.y = %v, want L", v)
	}
	if v, _ := right.Lookup("y"); v != "R" {
		t.Fatalf("right.y = %v, want R", v)
	}
	if v, _ := left.Lookup("x"); v != 1 {
		t.Fatalf("left.x = %v, want 1 (inherited)", v)
	}
}

func TestDepthAndKeys(t *testing.T) {
	var m *Map
	if got := m.Depth(); got != 0 {
		t.Fatalf("empty depth = %d, want 0", got)
	}
	m = m.Insert("a", 1)
	m = m.Insert("b", 2)
	m = m.Insert("a", 3)

	if got := m.Depth(); got != 3 {
		t.Fatalf("depth = %d, want 3", got)
	}
	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 distinct entries", keys)
	}
	if v, _ := m.Lookup("a"); v != 3 {
		t.Fatalf("a = %v, want 3 (most recent wins)", v)
	}
}

func TestEachStopsEarly(t *testing.T) {
	m := (&Map{}).Insert("a", 1).Insert("b", 2).Insert("c", 3)
	var seen []string
	m.Each(func(key string, _ any) bool {
		seen = append(seen, key)
		return len(seen) < 2
	})
	if len(seen) != 2 {
		t.Fatalf("Each visited %d keys, want 2 (early stop)", len(seen))
	}
}
