package id

import "testing"

func TestUUIDGenerator_NewID(t *testing.T) {
	g := NewUUIDGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		v, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if !Valid(v) {
			t.Fatalf("expected uuid, got %q", v)
		}
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate id %q", v)
		}
		seen[v] = struct{}{}
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := &SequenceGenerator{Prefix: "pred"}
	a, _ := g.NewID()
	b, _ := g.NewID()
	if a != "pred-1" || b != "pred-2" {
		t.Fatalf("unexpected sequence %q %q", a, b)
	}
}
