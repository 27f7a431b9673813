package param

import (
	"testing"

	"github.com/rakunlabs/algofab/pkg/iotype"
)

func TestOptionalDerivedFromDefault(t *testing.T) {
	required := Number("x", "number", "", nil)
	if required.Optional() {
		t.Fatalf("expected required parameter to be non-optional")
	}

	optional := Number("y", "number", "", 0.0)
	if !optional.Optional() {
		t.Fatalf("expected parameter with default to be optional")
	}
}

func TestBindAllMissingRequired(t *testing.T) {
	set := Set{Number("x", "number", "", nil)}
	if _, err := set.BindAll(map[string]any{}); err == nil {
		t.Fatalf("expected error for missing required parameter")
	}
}

func TestBindAllAppliesDefault(t *testing.T) {
	set := Set{Number("x", "number", "", 7.0)}
	out, err := set.BindAll(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["x"] != 7.0 {
		t.Fatalf("expected default applied, got %v", out["x"])
	}
}

func TestBindAllRejectsUnknownKeys(t *testing.T) {
	set := Set{Number("x", "number", "", 1.0)}
	if _, err := set.BindAll(map[string]any{"y": 1.0}); err == nil {
		t.Fatalf("expected error for unknown parameter")
	}
}

func TestRegisterFirstWins(t *testing.T) {
	reg := iotype.NewRegistry()
	p1 := Parameter{Name: "a", IOType: iotype.Type{ID: "dup", Name: "First", Meta: iotype.MetaString}}
	p2 := Parameter{Name: "b", IOType: iotype.Type{ID: "dup", Name: "Second", Meta: iotype.MetaNumber}}

	if err := p1.Register(reg); err != nil {
		t.Fatalf("register p1: %v", err)
	}
	if err := p2.Register(reg); err != nil {
		t.Fatalf("register p2: %v", err)
	}

	got, ok := reg.Get("dup")
	if !ok {
		t.Fatalf("expected dup to be registered")
	}
	if got.Name != "First" {
		t.Fatalf("expected first registration to win, got %+v", got)
	}
}
