package iotype

import "testing"

func TestRegisterFirstWins(t *testing.T) {
	r := NewRegistry()

	first := Type{ID: "num", Name: "Number", Meta: MetaNumber}
	second := Type{ID: "num", Name: "Different Name", Meta: MetaString}

	got1, won1, err := r.Register(first)
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if !won1 {
		t.Fatalf("expected first registration to win")
	}
	if got1.Name != "Number" {
		t.Fatalf("unexpected stored type: %+v", got1)
	}

	got2, won2, err := r.Register(second)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if won2 {
		t.Fatalf("expected second registration to lose")
	}
	if got2.Name != "Number" {
		t.Fatalf("expected first-registered value retained, got %+v", got2)
	}

	if r.Len() != 1 {
		t.Fatalf("expected 1 registered type, got %d", r.Len())
	}
}

func TestRegisterMissingFields(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Register(Type{Name: "x", Meta: MetaString}); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, _, err := r.Register(Type{ID: "x", Meta: MetaString}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, _, err := r.Register(Type{ID: "x", Name: "x"}); err == nil {
		t.Fatalf("expected error for missing meta")
	}
}

func TestAcceptString(t *testing.T) {
	ty := Type{ID: "s", Name: "String", Meta: MetaString}
	if _, err := ty.Accept(42); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	v, err := ty.Accept("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestAcceptStringPatternCondition(t *testing.T) {
	ty := Type{ID: "s", Name: "String", Meta: MetaString, Condition: "[a-z]+"}
	if _, err := ty.Accept("Hello"); err == nil {
		t.Fatalf("expected pattern mismatch error")
	}
	v, err := ty.Accept("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestAcceptNumberCondition(t *testing.T) {
	ty := Type{ID: "n", Name: "Number", Meta: MetaNumber, Condition: "0:100"}
	if _, err := ty.Accept(150.0); err == nil {
		t.Fatalf("expected range error")
	}
	v, err := ty.Accept(50.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 50.0 {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestAcceptNumArray(t *testing.T) {
	ty := Type{ID: "na", Name: "NumArray", Meta: MetaNumArray}
	v, err := ty.Accept([]any{1.0, 2.0, 3.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := v.([]float64)
	if !ok || len(arr) != 3 {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestListPagination(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		if _, _, err := r.Register(Type{ID: id, Name: id, Meta: MetaString}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	page, err := r.List(1, 1, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].ID != "b" {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := r.List(10, 1, false); err == nil {
		t.Fatalf("expected error when skip exceeds size")
	}

	full, err := r.List(0, 0, true)
	if err != nil {
		t.Fatalf("list full: %v", err)
	}
	if len(full) != 3 {
		t.Fatalf("expected full listing of 3, got %d", len(full))
	}
}
