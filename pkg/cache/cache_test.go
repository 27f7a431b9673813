package cache

import (
	"context"
	"testing"
)

func TestSignatureExcludesResources(t *testing.T) {
	withResources := map[string]any{"x": 1.0, "resources": map[string]any{"cpu": 2.0}}
	withoutResources := map[string]any{"x": 1.0}

	sig1, err := Signature("algo", withResources, DefaultHashAlg)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	sig2, err := Signature("algo", withoutResources, DefaultHashAlg)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	if sig1 != sig2 {
		t.Fatalf("expected resources key to be excluded from signature: %q != %q", sig1, sig2)
	}
}

func TestSignatureDiffersByAlgorithmID(t *testing.T) {
	inputs := map[string]any{"x": 1.0}
	sig1, _ := Signature("algo-a", inputs, DefaultHashAlg)
	sig2, _ := Signature("algo-b", inputs, DefaultHashAlg)
	if sig1 == sig2 {
		t.Fatalf("expected signatures to differ by algorithm id")
	}
}

func TestSignatureStableRegardlessOfKeyOrder(t *testing.T) {
	a := map[string]any{"x": 1.0, "y": 2.0}
	b := map[string]any{"y": 2.0, "x": 1.0}
	sig1, _ := Signature("algo", a, DefaultHashAlg)
	sig2, _ := Signature("algo", b, DefaultHashAlg)
	if sig1 != sig2 {
		t.Fatalf("expected signature independent of map construction order")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, ok, err := c.Fetch(ctx, "algo", "sig"); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	want := map[string]any{"result": 42.0}
	if err := c.Record(ctx, "algo", "sig", want); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, err := c.Fetch(ctx, "algo", "sig")
	if err != nil || !ok {
		t.Fatalf("expected hit after record, got ok=%v err=%v", ok, err)
	}
	if got["result"] != 42.0 {
		t.Fatalf("unexpected cached value: %v", got)
	}
}
