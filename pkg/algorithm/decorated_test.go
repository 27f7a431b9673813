package algorithm

import (
	"context"
	"testing"

	"github.com/rakunlabs/algofab/pkg/iotype"
)

type decoratedInput struct {
	X         float64             `json:"x" algo:"x,number,number"`
	Resources map[string]float64  `json:"-" algo:"resources"`
}

type decoratedOutput struct {
	Double float64 `json:"double"`
}

func TestRegisterFuncDerivesInputsAndBindsResources(t *testing.T) {
	reg := NewRegistry()
	ioReg := iotype.NewRegistry()

	var seenResources map[string]float64
	run := func(_ context.Context, in *decoratedInput) (decoratedOutput, error) {
		seenResources = in.Resources
		return decoratedOutput{Double: in.X * 2}, nil
	}

	if err := RegisterFunc(reg, ioReg, "double", AlgoMeta{Name: "Double"}, run); err != nil {
		t.Fatalf("register func: %v", err)
	}

	algo, ok := reg.Get("double")
	if !ok {
		t.Fatalf("expected algorithm to be registered")
	}
	if len(algo.Inputs) != 1 || algo.Inputs[0].Name != "x" {
		t.Fatalf("expected derived input 'x', got %+v", algo.Inputs)
	}

	out, err := algo.Run(context.Background(), map[string]any{"x": 3.0}, map[string]float64{"cpu": 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out["double"] != 6.0 {
		t.Fatalf("unexpected output: %v", out)
	}
	if seenResources["cpu"] != 1 {
		t.Fatalf("expected resources to be injected into reserved field, got %v", seenResources)
	}
}
