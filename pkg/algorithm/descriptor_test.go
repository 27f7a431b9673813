package algorithm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rakunlabs/algofab/pkg/iotype"
)

func TestRegisterTypeDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic registering a duplicate type factory")
		}
	}()
	name := "test-dup-type"
	RegisterType(name, func(Descriptor) (HandlerFunc, error) { return nil, nil })
	RegisterType(name, func(Descriptor) (HandlerFunc, error) { return nil, nil })
}

func TestLoadDescriptorFileYAML(t *testing.T) {
	RegisterType("test-echo", func(d Descriptor) (HandlerFunc, error) {
		return func(_ context.Context, inputs map[string]any, _ map[string]float64) (map[string]any, error) {
			return map[string]any{"echoed": inputs["message"]}, nil
		}, nil
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "echo.yaml")
	content := `
id: yaml-echo
name: YAML Echo
type: test-echo
inputs:
  - name: message
    io_type: string
    meta: string
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}

	reg := NewRegistry()
	ioReg := iotype.NewRegistry()
	if err := LoadDescriptorFile(path, reg, ioReg); err != nil {
		t.Fatalf("load descriptor file: %v", err)
	}

	algo, ok := reg.Get("yaml-echo")
	if !ok {
		t.Fatalf("expected descriptor-registered algorithm to be found")
	}
	out, err := algo.Run(context.Background(), map[string]any{"message": "hi"}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out["echoed"] != "hi" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestLoadDescriptorFileUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := "id: bad\nname: Bad\ntype: does-not-exist\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}

	reg := NewRegistry()
	ioReg := iotype.NewRegistry()
	if err := LoadDescriptorFile(path, reg, ioReg); err == nil {
		t.Fatalf("expected error loading descriptor with unknown type")
	}
}
