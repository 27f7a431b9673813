package algorithms

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/rakunlabs/algofab/pkg/algorithm"
)

func init() {
	algorithm.RegisterType("script", buildScriptHandler)
}

// buildScriptHandler implements the "script" descriptor type: the
// algorithm body is an embedded JavaScript program run on a fresh goja
// runtime per invocation, mirroring the source's workflow "script" node
// (internal/service/workflow/nodes) but generalized to the cacheable,
// resource-aware job model instead of a workflow step.
//
// Config must carry a "source" string defining a top-level `run(input,
// resources)` function returning an object.
func buildScriptHandler(d algorithm.Descriptor) (algorithm.HandlerFunc, error) {
	source, _ := d.Config["source"].(string)
	if source == "" {
		return nil, fmt.Errorf("script descriptor %q: config.source is required", d.ID)
	}

	return func(ctx context.Context, inputs map[string]any, resources map[string]float64) (map[string]any, error) {
		vm := goja.New()
		if _, err := vm.RunString(source); err != nil {
			return nil, fmt.Errorf("script %q: compile: %w", d.ID, err)
		}

		runFn, ok := goja.AssertFunction(vm.Get("run"))
		if !ok {
			return nil, fmt.Errorf("script %q: source must define a top-level run(input, resources) function", d.ID)
		}

		resourcesArg := make(map[string]any, len(resources))
		for k, v := range resources {
			resourcesArg[k] = v
		}

		result, err := runFn(goja.Undefined(), vm.ToValue(inputs), vm.ToValue(resourcesArg))
		if err != nil {
			return nil, fmt.Errorf("script %q: run: %w", d.ID, err)
		}

		exported, ok := result.Export().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("script %q: run must return an object", d.ID)
		}
		return exported, nil
	}, nil
}
