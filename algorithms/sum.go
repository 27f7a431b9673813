// Package algorithms bundles the built-in algorithm entries compiled
// into the server binary, mirroring the blank-import registration
// convention of the teacher's internal/service/workflow/nodes package.
package algorithms

import (
	"context"

	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/param"
)

// sumInput is the decorated-form struct sum's reflection-driven
// registration derives its schema from. The resources field is reserved
// and never bound from request input.
type sumInput struct {
	Values    []float64          `json:"values" algo:"values,numarray,numarray"`
	Resources map[string]float64 `json:"-" algo:"resources"`
}

type sumOutput struct {
	Total float64 `json:"total"`
}

func sumRun(_ context.Context, in *sumInput) (sumOutput, error) {
	var total float64
	for _, v := range in.Values {
		total += v
	}
	return sumOutput{Total: total}, nil
}

// RegisterSum registers the "sum" algorithm into reg, resolving its io
// types against ioReg.
func RegisterSum(reg *algorithm.Registry, ioReg *iotype.Registry) error {
	return algorithm.RegisterFunc(reg, ioReg, "sum", algorithm.AlgoMeta{
		Name:    "Sum",
		Version: "1.0.0",
		Doc:     "Sums a list of numbers.",
		Outputs: param.Set{param.Number("total", "number", "sum of the inputs", nil)},
	}, sumRun)
}
