package algorithms

import (
	"context"

	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/param"
)

type echoInput struct {
	Message string `json:"message" algo:"message,string,string"`
}

type echoOutput struct {
	Message string `json:"message"`
}

func echoRun(_ context.Context, in *echoInput) (echoOutput, error) {
	return echoOutput{Message: in.Message}, nil
}

// RegisterEcho registers the "echo" algorithm, the simplest possible
// decorated-form entry: no resources field, no cache opt-out.
func RegisterEcho(reg *algorithm.Registry, ioReg *iotype.Registry) error {
	return algorithm.RegisterFunc(reg, ioReg, "echo", algorithm.AlgoMeta{
		Name:    "Echo",
		Version: "1.0.0",
		Doc:     "Returns the given message unchanged.",
		Outputs: param.Set{param.String("message", "string", "the echoed message", nil)},
	}, echoRun)
}
