// Package param implements the Parameter model that binds an algorithm's
// named inputs to io types in the registry.
package param

import (
	"fmt"

	"github.com/rakunlabs/algofab/pkg/iotype"
)

// Parameter describes one named input or output slot of an algorithm.
// Optional is derived from Default being non-nil, matching the source's
// `optional = default_value is not None` rule.
type Parameter struct {
	Name    string
	IOType  iotype.Type
	Doc     string
	Default any
}

// Optional reports whether this parameter may be omitted from a request,
// falling back to Default when absent.
func (p Parameter) Optional() bool {
	return p.Default != nil
}

// Bind validates value against the parameter's io type. If value is nil
// and the parameter is optional, Default is returned instead.
func (p Parameter) Bind(value any, present bool) (any, error) {
	if !present || value == nil {
		if p.Optional() {
			return p.Default, nil
		}
		return nil, fmt.Errorf("parameter %q is required", p.Name)
	}
	v, err := p.IOType.Accept(value)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	return v, nil
}

// Set is an ordered collection of parameters belonging to one algorithm
// signature (either its input or its output list).
type Set []Parameter

// ByName returns the parameter with the given name, if present.
func (s Set) ByName(name string) (Parameter, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// BindAll validates a decoded JSON object against every parameter in the
// set. Unknown keys in input not present in the set are rejected, missing
// required parameters are rejected, and resulting values are returned
// keyed by parameter name.
func (s Set) BindAll(input map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	seen := make(map[string]struct{}, len(input))

	for _, p := range s {
		v, present := input[p.Name]
		if present {
			seen[p.Name] = struct{}{}
		}
		bound, err := p.Bind(v, present)
		if err != nil {
			return nil, err
		}
		out[p.Name] = bound
	}

	for k := range input {
		if _, ok := seen[k]; !ok {
			if _, known := s.ByName(k); !known {
				return nil, fmt.Errorf("unknown parameter %q", k)
			}
		}
	}

	return out, nil
}

// Register registers the parameter's io type into the registry using
// first-wins semantics, mirroring the Python Parameter constructor's
// `if type_id not in iolib: iolib[type_id] = io_type` side effect.
func (p Parameter) Register(reg *iotype.Registry) error {
	_, _, err := reg.Register(p.IOType)
	return err
}

// String builds a string-typed parameter, mirroring Parameter.string in
// the source's static helper set.
func String(name, ioTypeID string, doc string, def any) Parameter {
	return Parameter{
		Name:   name,
		IOType: iotype.Type{ID: ioTypeID, Name: ioTypeID, Meta: iotype.MetaString},
		Doc:    doc,
		Default: def,
	}
}

// Number builds a number-typed parameter.
func Number(name, ioTypeID string, doc string, def any) Parameter {
	return Parameter{
		Name:   name,
		IOType: iotype.Type{ID: ioTypeID, Name: ioTypeID, Meta: iotype.MetaNumber},
		Doc:    doc,
		Default: def,
	}
}

// NumArray builds a numeric-array-typed parameter.
func NumArray(name, ioTypeID string, doc string, def any) Parameter {
	return Parameter{
		Name:   name,
		IOType: iotype.Type{ID: ioTypeID, Name: ioTypeID, Meta: iotype.MetaNumArray},
		Doc:    doc,
		Default: def,
	}
}
