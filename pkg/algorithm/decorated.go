package algorithm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/param"
)

// ResourcesField is the reserved tag name marking the struct field that
// receives the task's granted resource vector instead of a request
// input, mirroring how the source treats `resources` as a keyword
// argument algorithm implementations receive but callers never supply
// directly.
const ResourcesField = "resources"

// fieldTag is the decoded form of an `algo:"..."` struct tag:
// name,io_type_id[,meta[,condition]] — meta/condition only matter the
// first time an io_type_id is seen, same as ParamDescriptor.
type fieldTag struct {
	name      string
	ioType    string
	meta      string
	condition string
}

func parseFieldTag(raw string) (fieldTag, bool) {
	if raw == "" {
		return fieldTag{}, false
	}
	parts := strings.Split(raw, ",")
	ft := fieldTag{name: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		ft.ioType = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		ft.meta = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		ft.condition = strings.TrimSpace(parts[3])
	}
	return ft, true
}

// RegisterFunc registers fn as a decorated-form algorithm entry, deriving
// its Inputs schema from the struct tags of fn's second argument and
// injecting the task's resource vector into any field tagged
// `algo:"resources"` instead of treating it as a request input. fn must
// have the shape:
//
//	func(ctx context.Context, in *InStruct) (OutStruct, error)
//
// This is the reflection/annotation-driven counterpart to the
// declarative Descriptor form, grounded on the same Noder contract the
// teacher's RegisterNodeType exposes for workflow nodes, generalized
// here to resource-aware, cacheable algorithm entries.
func RegisterFunc(reg *Registry, ioReg *iotype.Registry, id string, meta AlgoMeta, fn any) error {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("algorithm %q: fn must be a function", id)
	}
	if fnType.NumIn() != 2 || fnType.NumOut() != 2 {
		return fmt.Errorf("algorithm %q: fn must be func(context.Context, *In) (Out, error)", id)
	}

	inArgType := fnType.In(1)
	if inArgType.Kind() != reflect.Ptr || inArgType.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("algorithm %q: second parameter must be a pointer to struct", id)
	}
	inStructType := inArgType.Elem()

	inputs := make(param.Set, 0, inStructType.NumField())
	resourceFieldIdx := -1

	for i := 0; i < inStructType.NumField(); i++ {
		f := inStructType.Field(i)
		tag, ok := parseFieldTag(f.Tag.Get("algo"))
		if !ok {
			continue
		}
		if tag.name == ResourcesField {
			resourceFieldIdx = i
			continue
		}

		t := iotype.Type{ID: tag.ioType, Name: tag.ioType, Meta: iotype.Meta(tag.meta), Condition: tag.condition}
		if tag.meta == "" {
			existing, ok := ioReg.Get(tag.ioType)
			if !ok {
				return fmt.Errorf("algorithm %q: field %q references unregistered io type %q with no meta to declare it", id, f.Name, tag.ioType)
			}
			t = existing
		}
		resolved, _, err := ioReg.Register(t)
		if err != nil {
			return fmt.Errorf("algorithm %q: field %q: %w", id, f.Name, err)
		}

		inputs = append(inputs, param.Parameter{
			Name:   tag.name,
			IOType: resolved,
			Doc:    meta.InputDocs[tag.name],
		})
	}

	run := func(ctx context.Context, bound map[string]any, resources map[string]float64) (map[string]any, error) {
		payload, err := json.Marshal(bound)
		if err != nil {
			return nil, fmt.Errorf("algorithm %q: marshal inputs: %w", id, err)
		}
		argPtr := reflect.New(inStructType)
		if err := json.Unmarshal(payload, argPtr.Interface()); err != nil {
			return nil, fmt.Errorf("algorithm %q: decode inputs: %w", id, err)
		}
		if resourceFieldIdx >= 0 {
			argPtr.Elem().Field(resourceFieldIdx).Set(reflect.ValueOf(resources))
		}

		results := fnVal.Call([]reflect.Value{reflect.ValueOf(ctx), argPtr})
		if errVal := results[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}

		out, err := toOutputMap(results[0].Interface())
		if err != nil {
			return nil, fmt.Errorf("algorithm %q: encode outputs: %w", id, err)
		}
		return out, nil
	}

	return reg.Register(Algorithm{
		ID:           id,
		Name:         meta.Name,
		Version:      meta.Version,
		Doc:          meta.Doc,
		Ref:          meta.Ref,
		Inputs:       inputs,
		Outputs:      meta.Outputs,
		CacheDisable: meta.CacheDisable,
		Run:          run,
	})
}

// AlgoMeta carries the non-derivable metadata of a decorated-form
// registration: everything reflection cannot read off the Go function
// signature itself.
type AlgoMeta struct {
	Name         string
	Version      string
	Doc          string
	Ref          string
	Outputs      param.Set
	CacheDisable bool
	InputDocs    map[string]string
}

func toOutputMap(v any) (map[string]any, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
