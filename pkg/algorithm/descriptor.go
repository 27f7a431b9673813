package algorithm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/param"
	"gopkg.in/yaml.v3"
)

// ParamDescriptor is the file-representable form of a param.Parameter.
// When IOType references an id already present in the io registry, that
// definition is reused; otherwise Meta/Condition declare a new one
// inline, which is registered first-wins exactly like the code path.
type ParamDescriptor struct {
	Name      string `yaml:"name" json:"name"`
	IOType    string `yaml:"io_type" json:"io_type"`
	Meta      string `yaml:"meta,omitempty" json:"meta,omitempty"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Doc       string `yaml:"doc,omitempty" json:"doc,omitempty"`
	Default   any    `yaml:"default,omitempty" json:"default,omitempty"`
}

func (pd ParamDescriptor) resolve(ioReg *iotype.Registry) (param.Parameter, error) {
	t := iotype.Type{
		ID:        pd.IOType,
		Name:      pd.IOType,
		Meta:      iotype.Meta(pd.Meta),
		Condition: pd.Condition,
	}
	if pd.Meta == "" {
		if existing, ok := ioReg.Get(pd.IOType); ok {
			t = existing
		} else {
			return param.Parameter{}, fmt.Errorf("parameter %q: io type %q is not registered and no meta given to declare it", pd.Name, pd.IOType)
		}
	}
	resolved, _, err := ioReg.Register(t)
	if err != nil {
		return param.Parameter{}, fmt.Errorf("parameter %q: %w", pd.Name, err)
	}
	return param.Parameter{
		Name:    pd.Name,
		IOType:  resolved,
		Doc:     pd.Doc,
		Default: pd.Default,
	}, nil
}

// Descriptor is the declarative, file-loadable record of an algorithm
// entry. Type selects a registered TypeFactory that turns Config into a
// HandlerFunc (e.g. "script" for an embedded goja program, "remote" for
// a proxied HTTP call) — this is the reserved "resources" param's
// injection point, since factories decide how the resource vector reaches
// the underlying call.
type Descriptor struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Version      string            `yaml:"version,omitempty" json:"version,omitempty"`
	Doc          string            `yaml:"doc,omitempty" json:"doc,omitempty"`
	Ref          string            `yaml:"ref,omitempty" json:"ref,omitempty"`
	Type         string            `yaml:"type" json:"type"`
	Config       map[string]any    `yaml:"config,omitempty" json:"config,omitempty"`
	Inputs       []ParamDescriptor `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs      []ParamDescriptor `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	CacheDisable bool              `yaml:"cache_disable,omitempty" json:"cache_disable,omitempty"`
}

// TypeFactory builds a HandlerFunc from a descriptor's Config block.
// Implementations live alongside the descriptor kind they serve (e.g.
// algorithms/script.go for "script", algorithms/remote.go for "remote")
// and call RegisterType from an init func, mirroring nodes/register.go's
// blank-import convention for built-in node types.
type TypeFactory func(d Descriptor) (HandlerFunc, error)

var (
	typeFactoriesMu sync.RWMutex
	typeFactories   = map[string]TypeFactory{}
)

// RegisterType adds a TypeFactory under name. Calling it twice for the
// same name panics at init time, matching RegisterNodeType's contract
// that built-in type names are a fixed, non-overlapping set.
func RegisterType(name string, factory TypeFactory) {
	typeFactoriesMu.Lock()
	defer typeFactoriesMu.Unlock()
	if _, exists := typeFactories[name]; exists {
		panic(fmt.Sprintf("algorithm: type factory %q already registered", name))
	}
	typeFactories[name] = factory
}

// GetTypeFactory looks up a previously registered TypeFactory.
func GetTypeFactory(name string) (TypeFactory, bool) {
	typeFactoriesMu.RLock()
	defer typeFactoriesMu.RUnlock()
	f, ok := typeFactories[name]
	return f, ok
}

// RegisteredTypes lists every registered factory name.
func RegisteredTypes() []string {
	typeFactoriesMu.RLock()
	defer typeFactoriesMu.RUnlock()
	out := make([]string, 0, len(typeFactories))
	for k := range typeFactories {
		out = append(out, k)
	}
	return out
}

// Build resolves d's parameters against ioReg and constructs the
// Algorithm by invoking d.Type's registered factory.
func (d Descriptor) Build(ioReg *iotype.Registry) (Algorithm, error) {
	factory, ok := GetTypeFactory(d.Type)
	if !ok {
		return Algorithm{}, fmt.Errorf("descriptor %q: unknown type %q", d.ID, d.Type)
	}

	inputs := make(param.Set, 0, len(d.Inputs))
	for _, pd := range d.Inputs {
		p, err := pd.resolve(ioReg)
		if err != nil {
			return Algorithm{}, fmt.Errorf("descriptor %q: %w", d.ID, err)
		}
		inputs = append(inputs, p)
	}
	outputs := make(param.Set, 0, len(d.Outputs))
	for _, pd := range d.Outputs {
		p, err := pd.resolve(ioReg)
		if err != nil {
			return Algorithm{}, fmt.Errorf("descriptor %q: %w", d.ID, err)
		}
		outputs = append(outputs, p)
	}

	run, err := factory(d)
	if err != nil {
		return Algorithm{}, fmt.Errorf("descriptor %q: build type %q: %w", d.ID, d.Type, err)
	}

	return Algorithm{
		ID:           d.ID,
		Name:         d.Name,
		Version:      d.Version,
		Doc:          d.Doc,
		Ref:          d.Ref,
		Inputs:       inputs,
		Outputs:      outputs,
		CacheDisable: d.CacheDisable,
		Run:          run,
	}, nil
}

// LoadDescriptorFile parses a YAML or JSON descriptor (or list of
// descriptors) and registers each resulting Algorithm into reg.
func LoadDescriptorFile(path string, reg *Registry, ioReg *iotype.Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load descriptor file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return fmt.Errorf("load descriptor file %s: unsupported extension %q", path, ext)
	}

	var single Descriptor
	var list []Descriptor
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return registerDescriptors(list, reg, ioReg, path)
	}
	if err := yaml.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("parse descriptor file %s: %w", path, err)
	}
	return registerDescriptors([]Descriptor{single}, reg, ioReg, path)
}

func registerDescriptors(list []Descriptor, reg *Registry, ioReg *iotype.Registry, path string) error {
	for _, d := range list {
		algo, err := d.Build(ioReg)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := reg.Register(algo); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
