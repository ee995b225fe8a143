// Package solver wraps Gorgonia Solvers so that they can be stored in
// JSON configuration files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

var registered = map[Type]reflect.Type{
	Adam:    reflect.TypeOf(AdamConfig{}),
	Vanilla: reflect.TypeOf(VanillaConfig{}),
	RMSProp: reflect.TypeOf(RMSPropConfig{}),
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
//
// Gorgonia solvers keep per-parameter state (e.g. Adam moments), so a
// Solver must only ever step a single network. Use Fresh to obtain an
// independent solver with the same configuration.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSolver: %w", err)
	}

	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// Fresh returns a new Solver with the same configuration but no
// accumulated state.
func (s *Solver) Fresh() *Solver {
	return &Solver{
		Solver: s.Config.Create(),
		Type:   s.Type,
		Config: s.Config,
	}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	ty, ok := registered[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshalJSON: unknown solver type %q", raw.Type)
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
		return fmt.Errorf("unmarshalJSON: %v config: %w", raw.Type, err)
	}

	solver, err := newSolver(raw.Type, value.Elem().Interface().(Config))
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	*s = *solver

	return nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool

	// Validate returns an error if the hyperparameters are unusable
	Validate() error
}

func validateStep(stepSize float64, batch int) error {
	if stepSize <= 0 {
		return fmt.Errorf("validate: step size must be positive, have %v",
			stepSize)
	}
	if batch < 1 {
		return fmt.Errorf("validate: batch must be positive, have %v", batch)
	}
	return nil
}
