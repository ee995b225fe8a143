// Package initwfn wraps Gorgonia weight initializers so that they can
// be stored in JSON configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type names a weight initialization scheme
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
	Constant Type = "Constant"
)

// registered maps each Type to the concrete Config that describes it
var registered = map[Type]reflect.Type{
	GlorotU:  reflect.TypeOf(GlorotUConfig{}),
	GlorotN:  reflect.TypeOf(GlorotNConfig{}),
	HeU:      reflect.TypeOf(HeUConfig{}),
	HeN:      reflect.TypeOf(HeNConfig{}),
	Uniform:  reflect.TypeOf(UniformConfig{}),
	Gaussian: reflect.TypeOf(GaussianConfig{}),
	Zeroes:   reflect.TypeOf(ZeroesConfig{}),
	Constant: reflect.TypeOf(ConstantConfig{}),
}

// InitWFn wraps a Gorgonia InitWFn together with the configuration
// that created it. Marshalled, an InitWFn looks like:
//
//	{"Type": "GlorotU", "Config": {"Gain": 1}}
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

// New returns a new InitWFn described by c
func New(c Config) *InitWFn {
	return &InitWFn{
		initWFn: c.Create(),
		Type:    c.Type(),
		Config:  c,
	}
}

// InitWFn returns the wrapped Gorgonia InitWFn
func (w *InitWFn) InitWFn() G.InitWFn {
	return w.initWFn
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (w *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	ty, ok := registered[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshalJSON: unknown initializer type %q",
			raw.Type)
	}

	value := reflect.New(ty)
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: %v config: %w", raw.Type, err)
		}
	}

	*w = *New(value.Elem().Interface().(Config))
	return nil
}

// Config implements a Gorgonia InitWFn configuration and can be used to
// create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes
	Create() G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}
