package solver

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalAdam(t *testing.T) {
	in := []byte(`{"Type": "Adam", "Config": {"StepSize": 0.0001,
		"Epsilon": 1e-8, "Beta1": 0.9, "Beta2": 0.999, "Batch": 1}}`)

	var s Solver
	if err := json.Unmarshal(in, &s); err != nil {
		t.Fatal(err)
	}
	if s.Type != Adam {
		t.Errorf("want type %v have %v", Adam, s.Type)
	}
	if s.Solver == nil {
		t.Fatal("gorgonia solver not created")
	}

	fresh := s.Fresh()
	if fresh.Solver == s.Solver {
		t.Error("fresh solver shares state with the original")
	}
	if fresh.Config != s.Config {
		t.Errorf("fresh config %v differs from %v", fresh.Config, s.Config)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown type":  `{"Type": "Adagrad", "Config": {}}`,
		"zero stepsize": `{"Type": "Vanilla", "Config": {"Batch": 1}}`,
		"bad rho": `{"Type": "RMSProp", "Config": {"StepSize": 0.1,
			"Rho": 1.5, "Batch": 1}}`,
	}

	for name, in := range tests {
		var s Solver
		if err := json.Unmarshal([]byte(in), &s); err == nil {
			t.Errorf("%v: no error", name)
		}
	}
}
