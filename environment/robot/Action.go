package robot

import (
	"fmt"

	"github.com/samuelfneumann/robogym/environment/world"
)

// Verb is the kind of interaction of an action
type Verb int

const (
	Move Verb = iota
	Consume
	Deposit
	Scan
)

func (v Verb) String() string {
	switch v {
	case Move:
		return "Move"
	case Consume:
		return "Consume"
	case Deposit:
		return "Deposit"
	case Scan:
		return "Scan"
	default:
		return fmt.Sprintf("Verb(%d)", int(v))
	}
}

// DecodeAction splits an action into its verb and direction:
//
//	verb = action / 4, direction = action % 4
func DecodeAction(action int) (Verb, world.Direction, error) {
	if action < 0 || action >= NumActions {
		return 0, 0, fmt.Errorf("decodeAction: action must be in [0, %v), "+
			"have %v", NumActions, action)
	}
	return Verb(action / 4), world.Direction(action % 4), nil
}

// EncodeAction is the inverse of DecodeAction
func EncodeAction(v Verb, d world.Direction) int {
	return int(v)*4 + int(d)
}
