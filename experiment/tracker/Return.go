package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Return tracks and saves the episodic return of a run. The return
// of an episode is only recorded once the last tick of that episode is
// tracked.
type Return struct {
	lastTick       int
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker that saves to
// filename
func NewReturn(filename string) *Return {
	return &Return{lastTick: 0, filename: filename}
}

// Track implements the Tracker interface. Track panics if it is called
// for non-sequential ticks.
func (r *Return) Track(t Tick) {
	if r.lastTick+1 != t.Number {
		panic(fmt.Sprintf("track: last two ticks tracked are not "+
			"sequential: tick %v --> tick %v", r.lastTick, t.Number))
	}

	if !t.Last {
		r.lastTick = t.Number
		return
	}

	r.episodeReturns = append(r.episodeReturns, t.Return)
	r.lastTick = 0
}

// Returns returns the episodic returns tracked so far
func (r *Return) Returns() []float64 {
	out := make([]float64, len(r.episodeReturns))
	copy(out, r.episodeReturns)
	return out
}

// Save implements the Tracker interface
func (r *Return) Save() error {
	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err := en.Encode(r.episodeReturns); err != nil {
		return fmt.Errorf("save: could not encode return data: %w", err)
	}
	return nil
}
