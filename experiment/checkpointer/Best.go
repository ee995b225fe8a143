package checkpointer

import (
	"fmt"
	"math"
)

// best checkpoints an object whenever an episode has a strictly higher
// return than every episode before it. Every checkpoint overwrites the
// same file.
type best struct {
	object   Serializable
	filename string
	best     float64
}

// NewBest returns a Checkpointer that saves object to filename after
// each episode that beats the best return seen so far
func NewBest(object Serializable, filename string) Checkpointer {
	return &best{
		object:   object,
		filename: filename,
		best:     math.Inf(-1),
	}
}

// Checkpoint implements the Checkpointer interface
func (b *best) Checkpoint(_ int, ret float64) (bool, error) {
	if ret <= b.best {
		return false, nil
	}

	b.best = ret
	if err := b.object.Checkpoint(b.filename); err != nil {
		return false, fmt.Errorf("checkpoint: %w", err)
	}
	return true, nil
}
