// Package checkpointer implements Checkpointers, which decide when the
// policy of an agent is saved to disk during training
package checkpointer

import "github.com/samuelfneumann/robogym/agent"

// Checkpointer checkpoints an agent based on the episodes it finishes
type Checkpointer interface {
	// Checkpoint is called with the return of every finished episode
	// and reports whether the agent was saved
	Checkpoint(episode int, ret float64) (bool, error)
}

// Serializable is an object whose policy can be saved to a file
type Serializable = agent.Checkpointer
