package checkpointer

import "fmt"

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Serializable

	// filename returns the filename of the next checkpoint. To save
	// each checkpoint in its own file (e.g. model1.bin, model2.bin,
	// ..., modelK.bin) use FilenameEnumerator.
	filename func() string
}

// NewNEpisode returns a Checkpointer that saves object after every n
// episodes
func NewNEpisode(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNEpisode: interval must be positive, "+
			"have %v", n)
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint implements the Checkpointer interface. Episodes are
// counted from 0.
func (n *nEpisode) Checkpoint(episode int, _ float64) (bool, error) {
	if (episode+1)%n.interval != 0 {
		return false, nil
	}
	if err := n.object.Checkpoint(n.filename()); err != nil {
		return false, fmt.Errorf("checkpoint: %w", err)
	}
	return true, nil
}
