package expreplay

import (
	"golang.org/x/exp/rand"
)

// Selector implements functionality for choosing which slots of an
// experience replay buffer should be sampled
type Selector interface {
	// choose selects n slots in [0, upper). If upper is not positive,
	// slot 0 is the only candidate.
	choose(n, upper int) []int
}

// uniformSelector is a Selector which selects slots uniformly
// randomly with replacement
type uniformSelector struct {
	rng *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly, with replacement, from an experience replay buffer
func NewUniformSelector(seed uint64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{rng: rng}
}

// choose selects n slots uniformly at random with replacement
func (u *uniformSelector) choose(n, upper int) []int {
	selected := make([]int, n)
	if upper <= 0 {
		return selected
	}

	for i := range selected {
		selected[i] = u.rng.Intn(upper)
	}
	return selected
}
