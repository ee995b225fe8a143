// Package expreplay implements a fixed-capacity experience replay
// buffer of (s, a, r, s') transitions.
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/robogym/timestep"
)

// MinSamples is the number of transitions that must be stored before
// the buffer can be sampled.
const MinSamples = 3

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample samples a batch of at most batchSize transitions and
	// returns the batch of states, actions, rewards, and next states
	// in row-major order.
	Sample(batchSize int) ([]float64, []float64, []float64, []float64,
		error)

	// Len returns the current number of transitions in the buffer
	Len() int

	// MaxCapacity returns the maximum allowable transitions in the
	// buffer
	MaxCapacity() int
}

// Config describes an experience replay buffer
type Config struct {
	MaxReplayCapacity int
}

// Create creates and returns the ExperienceReplayer with the specified
// Config.
func (c Config) Create(featureSize, actionSize int,
	seed uint64) (ExperienceReplayer, error) {
	return New(NewUniformSelector(seed), c.MaxReplayCapacity, featureSize,
		actionSize)
}

// cache implements a ring buffer over flat []float64 storage. The
// cursor marks the slot that will be written next; once the cache is
// full each insert overwrites the oldest transition.
type cache struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	nextStateCache []float64

	cursor int
	length int

	sampler Selector

	maxCapacity int
	featureSize int
	actionSize  int
}

// New creates and returns a new ExperienceReplayer. The sampler
// determines which slots are drawn on each call to Sample. The
// featureSize and actionSize parameters define the size of the
// feature and action vectors.
func New(sampler Selector, maxCapacity, featureSize,
	actionSize int) (ExperienceReplayer, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if featureSize < 1 || actionSize < 1 {
		return nil, fmt.Errorf("new: feature size (%v) and action size "+
			"(%v) must be positive", featureSize, actionSize)
	}

	return &cache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity*actionSize),
		rewardCache:    make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),

		sampler: sampler,

		maxCapacity: maxCapacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}, nil
}

// Len returns the current number of transitions in the cache
func (c *cache) Len() int {
	return c.length
}

// MaxCapacity returns the maximum number of transitions that are
// allowed in the cache
func (c *cache) MaxCapacity() int {
	return c.maxCapacity
}

// Add adds a transition to the cache at the cursor, overwriting the
// oldest transition if the cache is full.
func (c *cache) Add(t timestep.Transition) error {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("%w: feature size \n\twant(%v)\n\thave(%v)",
				errShape, c.featureSize, t.State.Len()),
		}
	}
	if t.Action.Len() != c.actionSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("%w: action size \n\twant(%v)\n\thave(%v)",
				errShape, c.actionSize, t.Action.Len()),
		}
	}

	index := c.cursor

	stateInd := index * c.featureSize
	for i := 0; i < c.featureSize; i++ {
		c.stateCache[stateInd+i] = t.State.AtVec(i)
		c.nextStateCache[stateInd+i] = t.NextState.AtVec(i)
	}

	actionInd := index * c.actionSize
	for i := 0; i < c.actionSize; i++ {
		c.actionCache[actionInd+i] = t.Action.AtVec(i)
	}

	c.rewardCache[index] = t.Reward

	c.cursor = (c.cursor + 1) % c.maxCapacity
	if c.length < c.maxCapacity {
		c.length++
	}
	return nil
}

// Sample samples and returns a batch of transitions from the replay
// buffer. The batch holds min(batchSize, Len()-1) transitions.
func (c *cache) Sample(batchSize int) ([]float64, []float64, []float64,
	[]float64, error) {
	if c.length < MinSamples {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return nil, nil, nil, nil, err
	}

	n := batchSize
	if n > c.length-1 {
		n = c.length - 1
	}
	indices := c.sampler.choose(n, c.length-2)

	stateBatch := make([]float64, n*c.featureSize)
	nextStateBatch := make([]float64, n*c.featureSize)
	actionBatch := make([]float64, n*c.actionSize)
	rewardBatch := make([]float64, n)

	for i, index := range indices {
		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize],
		)

		batchStartInd = i * c.actionSize
		expStartInd = index * c.actionSize
		copy(actionBatch[batchStartInd:batchStartInd+c.actionSize],
			c.actionCache[expStartInd:expStartInd+c.actionSize],
		)

		rewardBatch[i] = c.rewardCache[index]
	}

	return stateBatch, actionBatch, rewardBatch, nextStateBatch, nil
}

// String returns the string representation of the cache
func (c *cache) String() string {
	baseStr := "Length: %v \nCursor: %v \nStates: %v \nActions: %v " +
		"\nRewards: %v \nNext States: %v"
	return fmt.Sprintf(baseStr, c.length, c.cursor, c.stateCache,
		c.actionCache, c.rewardCache, c.nextStateCache)
}
