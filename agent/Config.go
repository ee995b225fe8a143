package agent

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes for an
	// environment with the given observation and action dimensions.
	CreateAgent(features, actions int, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
