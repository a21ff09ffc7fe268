package ecs

// Config collects the host-recognized configuration knobs from spec.md
// §6. Every field has a documented default and is optional: a zero-value
// Config behaves exactly like DefaultConfig() for the fields that matter
// at the core level.
type Config struct {
	// EntityNodesRoot and SystemNodesRoot name scene roots for entities and
	// systems; the core neither reads them nor passes them to the Host.
	EntityNodesRoot string
	SystemNodesRoot string

	// PoolSizeLimit bounds the query-builder free list.
	PoolSizeLimit int

	// DefaultGroup names a default system group. The core does not read
	// it: a system's group is whatever its SystemBase was given.
	DefaultGroup string

	// ProcessEmptyDefault and ActiveDefault describe system defaults. The
	// core does not read them: NewSystemBase sets its own (process_empty
	// off, active on).
	ProcessEmptyDefault bool
	ActiveDefault       bool

	// ParallelProcessingDefault and ParallelThresholdDefault describe the
	// parallel batcher defaults. The core does not read them: NewSystemBase
	// sets its own (parallel off, threshold 50).
	ParallelProcessingDefault bool
	ParallelThresholdDefault  int

	// Debug enables assertion-class programming errors (spec.md §7): when
	// false (release), the same conditions are silently absorbed.
	Debug bool
}

// DefaultConfig returns the documented defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		EntityNodesRoot:          "Entities",
		SystemNodesRoot:          "Systems",
		PoolSizeLimit:            defaultQueryBuilderPoolSize,
		DefaultGroup:             "",
		ProcessEmptyDefault:      false,
		ActiveDefault:            true,
		ParallelProcessingDefault: false,
		ParallelThresholdDefault: 50,
		Debug:                    false,
	}
}
