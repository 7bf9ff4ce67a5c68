package agentcore

import "time"

// RuntimeOptions configures a Runtime engine instance. It follows the
// teacher's Config/Default/sanitize pattern: a plain struct with yaml tags
// for external loaders, a Default constructor with sane production values,
// and a Sanitize step that clamps out-of-range fields instead of rejecting
// them outright.
type RuntimeOptions struct {
	// MaxCycles bounds how many cycles a single run may execute before the
	// backend returns StatusMaxCycles.
	MaxCycles int `yaml:"max_cycles"`

	// MemoryThresholdPercentage is the default memory-pressure threshold
	// used by the tool planner's compress_memory step when an AgentTask does
	// not set its own.
	MemoryThresholdPercentage int `yaml:"memory_threshold_percentage"`

	// CompactionThresholdChars and CompactionKeepRecent parameterize the
	// memory compactor (§4.5 defaults: 24000 / 10).
	CompactionThresholdChars int `yaml:"compaction_threshold_chars"`
	CompactionKeepRecent     int `yaml:"compaction_keep_recent"`

	// StrictCheckpointing, when true, turns a checkpoint-store failure into
	// a FAILED run instead of a logged-and-ignored best-effort attempt.
	StrictCheckpointing bool `yaml:"strict_checkpointing"`

	// ThreadPoolSize sizes the thread backend's worker pool. Zero selects
	// the inline backend's single-goroutine behavior at the call site; a
	// positive value is passed to backend.NewThread.
	ThreadPoolSize int `yaml:"thread_pool_size"`

	// ResumeTokenTTL bounds how long a session resumption token (session/token.go)
	// remains valid after issuance.
	ResumeTokenTTL time.Duration `yaml:"resume_token_ttl"`
}

// DefaultRuntimeOptions returns the production defaults, grounded on the
// teacher's DefaultLoopConfig values and spec.md §4.5's stated defaults.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		MaxCycles:                 25,
		MemoryThresholdPercentage: 80,
		CompactionThresholdChars:  24_000,
		CompactionKeepRecent:      10,
		StrictCheckpointing:       false,
		ThreadPoolSize:            0,
		ResumeTokenTTL:            24 * time.Hour,
	}
}

// Sanitize clamps fields to safe minimums and returns the corrected options.
// It never errors; out-of-range input is a configuration mistake, not a
// fatal one, mirroring sanitizeLoopConfig's tolerant merge behavior.
func (o RuntimeOptions) Sanitize() RuntimeOptions {
	out := o
	if out.MaxCycles <= 0 {
		out.MaxCycles = DefaultRuntimeOptions().MaxCycles
	}
	if out.MemoryThresholdPercentage <= 0 || out.MemoryThresholdPercentage > 100 {
		out.MemoryThresholdPercentage = DefaultRuntimeOptions().MemoryThresholdPercentage
	}
	if out.CompactionThresholdChars <= 0 {
		out.CompactionThresholdChars = DefaultRuntimeOptions().CompactionThresholdChars
	}
	if out.CompactionKeepRecent <= 0 {
		out.CompactionKeepRecent = DefaultRuntimeOptions().CompactionKeepRecent
	}
	if out.ThreadPoolSize < 0 {
		out.ThreadPoolSize = 0
	}
	if out.ResumeTokenTTL <= 0 {
		out.ResumeTokenTTL = DefaultRuntimeOptions().ResumeTokenTTL
	}
	return out
}
