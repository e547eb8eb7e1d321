package q3log

import (
	"fmt"
	"log/slog"

	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// DefaultMaxLineBytes is the longest line Lines accepts unless
// WithMaxLineBytes says otherwise.
const DefaultMaxLineBytes = 64 * 1024

// ParseOption configures NewDecoder, Summarize and the Parse functions
// using the functional options pattern.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for a pipeline.
type parseConfig struct {
	policy       policy.Policy
	logger       *slog.Logger
	passthrough  bool
	flushOpen    bool
	maxLineBytes int
}

// defaultParseConfig returns a parseConfig with sensible defaults.
func defaultParseConfig() *parseConfig {
	return &parseConfig{
		logger:       discardLogger,
		maxLineBytes: DefaultMaxLineBytes,
	}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option values.
func (c *parseConfig) validate() error {
	if c.maxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be positive, got %d", c.maxLineBytes)
	}
	return nil
}

// WithPolicy sets the whole strictness policy at once.
// Default: the zero Policy (recoverable errors are dropped silently).
func WithPolicy(p policy.Policy) ParseOption {
	return func(c *parseConfig) {
		c.policy = p
	}
}

// WithPedantic makes every malformed line and model violation fatal.
func WithPedantic(pedantic bool) ParseOption {
	return func(c *parseConfig) {
		c.policy.Pedantic = pedantic
	}
}

// WithVerbose reports skipped lines and events as *SkippedError values
// instead of dropping them.
func WithVerbose(verbose bool) ParseOption {
	return func(c *parseConfig) {
		c.policy.Verbose = verbose
	}
}

// WithLogger sets a custom logger for skipped lines and match lifecycle
// messages.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPassthroughUnknown decodes lines with an unknown event name as
// event.Unrecognized instead of failing them.
func WithPassthroughUnknown(passthrough bool) ParseOption {
	return func(c *parseConfig) {
		c.passthrough = passthrough
	}
}

// WithFlushOpenMatch emits a match still open at the end of input, marked
// Truncated. Default: false (the partial match is discarded).
func WithFlushOpenMatch(flush bool) ParseOption {
	return func(c *parseConfig) {
		c.flushOpen = flush
	}
}

// WithMaxLineBytes sets the longest line accepted when reading from an
// io.Reader. A longer line is reported as a *LogParsingError and handled by
// the strictness policy like any other malformed line.
// Default is 64KB (65536 bytes).
func WithMaxLineBytes(n int) ParseOption {
	return func(c *parseConfig) {
		c.maxLineBytes = n
	}
}
