package parser

import "time"

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// TelemetryMode controls telemetry collection
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Counts only
	TelemetryTiming                      // Counts + parse time
)

// DefaultMaxDepth is the deepest action nesting accepted by default.
const DefaultMaxDepth = 32

// ParserConfig holds parser configuration
type ParserConfig struct {
	maxDepth  int
	telemetry TelemetryMode
	sink      *ParseTelemetry
}

func newConfig(opts []ParserOpt) *ParserConfig {
	config := &ParserConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithMaxDepth limits how deeply block actions may nest.
func WithMaxDepth(depth int) ParserOpt {
	return func(c *ParserConfig) {
		c.maxDepth = depth
	}
}

// WithTelemetry fills dst with parse metrics once parsing finishes,
// successfully or not.
func WithTelemetry(mode TelemetryMode, dst *ParseTelemetry) ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = mode
		c.sink = dst
	}
}

// ParseTelemetry holds parser metrics
type ParseTelemetry struct {
	ParseTime time.Duration // Zero unless TelemetryTiming
	Runes     int           // Input size
	Lines     int
	Programs  int
	Exercises int
	Failed    bool
}
