package parser

import (
	"log/slog"
	"time"
)

// DefaultMaxDepth bounds statement nesting when WithMaxDepth is not given.
const DefaultMaxDepth = 256

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Counts only
	TelemetryTiming                      // Counts + parse time
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Method call tracing
	DebugDetailed                   // Token-level tracing
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	telemetry TelemetryMode
	debug     DebugLevel
	maxDepth  int
	logger    *slog.Logger
}

// WithTelemetryBasic enables basic telemetry (counts only)
func WithTelemetryBasic() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + parse time)
func WithTelemetryTiming() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugPaths enables debug path tracing (development only)
func WithDebugPaths() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = DebugPaths
	}
}

// WithDebugDetailed enables detailed debug tracing (development only)
func WithDebugDetailed() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = DebugDetailed
	}
}

// WithMaxDepth limits how deeply IF, EVALUATE and inline PERFORM blocks may
// nest. Values below 1 fall back to DefaultMaxDepth.
func WithMaxDepth(depth int) ParserOpt {
	return func(c *ParserConfig) {
		c.maxDepth = depth
	}
}

// WithLogger sends debug traces and diagnostics to logger
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// ParseTelemetry holds parser metrics (production-safe)
type ParseTelemetry struct {
	LexTime        time.Duration // Time spent tokenizing, filled in by callers that lex
	ParseTime      time.Duration // Time spent parsing (TelemetryTiming only)
	TotalTime      time.Duration // Whole pipeline, filled in by callers that own it
	TokenCount     int           // Tokens in the input stream
	StatementCount int           // Statements produced, nested ones included
	ParagraphCount int           // Paragraphs, _ROOT_ included
	SkippedTokens  int           // Tokens force-consumed to keep making progress
	MaxDepth       int           // Deepest block nesting reached
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_parseIf", "paragraph", etc.
	TokenPos  int    // Current token position
	Context   string // Additional context
}
