// Package cobol runs the whole extraction pipeline for one source file:
// format detection, normalization, division classification, procedure
// tokenization and parsing, and assembly of the output document.
package cobol

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/core/logging"
	"github.com/aledsdavies/cobolscope/runtime/divisions"
	"github.com/aledsdavies/cobolscope/runtime/lexer"
	"github.com/aledsdavies/cobolscope/runtime/parser"
	"github.com/aledsdavies/cobolscope/runtime/source"
)

// Option configures a pipeline run
type Option func(*config)

type config struct {
	logger     *slog.Logger
	maxDepth   int
	telemetry  bool
	debug      bool
	parserOpts []parser.ParserOpt
}

// WithLogger sends pipeline, lexer and parser traces to logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxDepth bounds statement nesting (see parser.WithMaxDepth)
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithTelemetry collects counts and stage timings on the Result
func WithTelemetry() Option {
	return func(c *config) {
		c.telemetry = true
	}
}

// WithDebugEvents records parser debug events on the Result
func WithDebugEvents() Option {
	return func(c *config) {
		c.debug = true
	}
}

// WithParserOptions passes extra options straight to the parser
func WithParserOptions(opts ...parser.ParserOpt) Option {
	return func(c *config) {
		c.parserOpts = append(c.parserOpts, opts...)
	}
}

// Result is one parsed program plus everything learned along the way.
type Result struct {
	Program     *document.Program
	Diagnostics []errors.Diagnostic
	Telemetry   *parser.ParseTelemetry // nil unless WithTelemetry
	DebugEvents []parser.DebugEvent    // nil unless WithDebugEvents
}

// Parse extracts the program structure from src. name is reduced to its
// base name for the document metadata. The only possible error is
// ErrNestingTooDeep; malformed COBOL never fails.
func Parse(name string, src []byte, opts ...Option) (*Result, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.FromEnv(logging.DebugEnv)
	}
	start := time.Now()

	raw := source.SplitLines(src)
	format := source.DetectFormat(raw)
	lines := source.Normalize(raw, format)
	cfg.logger.Debug("[COBOL] normalized",
		"file", name,
		"format", format,
		"lines", len(raw),
		"kept", len(lines))

	classified := divisions.Classify(lines)

	lexStart := time.Now()
	tokens := lexer.Tokenize(classified.Procedure, lexer.WithLogger(cfg.logger))
	lexTime := time.Since(lexStart)

	parsed, err := parser.Parse(tokens, cfg.parserOptions()...)
	if err != nil {
		return nil, err
	}

	program := document.NewProgram(baseName(name), format)
	program.Identification = classified.Identification
	program.Environment = classified.Environment
	program.Data = classified.Data
	program.Procedure = parsed.Procedure

	result := &Result{
		Program:     program,
		Diagnostics: append(classified.Diagnostics, parsed.Diagnostics...),
		Telemetry:   parsed.Telemetry,
		DebugEvents: parsed.DebugEvents,
	}
	if result.Telemetry != nil {
		result.Telemetry.LexTime = lexTime
		result.Telemetry.TotalTime = time.Since(start)
	}

	for _, d := range result.Diagnostics {
		cfg.logger.Debug("[COBOL] diagnostic", "diagnostic", d.String())
	}
	return result, nil
}

// ParseReader reads src fully and parses it.
func ParseReader(name string, src io.Reader, opts ...Option) (*Result, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.NewInputError("Failed to read "+baseName(name), err).
			WithContext("file", name)
	}
	return Parse(name, data, opts...)
}

// ParseFile reads and parses the file at path. A missing file is reported
// as ErrFileNotFound before any parsing happens.
func ParseFile(path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path, err)
		}
		return nil, errors.NewInputError("Failed to read "+path, err).
			WithContext("path", path)
	}
	return Parse(path, data, opts...)
}

func (c *config) parserOptions() []parser.ParserOpt {
	opts := []parser.ParserOpt{parser.WithLogger(c.logger)}
	if c.maxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(c.maxDepth))
	}
	if c.telemetry {
		opts = append(opts, parser.WithTelemetryTiming())
	}
	if c.debug {
		opts = append(opts, parser.WithDebugPaths())
	}
	return append(opts, c.parserOpts...)
}

// baseName strips directories from either slash style so uploads from any
// client report the same file name.
func baseName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			return name[i+1:]
		}
	}
	return name
}
