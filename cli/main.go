package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/core/logging"
	"github.com/aledsdavies/cobolscope/runtime/cobol"
	"github.com/aledsdavies/cobolscope/runtime/parser"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "v0.0.0-dev"

// app carries the global flags and output streams shared by all commands
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	debug   bool
	noColor bool
}

// parseOptions are the flags shared by the root and watch commands
type parseOptions struct {
	output   string
	format   string
	stdout   bool
	validate bool
	maxDepth int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		FormatError(a.stderr, err, a.useColor())
		stop()
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	var opts parseOptions

	rootCmd := &cobra.Command{
		Use:   "cobolscope <file>",
		Short: "Extract the structure of a COBOL program as JSON",
		Long: "cobolscope reads a fixed or free format COBOL source file and writes its\n" +
			"identification, environment, data and procedure divisions as a JSON document.",
		Args:          exactlyOneFile,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(args[0], opts)
		},
	}

	opts.register(rootCmd)
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		a.serveCommand(),
		a.watchCommand(),
		a.showCommand(),
		a.versionCommand(),
	)
	return rootCmd
}

func (o *parseOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "output.json", "Path of the document to write")
	cmd.Flags().StringVar(&o.format, "format", "json", "Output format: json or cbor")
	cmd.Flags().BoolVar(&o.stdout, "stdout", false, "Write the document to stdout instead of a file")
	cmd.Flags().BoolVar(&o.validate, "validate", false, "Validate the document against its JSON schema before writing")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum IF/EVALUATE/PERFORM nesting depth")
}

func exactlyOneFile(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &CLIError{
			Type:    "usage",
			Message: "expected exactly one COBOL source file",
			Hint:    "Usage: " + cmd.UseLine(),
		}
	}
	return nil
}

// runParse parses path and writes the encoded document
func (a *app) runParse(path string, opts parseOptions) error {
	if opts.format != "json" && opts.format != "cbor" {
		return &CLIError{
			Type:    "usage",
			Message: "unsupported output format " + opts.format,
			Hint:    "Use --format json or --format cbor",
		}
	}

	result, err := cobol.ParseFile(path, a.pipelineOptions(opts)...)
	if err != nil {
		return err
	}

	if opts.validate {
		if err := document.ValidateProgram(result.Program); err != nil {
			return err
		}
	}

	data, err := encode(result.Program, opts.format)
	if err != nil {
		return err
	}

	useColor := a.useColor()
	DisplayDiagnostics(a.stderr, result.Diagnostics, useColor)

	if opts.stdout {
		if _, err := a.stdout.Write(data); err != nil {
			return errors.NewOutputError("Failed to write to stdout", err)
		}
		return nil
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.NewOutputError("Failed to write "+opts.output, err).
			WithContext("path", opts.output)
	}
	DisplaySummary(a.stderr, opts.output, result, data, useColor)
	return nil
}

func (a *app) pipelineOptions(opts parseOptions) []cobol.Option {
	return []cobol.Option{
		cobol.WithLogger(a.logger(slog.LevelDebug)),
		cobol.WithMaxDepth(opts.maxDepth),
	}
}

func encode(prog *document.Program, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if format == "cbor" {
		data, err = document.EncodeCBOR(prog)
	} else {
		data, err = document.EncodeJSONIndent(prog, 4)
	}
	if err != nil {
		return nil, errors.NewOutputError("Failed to encode document as "+format, err)
	}
	return data, nil
}

// logger returns a stderr logger at level when --debug is set, and the
// environment-controlled logger otherwise
func (a *app) logger(level slog.Level) *slog.Logger {
	if a.debug {
		return logging.New(a.stderr, slog.LevelDebug)
	}
	if level < slog.LevelInfo {
		return logging.FromEnv(logging.DebugEnv)
	}
	return logging.New(a.stderr, level)
}

func (a *app) useColor() bool {
	return ShouldUseColor(a.noColor, a.stderr)
}
