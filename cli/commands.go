package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/formatter"
	"github.com/aledsdavies/cobolscope/runtime/cobol"
	"github.com/aledsdavies/cobolscope/runtime/parser"
	"github.com/aledsdavies/cobolscope/runtime/server"
)

// watchDebounce coalesces the burst of events editors emit for one save
const watchDebounce = 100 * time.Millisecond

func (a *app) serveCommand() *cobra.Command {
	cfg := server.Load()
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser and visualizer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Debug = cfg.Debug || a.debug
			logger := a.logger(slog.LevelInfo)
			server.SetMode(cfg)
			return server.Run(cmd.Context(), cfg, logger, cobol.WithMaxDepth(maxDepth))
		},
	}

	cmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on (env PORT)")
	cmd.Flags().Int64Var(&cfg.MaxUpload, "max-upload", cfg.MaxUpload, "Largest accepted upload in bytes (env COBOLSCOPE_MAX_UPLOAD)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum IF/EVALUATE/PERFORM nesting depth")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Rewrite the document whenever the source file changes",
		Args:  exactlyOneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := a.runParse(path, opts); err != nil {
				return err
			}
			return a.watch(cmd.Context(), path, func() error {
				err := a.runParse(path, opts)
				if err != nil {
					FormatError(a.stderr, err, a.useColor())
				}
				return err
			})
		},
	}

	opts.register(cmd)
	return cmd
}

// watch calls rebuild after every change to path until ctx is done. The
// parent directory is watched so editors that replace the file on save are
// still followed. rebuild errors are reported by rebuild and do not stop
// the loop.
func (a *app) watch(ctx context.Context, path string, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	logger := a.logger(slog.LevelDebug)
	_, _ = fmt.Fprintf(a.stderr, "%s %s (Ctrl+C to stop)\n", Colorize("Watching", ColorCyan, a.useColor()), target)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			logger.Debug("[WATCH] event", "op", event.Op.String(), "file", event.Name)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug("[WATCH] error", "error", err)

		case <-pending:
			pending = nil
			_ = rebuild()
		}
	}
}

func (a *app) showCommand() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "show <file> [paragraph]",
		Short: "Print the statement tree of a program or one paragraph",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := cobol.ParseFile(args[0],
				cobol.WithLogger(a.logger(slog.LevelDebug)),
				cobol.WithMaxDepth(maxDepth))
			if err != nil {
				return err
			}

			useColor := ShouldUseColor(a.noColor, a.stdout)
			if len(args) == 1 {
				formatter.FormatProgram(a.stdout, result.Program, useColor)
				return nil
			}

			name, err := resolveParagraph(result.Program, args[1])
			if err != nil {
				return err
			}
			stmts, _ := result.Program.Paragraph(name)
			DisplayParagraph(a.stdout, name, stmts, useColor)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum IF/EVALUATE/PERFORM nesting depth")
	return cmd
}

// resolveParagraph finds name exactly, then ignoring case
func resolveParagraph(prog *document.Program, name string) (string, error) {
	if prog.Procedure.Has(name) {
		return name, nil
	}
	keys := prog.Procedure.Keys()
	for _, key := range keys {
		if strings.EqualFold(key, name) {
			return key, nil
		}
	}

	cliErr := &CLIError{
		Type:    "show",
		Message: fmt.Sprintf("paragraph %q not found in %s", name, prog.Metadata.File),
		Hint:    "Run 'cobolscope show " + prog.Metadata.File + "' to list every paragraph",
	}
	if suggestion := findClosestMatch(name, keys); suggestion != "" {
		cliErr.Hint = fmt.Sprintf("Did you mean %q?", suggestion)
	}
	return "", cliErr
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version
			if semver.IsValid(v) {
				v = semver.Canonical(v)
			}
			_, _ = fmt.Fprintf(a.stdout, "cobolscope %s (document envelope %s)\n", v, document.EnvelopeVersion)
			return nil
		},
	}
}
