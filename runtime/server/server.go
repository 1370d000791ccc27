// Package server exposes the parser over HTTP for the browser visualizer.
package server

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/runtime/cobol"
)

// DiagnosticsHeader carries the number of non-fatal diagnostics of a parse.
const DiagnosticsHeader = "X-Cobolscope-Diagnostics"

//go:embed static/index.html
var indexHTML []byte

// New builds the router. opts are applied to every parse. It leaves gin's
// process-wide mode alone; see SetMode.
func New(cfg *Config, logger *slog.Logger, opts ...cobol.Option) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUpload
	r.Use(gin.Recovery(), requestLogger(logger), cors())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.POST("/parse", parseUpload(cfg, logger, opts))
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})
	return r
}

// SetMode switches gin to release mode unless cfg.Debug is set. It changes
// process-wide state, so call it once at startup before building routers.
func SetMode(cfg *Config) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...cobol.Option) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           New(cfg, logger, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("Server running", "port", cfg.Port, "max_upload", cfg.MaxUpload)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// cors allows any origin and answers preflight requests directly
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		if c.Request.Method == http.MethodOptions {
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

// parseUpload parses the multipart "file" field and answers with the JSON
// document. Failures are reported as plain text.
func parseUpload(cfg *Config, logger *slog.Logger, opts []cobol.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != "multipart/form-data" {
			c.String(http.StatusBadRequest, "Invalid Content-Type")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxUpload)

		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case stderrors.As(err, &tooLarge):
				c.String(http.StatusRequestEntityTooLarge, "Upload exceeds %d bytes", cfg.MaxUpload)
			case stderrors.Is(err, http.ErrMissingFile):
				c.String(http.StatusBadRequest, "No file provided")
			default:
				c.String(http.StatusInternalServerError, "Server Error: %v", err)
			}
			return
		}

		file, err := header.Open()
		if err != nil {
			c.String(http.StatusInternalServerError, "Server Error: %v", err)
			return
		}
		defer func() { _ = file.Close() }()

		result, err := cobol.ParseReader(header.Filename, file, append([]cobol.Option{cobol.WithLogger(logger)}, opts...)...)
		if err != nil {
			logger.Warn("parse failed", "file", header.Filename, "error", err)
			c.String(http.StatusInternalServerError, "Parser execution failed: %v", err)
			return
		}

		data, err := document.EncodeJSON(result.Program)
		if err != nil {
			c.String(http.StatusInternalServerError, "Server Error: %v", err)
			return
		}

		c.Header("ETag", strconv.Quote(document.DigestString(data)))
		c.Header(DiagnosticsHeader, strconv.Itoa(len(result.Diagnostics)))
		c.Data(http.StatusOK, "application/json", data)
	}
}
