package server

import (
	"os"
	"strconv"

	"github.com/aledsdavies/cobolscope/core/logging"
)

// DefaultMaxUpload caps uploaded source files when COBOLSCOPE_MAX_UPLOAD is unset.
const DefaultMaxUpload int64 = 10 << 20

// Config holds the server settings
type Config struct {
	Port      string
	MaxUpload int64 // bytes
	Debug     bool
}

// Load reads the configuration from the environment
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	maxUpload := DefaultMaxUpload
	if raw := os.Getenv("COBOLSCOPE_MAX_UPLOAD"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			maxUpload = n
		}
	}

	return &Config{
		Port:      port,
		MaxUpload: maxUpload,
		Debug:     os.Getenv(logging.DebugEnv) != "",
	}
}
