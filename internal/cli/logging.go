package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// newFileLogger builds a production logger writing to .courtsim/courtsim.log
// under basePath. The play command logs to a file because the TUI owns the
// terminal.
func newFileLogger(basePath string) (*zap.Logger, error) {
	dir := filepath.Join(basePath, ".courtsim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	cfg := zap.NewProductionConfig()
	logPath := filepath.Join(dir, "courtsim.log")
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	return cfg.Build()
}

// newConsoleLogger builds a development logger on stderr for the server.
func newConsoleLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
