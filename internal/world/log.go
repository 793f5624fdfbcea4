package world

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// DebugLevel controls process-wide logging verbosity.
type DebugLevel int32

const (
	DebugFatal DebugLevel = iota
	DebugError
	DebugWarn
	DebugInfo
	DebugDebug
	DebugVerbose
)

var (
	debugLevel atomic.Int32
	logLevel   slog.LevelVar
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))
)

func init() {
	debugLevel.Store(int32(DebugWarn))
	logLevel.Set(slog.LevelWarn)
}

// SetDebugLevel sets the process-wide verbosity.
func SetDebugLevel(l DebugLevel) {
	debugLevel.Store(int32(l))
	switch {
	case l >= DebugDebug:
		logLevel.Set(slog.LevelDebug)
	case l == DebugInfo:
		logLevel.Set(slog.LevelInfo)
	case l == DebugWarn:
		logLevel.Set(slog.LevelWarn)
	default:
		logLevel.Set(slog.LevelError)
	}
}

// GetDebugLevel returns the process-wide verbosity.
func GetDebugLevel() DebugLevel {
	return DebugLevel(debugLevel.Load())
}

// Log returns the package logger.
func Log() *slog.Logger { return logger }

var (
	homeOnce sync.Once
	homeDir  string
)

// HomeDirectory returns the per-user settings and cache directory,
// creating it on first use.
func HomeDirectory() string {
	homeOnce.Do(func() {
		base, err := os.UserHomeDir()
		if err != nil {
			base = os.TempDir()
		}
		homeDir = filepath.Join(base, ".simworld")
		if err := os.MkdirAll(homeDir, 0o755); err != nil {
			logger.Warn("cannot create home directory", "path", homeDir, "err", err)
		}
	})
	return homeDir
}
