package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/natefinch/lumberjack"
	log "github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger from cfg. When a log file is
// configured, output is rotated by lumberjack; otherwise it goes to stderr.
func Setup(cfg types.LogConfig, debug bool) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: types.TimestampLayout,
	})
	log.SetOutput(Writer(cfg))
	return nil
}

// Writer returns the destination described by cfg
func Writer(cfg types.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}
