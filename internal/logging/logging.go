// Package logging wires the standard logger to stdout and an optional
// rotating log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"marquee/config"
)

// Setup points the standard logger at stdout and, when configured, a
// rotating file. The returned closer flushes the file; it is never nil.
func Setup(cfg config.LoggingSettings) io.Closer {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(os.Stdout)
		log.Printf("[logging] cannot create log dir for %s, logging to stdout only: %v", path, err)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.Printf("[logging] writing logs to %s (maxSize=%dMB backups=%d)", path, cfg.MaxSizeMB, cfg.MaxBackups)
	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
