// Package log configures the process-wide logrus logger.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/config"
)

// Setup applies cfg to the standard logrus logger. Entries go to cfg.File
// when set and to fallback otherwise; the terminal UI passes io.Discard so
// log lines never tear through the screen. The returned func closes the
// log file.
func Setup(cfg config.LogConfig, fallback io.Writer) (func() error, error) {
	closer := func() error { return nil }

	out := fallback
	if out == nil {
		out = os.Stderr
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return closer, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return closer, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f.Close
	}
	logrus.SetOutput(out)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return closer, nil
}

// Component returns the standard logger tagged with a component name.
func Component(name string) logrus.FieldLogger {
	return logrus.WithField("component", name)
}
