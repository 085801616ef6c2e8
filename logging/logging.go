// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus.Logger writing to stdout. Local and dev
// environments log at debug level.
func New(env string) *logrus.Logger {
	return NewWithOutput(env, os.Stdout)
}

func NewWithOutput(env string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(parseLevel(env))
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	return log
}

// Component tags every line from a subsystem ("api", "refresher", "store").
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func parseLevel(env string) logrus.Level {
	switch strings.ToLower(env) {
	case "local", "dev":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
