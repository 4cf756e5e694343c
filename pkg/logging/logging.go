// Package logging constructs per-component loggers. Each component receives
// its logger at construction time; nothing here mutates process-wide state.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger entry tagged with the component name. Verbose mode
// lowers the level to debug.
func New(component string, verbose bool) *logrus.Entry {
	return NewWithOutput(component, verbose, os.Stderr)
}

// NewWithOutput is New with an explicit sink, used by tests to capture output.
func NewWithOutput(component string, verbose bool, out io.Writer) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l.WithField("component", component)
}

// NewWithLevel parses a textual level from configuration, falling back to
// info on unknown values.
func NewWithLevel(component, level string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l.WithField("component", component)
}
