package adapters

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"linkjd/internal/logging/types"
)

// StdoutAdapter renders log entries to a console stream through logrus.
// Entries go to stderr by default so command output on stdout stays clean.
type StdoutAdapter struct {
	name string
	log  *logrus.Logger
	mu   sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // enable colored output
	Writer    io.Writer `yaml:"-"`
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Writer
	if out == nil {
		out = os.Stderr
	}

	return &StdoutAdapter{
		name: name,
		log:  newLogrus(out, config.Format, config.Colorized),
	}
}

// Write writes a log entry to the console stream
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return writeEntry(a.log, entry)
}

// Close closes the adapter (no-op for console streams)
func (a *StdoutAdapter) Close() error {
	return nil
}

// Name returns the name of the adapter
func (a *StdoutAdapter) Name() string {
	return a.name
}

// newLogrus builds a logrus logger that never filters; level filtering
// happens in the MultiLogger.
func newLogrus(out io.Writer, format string, colorized bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.TraceLevel)

	switch strings.ToLower(format) {
	case "text", "console":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			ForceColors:     colorized,
			DisableColors:   !colorized,
		})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "message",
			},
		})
	}
	return l
}

func toLogrusLevel(level types.LogLevel) logrus.Level {
	switch level {
	case types.DebugLevel:
		return logrus.DebugLevel
	case types.WarnLevel:
		return logrus.WarnLevel
	case types.ErrorLevel:
		return logrus.ErrorLevel
	case types.FatalLevel:
		// Log at fatal level does not exit; MultiLogger.Fatal handles that.
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func writeEntry(l *logrus.Logger, entry *types.LogEntry) error {
	if entry == nil {
		return fmt.Errorf("nil log entry")
	}
	e := l.WithTime(entry.Timestamp)
	if len(entry.Fields) > 0 {
		e = e.WithFields(logrus.Fields(entry.Fields))
	}
	if entry.Context != nil {
		e = e.WithContext(entry.Context)
	}
	e.Log(toLogrusLevel(entry.Level), entry.Message)
	return nil
}
