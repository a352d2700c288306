package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures New. Empty fields take per-environment defaults:
// debug and colored text in development, info and JSON elsewhere.
type Options struct {
	Level       string
	Format      string // "json" or "text"
	Development bool
	Output      io.Writer
}

// New builds the process logger. An unknown level logs a warning and
// falls back to info.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "json"
		if opts.Development {
			format = "text"
		}
	}
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     opts.Development,
		})
	}

	level := strings.ToLower(strings.TrimSpace(opts.Level))
	switch {
	case level == "" && opts.Development:
		log.SetLevel(logrus.DebugLevel)
	case level == "":
		log.SetLevel(logrus.InfoLevel)
	default:
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			log.SetLevel(logrus.InfoLevel)
			log.WithField("invalid_level", opts.Level).Warn("Invalid LOG_LEVEL, using INFO")
			break
		}
		log.SetLevel(parsed)
	}

	return log
}

// NewDiscard returns a logger that drops everything. Used by tests.
func NewDiscard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func WithService(log *logrus.Logger, serviceName string) *logrus.Entry {
	return orStandard(log).WithField("service", serviceName)
}

// WithRunContext scopes log to one projection run.
func WithRunContext(log *logrus.Logger, runID string, targetSeason int) *logrus.Entry {
	return orStandard(log).WithFields(logrus.Fields{
		"run_id":        runID,
		"target_season": targetSeason,
	})
}

// WithSourceContext tags an upstream source, plus its season when known.
func WithSourceContext(log *logrus.Logger, source string, year int) *logrus.Entry {
	fields := logrus.Fields{"source": source}
	if year > 0 {
		fields["year"] = year
	}
	return orStandard(log).WithFields(fields)
}

func orStandard(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
