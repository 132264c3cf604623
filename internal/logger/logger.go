package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls how the process-wide logger is built.
type Options struct {
	Service string
	Env     string
	Level   string
}

// New returns a logrus logger writing to stdout. Outside dev the output is JSON.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(opts.Level))
	if strings.EqualFold(opts.Env, "dev") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// Discard returns a logger that drops everything; used by tests and as the
// fallback when a nil logger is handed to a constructor.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns l unless it is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

func parseLevel(lvl string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(lvl))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
