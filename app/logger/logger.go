// Package logger builds the structured logrus logger shared by the server and CLI.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to stdout at the given level.
// An unparsable level falls back to info.
func New(serviceName, level string) *logrus.Logger {
	return NewWithOutput(serviceName, level, os.Stdout)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(serviceName, level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.AddHook(serviceHook{service: serviceName})

	return log
}

// WithRequestID returns an entry carrying request_id when one is known.
func WithRequestID(log logrus.FieldLogger, requestID string) *logrus.Entry {
	if requestID == "" {
		return log.WithFields(logrus.Fields{})
	}
	return log.WithField("request_id", requestID)
}

// serviceHook stamps the service name on every entry.
type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = h.service
	}
	return nil
}
