package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. Format is "json" or "text".
func New(level string, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logrus.ParseLevel: %v", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return log, nil
}

// GinWriter routes gin's access log lines through log.
func GinWriter(log logrus.FieldLogger) io.Writer {
	return &ginLogWriter{entry: log.WithField("source", "gin")}
}

type ginLogWriter struct {
	entry *logrus.Entry
}

func (w *ginLogWriter) Write(p []byte) (int, error) {
	w.entry.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
