package logging

import (
	"os"
	"strings"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/sirupsen/logrus"
)

type Fields map[string]interface{}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure applies LOG_LEVEL and LOG_FORMAT from the environment. Unknown
// values keep the defaults (info, json).
func Configure() {
	if strings.EqualFold(os.Getenv(constants.EnvLogFormat), "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv(constants.EnvLogLevel)); err == nil {
		logger.SetLevel(lvl)
	}
}

func entry(fields Fields) *logrus.Entry {
	return logger.WithFields(logrus.Fields(fields))
}

// Debug logs a debug message with optional fields.
func Debug(msg string, fields Fields) {
	entry(fields).Debug(msg)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	entry(fields).Info(msg)
}

// Warn logs a warning with optional fields.
func Warn(msg string, fields Fields) {
	entry(fields).Warn(msg)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	e := entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	e := entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Fatal(msg)
}
