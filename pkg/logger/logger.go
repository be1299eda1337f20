package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Leveled logger shared by the API service and the seeder.
// Output is text in development and JSON everywhere else (see Init).

var std = newStd(os.Stdout)

func newStd(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		std.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		std.SetLevel(logrus.WarnLevel)
	case "error":
		std.SetLevel(logrus.ErrorLevel)
	case "fatal":
		std.SetLevel(logrus.FatalLevel)
	default:
		std.SetLevel(logrus.InfoLevel)
	}
}

// SetEnvironment picks the formatter: human-readable for "development", JSON otherwise.
func SetEnvironment(env string) {
	if strings.EqualFold(env, "development") || env == "" {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	std.SetFormatter(&logrus.JSONFormatter{})
}

// SetOutput redirects log output; used by tests.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// WithFields returns an entry carrying structured fields.
func WithFields(f map[string]interface{}) *logrus.Entry {
	return std.WithFields(logrus.Fields(f))
}

func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { std.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { std.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }

// Fatalf logs and exits the process with status 1.
func Fatalf(format string, v ...interface{}) { std.Fatalf(format, v...) }

func Info(v string)  { std.Info(v) }
func Warn(v string)  { std.Warn(v) }
func Error(v string) { std.Error(v) }

// LevelString returns the current level as text.
func LevelString() string {
	switch std.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "debug"
	case logrus.WarnLevel:
		return "warn"
	case logrus.ErrorLevel:
		return "error"
	case logrus.FatalLevel, logrus.PanicLevel:
		return "fatal"
	}
	return "info"
}
