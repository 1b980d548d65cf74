package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var TRACE int = 4
var DEBUG int = 3
var INFO int = 2
var WARN int = 1
var ERROR int = 0

var logLevel int = INFO

var logger = newLogger()

// Fields is an alias so callers don't need to import logrus directly.
type Fields = logrus.Fields

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(toLogrus(logLevel))
	return l
}

func toLogrus(level int) logrus.Level {
	switch {
	case level >= TRACE:
		return logrus.TraceLevel
	case level == DEBUG:
		return logrus.DebugLevel
	case level == INFO:
		return logrus.InfoLevel
	case level == WARN:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func SetLevel(level int) {
	logLevel = level
	logger.SetLevel(toLogrus(level))
}

func Level() int {
	return logLevel
}

// ParseLevel accepts the level names used on the command line.
func ParseLevel(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return TRACE, nil
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger exposes the underlying logrus logger.
func Logger() *logrus.Logger {
	return logger
}

func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func slog(level int, msg string, args ...interface{}) {
	if logLevel >= level {
		logger.Logf(toLogrus(level), msg, args...)
	}
}

func log(level int, msg string) {
	if logLevel >= level {
		logger.Log(toLogrus(level), msg)
	}
}

func Strace(msg string, args ...interface{}) {
	slog(TRACE, msg, args...)
}
func Sdebug(msg string, args ...interface{}) {
	slog(DEBUG, msg, args...)
}
func Sinfo(msg string, args ...interface{}) {
	slog(INFO, msg, args...)
}
func Swarn(msg string, args ...interface{}) {
	slog(WARN, msg, args...)
}
func Serror(msg string, args ...interface{}) {
	slog(ERROR, msg, args...)
}

func Trace(msg string) {
	log(TRACE, msg)
}
func Debug(msg string) {
	log(DEBUG, msg)
}
func Info(msg string) {
	log(INFO, msg)
}
func Warn(msg string) {
	log(WARN, msg)
}
func Error(msg string) {
	log(ERROR, msg)
}
