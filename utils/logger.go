package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

var (
	errorLevels = []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
	infoLevels  = []logrus.Level{logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}
)

// Logger provides structured, leveled logging throughout the application.
// Errors go to stderr, everything else to stdout.
type Logger struct {
	entry *logrus.Logger
}

// NewLogger creates a new Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a Logger with the given level name. Unknown
// levels fall back to info.
func NewLoggerWithLevel(level string) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	logger := &Logger{entry: l}
	logger.SetOutputs(os.Stdout, os.Stderr)
	return logger
}

// SetOutputs redirects info-level and error-level output.
func (l *Logger) SetOutputs(out, errOut io.Writer) {
	// the hooks do all the writing
	l.entry.SetOutput(io.Discard)
	l.entry.ReplaceHooks(make(logrus.LevelHooks))
	l.entry.AddHook(&writer.Hook{Writer: out, LogLevels: infoLevels})
	l.entry.AddHook(&writer.Hook{Writer: errOut, LogLevels: errorLevels})
}

// SetOutput sends every level to w, mostly useful in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.SetOutputs(w, w)
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
