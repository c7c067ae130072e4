package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Verbose enables debug output when true
var Verbose bool

// Log is the process-wide logger. It writes to stderr until Configure
// redirects it.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose toggles debug logging.
func SetVerbose(v bool) {
	Verbose = v
	if v {
		Log.SetLevel(logrus.DebugLevel)
	}
}

// Debugf prints debug messages when Verbose is true
func Debugf(format string, args ...any) {
	if Verbose || Log.IsLevelEnabled(logrus.DebugLevel) {
		Log.Debugf(format, args...)
	}
}

// Configure applies the logging section of a config file. The returned
// closer releases the log file, if one was opened.
func Configure(f *File) (io.Closer, error) {
	level, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		return nil, err
	}
	Log.SetLevel(level)
	if Verbose {
		Log.SetLevel(logrus.DebugLevel)
	}
	if f.LogFile == "" {
		return io.NopCloser(nil), nil
	}
	out, err := os.OpenFile(f.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	Log.SetOutput(out)
	return out, nil
}

// Discard silences the logger, used while the TUI owns the terminal and no
// log file was configured.
func Discard() {
	Log.SetOutput(io.Discard)
}
