// Package debug configures the compiler's structured logging. It keeps
// the traditional level names (OFF, ERROR, WARN, INFO, VERBOSE, TRACE)
// as a thin layer over logrus, which does the actual work.
package debug

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a verbosity level of the compiler's own tracing.
type Level int

const (
	Off Level = iota
	Error
	Warn
	Info
	Verbose
	Trace
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Off:
		return "OFF"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Info:
		return "INFO"
	case Verbose:
		return "VERBOSE"
	case Trace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to a Level; unknown
// names map to Info.
func ParseLevel(name string) Level {
	switch strings.ToUpper(name) {
	case "OFF":
		return Off
	case "ERROR":
		return Error
	case "WARN", "WARNING":
		return Warn
	case "INFO":
		return Info
	case "VERBOSE", "DEBUG":
		return Verbose
	case "TRACE":
		return Trace
	default:
		return Info
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Off, Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	case Info:
		return logrus.InfoLevel
	case Verbose:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// NewLogger builds a logger at the given level writing to out.
func NewLogger(level Level, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level.logrusLevel())
	if level == Off {
		log.SetOutput(io.Discard)
	}
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	return log
}
