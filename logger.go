package zenobjects

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger receives structured debug output. Provide an implementation via
// WithLogger, or use WithSimpleLogger for a console logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger writes leveled key/value output to standard output.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger returns a console logger suitable for development.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		logger: log.New(os.Stdout, "zenobjects ", log.LstdFlags|log.Lmicroseconds),
	}
}

func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.print("DEBUG", msg, keysAndValues...)
}

func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	l.print("INFO", msg, keysAndValues...)
}

func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.print("WARN", msg, keysAndValues...)
}

func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.print("ERROR", msg, keysAndValues...)
}

func (l *SimpleLogger) print(level, msg string, keysAndValues ...interface{}) {
	var builder strings.Builder
	builder.WriteString("[" + level + "] ")
	builder.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		builder.WriteString(fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	l.logger.Println(builder.String())
}

// DebugConfig controls which events are logged when debugging is enabled.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogCache     bool
	LogMutations bool
	RequestIDGen func() string
}

// DefaultDebugConfig enables all event classes with UUID request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogCache:     true,
		LogMutations: true,
		RequestIDGen: uuid.NewString,
	}
}
