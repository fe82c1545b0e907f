package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

const (
	LevelDebug int32 = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger
	WarnLogger  *log.Logger

	level atomic.Int32
)

func init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	level.Store(LevelInfo)
}

// SetLevel accepts debug, info, warn or error. Unknown values fall back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Store(LevelDebug)
	case "warn", "warning":
		level.Store(LevelWarn)
	case "error":
		level.Store(LevelError)
	default:
		level.Store(LevelInfo)
	}
}

func enabled(l int32) bool {
	return l >= level.Load()
}

func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		_ = InfoLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Error(format string, v ...interface{}) {
	if enabled(LevelError) {
		_ = ErrorLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		_ = DebugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		_ = WarnLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

// LogSubscriptionError is used by the live synchronizers, which never surface subscription failures to callers.
func LogSubscriptionError(component, scope string, err error) {
	Warn("Subscription error: component=%s, scope=%s, error=%v", component, scope, err)
}
