package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type LogLevel log.Level

const (
	DebugLevel = LogLevel(log.DebugLevel)
	InfoLevel  = LogLevel(log.InfoLevel)
	WarnLevel  = LogLevel(log.WarnLevel)
	ErrorLevel = LogLevel(log.ErrorLevel)
	FatalLevel = LogLevel(log.FatalLevel)
)

func (l LogLevel) String() string {
	return log.Level(l).String()
}

// ParseLogLevel accepts the names used in the application config ("debug", "info", ...).
func ParseLogLevel(s string) (LogLevel, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel, fmt.Errorf("log level %q: %w", s, ErrInvalidParameter)
	}
	return LogLevel(lvl), nil
}

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "cardforge 💳 ",
			CallerOffset:    1,
		})
		l.SetLevel(log.InfoLevel)
		singleton = &logger{l}
	})
	return singleton
}

func SetLogLevel(level LogLevel) {
	getLogger().SetLevel(log.Level(level))
}

func GetLogLevel() LogLevel {
	return LogLevel(getLogger().GetLevel())
}

// SetLogOutput redirects every log line to w.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// The Log helpers take a message followed by alternating keys and values.
func LogDebug(msg string, args ...interface{}) {
	getLogger().Debug(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Info(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warn(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Error(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatal(msg, args...)
}
