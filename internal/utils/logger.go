package utils

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// 全局logrus实例，所有组件Logger共享
var (
	base     *logrus.Logger
	baseOnce sync.Once
)

func baseLogger() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
		base.SetLevel(logrus.InfoLevel)
		if os.Getenv("DEBUG") == "true" {
			base.SetLevel(logrus.DebugLevel)
		}
	})
	return base
}

// SetLogLevel 设置全局日志级别 (debug/info/warn/error)
func SetLogLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	baseLogger().SetLevel(parsed)
}

// Logger 带组件名的日志器
type Logger struct {
	entry *logrus.Entry
}

// NewLogger 创建指定组件的日志器
func NewLogger(name string) *Logger {
	return &Logger{
		entry: baseLogger().WithField("component", name),
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}
