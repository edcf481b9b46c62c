package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"transfer-service/pkg/config"
)

// Logger 日志服务，封装logrus
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewLogger 根据配置创建日志服务
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	svc := &Logger{entry: l}
	if cfg != nil && cfg.Log.Output == "file" && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				l.SetOutput(io.MultiWriter(os.Stdout, f))
				svc.file = f
				return svc
			}
		}
		l.Warnf("failed to open log file %s, falling back to stdout", cfg.Log.Filename)
	}
	l.SetOutput(os.Stdout)
	return svc
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close 关闭日志文件句柄
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func instance() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Debug 带字段的Debug日志
func Debug(msg string, fields map[string]interface{}) {
	instance().WithFields(fields).Debug(msg)
}

// Info 带字段的Info日志
func Info(msg string, fields ...map[string]interface{}) {
	if len(fields) > 0 {
		instance().WithFields(fields[0]).Info(msg)
		return
	}
	instance().Info(msg)
}

// Warn 带字段的Warn日志
func Warn(msg string, fields ...map[string]interface{}) {
	if len(fields) > 0 {
		instance().WithFields(fields[0]).Warn(msg)
		return
	}
	instance().Warn(msg)
}

// Error 带字段的Error日志
func Error(msg string, fields ...map[string]interface{}) {
	if len(fields) > 0 {
		instance().WithFields(fields[0]).Error(msg)
		return
	}
	instance().Error(msg)
}

func Debugf(format string, args ...interface{}) { instance().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { instance().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { instance().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { instance().Errorf(format, args...) }

// Fatal 记录错误并退出进程
func Fatal(msg string) {
	instance().Fatal(msg)
}
