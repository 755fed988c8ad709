package logger

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv 日志级别环境变量
const LevelEnv = "TWOFA_LOGGER_LEVEL"

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(newLogger(ParseLevel(os.Getenv(LevelEnv))))
}

func newLogger(level zapcore.Level) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	l, err := config.Build(
		zap.AddStacktrace(zap.ErrorLevel),
		zap.AddCallerSkip(1),
	)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// ParseLevel 解析日志级别，未知值默认 warn
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warning", "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "dpanic":
		return zap.DPanicLevel
	case "panic":
		return zap.PanicLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.WarnLevel
	}
}

// L 返回当前全局 logger
func L() *zap.Logger {
	return current.Load()
}

// SetLogger 替换全局 logger，返回旧的 logger 以便恢复
func SetLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return current.Swap(l)
}

// SetLevel 按级别重建全局 logger
func SetLevel(level zapcore.Level) {
	current.Store(newLogger(level))
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	L().Fatal(msg, fields...)
}

func Sync() {
	err := L().Sync()
	if err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
		L().Error("zLog Sync", zap.Error(err))
	}
}
