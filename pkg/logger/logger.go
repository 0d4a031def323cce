package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// SetupLogger 初始化日志配置
// level: "debug", "info", "warn", "error" (默认: "info")
// format: "json" 或 "console" (默认: "console")
// logDir: 日志目录，为空时只输出到控制台
func SetupLogger(level, format, logDir string) error {
	outputs := []string{"stdout"}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		// 每天一个日志文件
		outputs = append(outputs, filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"))
	}

	l, err := NewLogger(level, format, outputs...)
	if err != nil {
		return err
	}

	base = l.With(zap.String("service_name", "gbr-security-service"))
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		base = base.With(zap.String("hostname", hostname))
	}
	sugar = base.Sugar()
	return nil
}

// NewLogger 创建新的Logger实例
func NewLogger(level, format string, outputs ...string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// L 返回全局的结构化日志记录器
func L() *zap.Logger {
	return base
}

// Sync 刷新缓冲的日志
func Sync() {
	_ = base.Sync()
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}
