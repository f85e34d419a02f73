package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 根据运行环境创建 zap logger
// development 使用彩色控制台输出，其余环境使用 JSON 输出
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config

	if env == "" || env == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	return cfg.Build()
}

// MustNew 创建 logger 并替换全局 logger，失败直接 panic
func MustNew(env, level string) *zap.Logger {
	l, err := New(env, level)
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	return l
}

// OrNop 返回非空 logger，测试中常传入 nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
