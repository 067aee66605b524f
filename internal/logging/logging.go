// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and destination of a logger.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: "stderr"}
}

// NewLoggerConfig returns the zap configuration for cfg. Stack traces are
// disabled and console levels are colored.
func NewLoggerConfig(cfg Config) (zap.Config, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return zap.Config{}, errors.Wrapf(err, "logging: level %q", cfg.Level)
	}

	encoding := strings.ToLower(cfg.Format)
	encodeLevel := zapcore.CapitalColorLevelEncoder
	switch encoding {
	case "", "console":
		encoding = "console"
	case "json":
		encodeLevel = zapcore.LowercaseLevelEncoder
	default:
		return zap.Config{}, errors.Errorf("logging: unknown format %q", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}

	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}

// New builds a named logger from cfg.
func New(name string, cfg Config) (*zap.Logger, error) {
	zcfg, err := NewLoggerConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "logging")
	}
	return logger.Named(name), nil
}
