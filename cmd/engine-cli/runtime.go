// cmd/engine-cli/runtime.go
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"volunteer-engine/internal/bootstrap"
	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/policy"
)

// logger writes to stderr so stdout carries only the rendered result.
func (f *globalFlags) logger() logger.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		level.SetLevel(zapcore.WarnLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	return logger.NewZapAdapter(zap.New(core))
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if f.policyPath != "" {
		cfg.Engine.PolicyFile = f.policyPath
	}
	return cfg, nil
}

// policy resolves the effective policy without touching any database.
func (f *globalFlags) policy() (policy.Policy, error) {
	if f.policyPath != "" {
		return policy.LoadFile(f.policyPath)
	}
	if f.configPath != "" {
		cfg, err := f.loadConfig()
		if err != nil {
			return policy.Policy{}, err
		}
		return config.ResolvePolicy(cfg)
	}
	return policy.Default(), nil
}

func (f *globalFlags) openRuntime(ctx context.Context, migrate bool) (*bootstrap.Runtime, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	if migrate {
		cfg.Engine.MigrateOnStart = true
	}
	return bootstrap.Open(ctx, cfg, bootstrap.Options{ReadyAttempts: 3, ReadyDelay: time.Second}, f.logger())
}
