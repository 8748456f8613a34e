// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Byte-Craftsman-Alpha/Paranox/config"
)

// New builds the logger for one process. Every line carries the service
// name, environment and version so access-denial and access-log-failure
// lines can be traced back to a deployment.
func New(cfg config.LogConfig, app config.AppConfig) (*zap.Logger, error) {
	zapCfg, err := buildConfig(cfg, app)
	if err != nil {
		return nil, err
	}
	log, err := zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

func buildConfig(cfg config.LogConfig, app config.AppConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	// Denials are the audit trail of the access rules; none may be dropped.
	zapCfg.Sampling = nil
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.OutputPath != "" {
		zapCfg.OutputPaths = []string{cfg.OutputPath}
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	fields := map[string]any{}
	if app.Name != "" {
		fields["service"] = app.Name
	}
	if app.Environment != "" {
		fields["env"] = app.Environment
	}
	if app.Version != "" {
		fields["version"] = app.Version
	}
	if len(fields) > 0 {
		zapCfg.InitialFields = fields
	}
	return zapCfg, nil
}
