package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/hostinit/hostinit/internal/adapters/platform/aws"
	"github.com/hostinit/hostinit/internal/config"
	"github.com/hostinit/hostinit/internal/core/ports"
	"github.com/hostinit/hostinit/internal/errors"
	"github.com/hostinit/hostinit/internal/log"
	jsonreport "github.com/hostinit/hostinit/internal/reporting/json"
	"github.com/hostinit/hostinit/internal/reporting/text"
	"github.com/hostinit/hostinit/internal/resolver"
)

// Bootstrap assembles the application from viper-merged configuration:
// unmarshal over defaults, validate, then wire logger and reporter. The
// platform inspector is built lazily since most invocations never touch
// the live platform.
func Bootstrap(ctx context.Context, v *viper.Viper) (*Application, error) {
	cfg := config.DefaultConfig()
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (level: %s, format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(ctx, cfg); err != nil {
		var details strings.Builder
		details.WriteString("Configuration validation failed:")
		for _, fe := range err.(validator.ValidationErrors) {
			details.WriteString(fmt.Sprintf("\n - Field '%s': failed '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		wrapped := errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Check your configuration file or flags.")
		logger.Errorf(ctx, wrapped, "Configuration validation failed")
		return nil, wrapped
	}

	var reporter ports.Reporter
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText:
		textCfg := cfg.Settings.Reporter.Text
		if textCfg == nil {
			textCfg = config.DefaultConfig().Settings.Reporter.Text
		}
		reporter, err = text.NewReporter(*textCfg, logger.WithFields(map[string]any{"component": "reporter"}))
	case jsonreport.ReporterTypeJSON:
		var jsonCfg jsonreport.Config
		if cfg.Settings.Reporter.JSON != nil {
			jsonCfg = *cfg.Settings.Reporter.JSON
		}
		reporter, err = jsonreport.NewReporter(jsonCfg, logger.WithFields(map[string]any{"component": "reporter"}))
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize reporter")
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Reporter: reporter,
	}, nil
}

// inspector builds the AWS inspector on first use and memoizes it.
func (a *Application) inspector(ctx context.Context) (ports.PlatformInspector, error) {
	if a.platformInspector != nil {
		return a.platformInspector, nil
	}
	inspector, err := aws.NewInspector(ctx, a.Config.Platform.Region, a.Config.Platform.APIRateLimit,
		a.Logger.WithFields(map[string]any{"component": "inspector"}))
	if err != nil {
		return nil, err
	}
	a.platformInspector = inspector
	return inspector, nil
}

// newResolver wires the resolver, attaching the platform inspector only
// when live checks are enabled.
func (a *Application) newResolver(ctx context.Context) (*resolver.Resolver, error) {
	opts := []resolver.Option{}
	if a.Config.Settings.PlatformChecks {
		inspector, err := a.inspector(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, resolver.WithPlatformInspector(inspector))
	}
	return resolver.New(a.Logger.WithFields(map[string]any{"component": "resolver"}), opts...), nil
}
