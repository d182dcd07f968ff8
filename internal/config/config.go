package config

import (
	"time"

	jsonreport "github.com/hostinit/hostinit/internal/reporting/json"
	"github.com/hostinit/hostinit/internal/reporting/text"

	"github.com/hostinit/hostinit/internal/log"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	// Parameters carries the raw deployment parameters from flags, env,
	// and the config file. Resolution validates them; nothing here is
	// trusted yet.
	Parameters map[string]string `mapstructure:"parameters"`
	State      StateConfig       `mapstructure:"state"`
	Platform   PlatformConfig    `mapstructure:"platform"`
}

type SettingsConfig struct {
	LogLevel       log.Level       `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat      log.Format      `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	ReporterType   string          `mapstructure:"reporter" validate:"omitempty,oneof=text json"`
	StepTimeout    time.Duration   `mapstructure:"step_timeout"`
	PlatformChecks bool            `mapstructure:"platform_checks"`
	Reporter       ReporterConfigs `mapstructure:"reporter_config"`
}

type ReporterConfigs struct {
	Text *text.Config       `mapstructure:"text,omitempty"`
	JSON *jsonreport.Config `mapstructure:"json,omitempty"`
}

type StateConfig struct {
	// FilePath points at the provisioning engine's `show -json` output.
	FilePath string `mapstructure:"file_path"`
}

type PlatformConfig struct {
	Region       string `mapstructure:"region"`
	APIRateLimit int    `mapstructure:"api_rate_limit" validate:"omitempty,min=1,max=50"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			ReporterType: text.ReporterTypeText,
			StepTimeout:  5 * time.Minute,
			Reporter: ReporterConfigs{
				Text: &text.Config{NoColor: false},
			},
		},
		Parameters: map[string]string{},
		State: StateConfig{
			FilePath: "terraform.tfstate.json",
		},
		Platform: PlatformConfig{},
	}
}
