// Package config loads the application settings from config.yaml and the environment
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Export    ExportConfig    `mapstructure:"export"`
	Log       LogConfig       `mapstructure:"log"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type DocumentsConfig struct {
	RequestTemplate string `mapstructure:"request_template"`
	ActTemplate     string `mapstructure:"act_template"`
	OutputDir       string `mapstructure:"output_dir"`
}

type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	Schedule string `mapstructure:"schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultSearchPaths are the directories searched for config.yaml
var DefaultSearchPaths = []string{"./configs", "."}

// Load reads config.yaml from searchPaths (DefaultSearchPaths when empty); a missing
// file is not an error. Environment variables override file values.
func Load(searchPaths ...string) (*Config, error) {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "concrete.db")
	v.SetDefault("documents.request_template", "request_template.docx")
	v.SetDefault("documents.act_template", "act_template.docx")
	v.SetDefault("documents.output_dir", ".")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.schedule", "0 2 * * *")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")

	// RAILWAY_DB_PATH is the variable used by hosted deployments
	v.BindEnv("database.path", "BETON_DB_PATH", "RAILWAY_DB_PATH")

	v.BindEnv("documents.request_template", "BETON_REQUEST_TEMPLATE")
	v.BindEnv("documents.act_template", "BETON_ACT_TEMPLATE")
	v.BindEnv("documents.output_dir", "BETON_OUTPUT_DIR")

	v.BindEnv("export.dir", "BETON_EXPORT_DIR")
	v.BindEnv("export.schedule", "BETON_EXPORT_SCHEDULE")

	v.BindEnv("log.level", "BETON_LOG_LEVEL")
	v.BindEnv("log.format", "BETON_LOG_FORMAT")
}
