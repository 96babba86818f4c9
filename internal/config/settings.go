package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "POSTURE"
	DefaultConfigFile = "posture-watch.yml"
)

// Settings holds every tunable of the application.
type Settings struct {
	Camera  CameraSettings  `mapstructure:"camera"`
	Monitor MonitorSettings `mapstructure:"monitor"`
	Pose    PoseSettings    `mapstructure:"pose"`
	Notify  NotifySettings  `mapstructure:"notify"`
	Roster  RosterSettings  `mapstructure:"roster"`
	Log     LogSettings     `mapstructure:"log"`
	Journal JournalSettings `mapstructure:"journal"`
}

type CameraSettings struct {
	Index  int `mapstructure:"index" validate:"gte=0"`
	Width  int `mapstructure:"width" validate:"gt=0"`
	Height int `mapstructure:"height" validate:"gt=0"`
}

type MonitorSettings struct {
	Refresh time.Duration `mapstructure:"refresh" validate:"gte=0"`
	Warmup  bool          `mapstructure:"warmup"`
}

type PoseSettings struct {
	Model      string  `mapstructure:"model" validate:"required"`
	Input      int     `mapstructure:"input" validate:"gt=0"`
	Visibility float64 `mapstructure:"visibility" validate:"gte=0,lte=1"`
}

type NotifySettings struct {
	Title   string `mapstructure:"title" validate:"required"`
	Message string `mapstructure:"message" validate:"required"`
}

type RosterSettings struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogSettings struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max-age-days" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max-backups" validate:"gte=0"`
}

type JournalSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("camera.index", 0)
	v.SetDefault("camera.width", 2080)
	v.SetDefault("camera.height", 4020)
	v.SetDefault("monitor.refresh", 10*time.Millisecond)
	v.SetDefault("monitor.warmup", true)
	v.SetDefault("pose.model", "models/pose_landmark_full.onnx")
	v.SetDefault("pose.input", 256)
	v.SetDefault("pose.visibility", 0.5)
	v.SetDefault("notify.title", "Posture Corrector")
	v.SetDefault("notify.message", "!")
	v.SetDefault("roster.path", "data.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 100)
	v.SetDefault("log.max-age-days", 7)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "posture-watch.db")
}

// LoadSettings reads an optional .env file, then the settings file, then
// POSTURE_* environment overrides. A missing settings file is not an error
// unless configPath was given explicitly.
func LoadSettings(configPath string) (Settings, error) {
	var cfg Settings

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("%w: loading .env: %v", ErrConfig, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || os.IsNotExist(err)
		if explicit || !missing {
			return cfg, fmt.Errorf("%w: reading %s: %v", ErrConfig, configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: decoding settings: %v", ErrConfig, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("%w: invalid settings: %v", ErrConfig, err)
	}

	return cfg, nil
}
