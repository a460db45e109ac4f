package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Processing controls one pipeline run. It is immutable for the duration
// of the run; the remover and the compositor read it, nothing writes it.
type Processing struct {
	RemoveBackground    bool    `mapstructure:"remove_background" json:"remove_background"`
	BackgroundTolerance float64 `mapstructure:"background_tolerance" json:"background_tolerance"`
	Homogenize          bool    `mapstructure:"homogenize" json:"homogenize"`
	TargetSize          int     `mapstructure:"target_size" json:"target_size"`
	PaddingPercent      float64 `mapstructure:"padding_percent" json:"padding_percent"`
}

// DefaultProcessing returns the settings the UI starts from.
func DefaultProcessing() Processing {
	return Processing{
		RemoveBackground:    true,
		BackgroundTolerance: 10,
		Homogenize:          true,
		TargetSize:          512,
		PaddingPercent:      10,
	}
}

// Validate rejects settings outside the documented ranges.
func (p Processing) Validate() error {
	if p.BackgroundTolerance < 0 || p.BackgroundTolerance > 100 {
		return fmt.Errorf("config: background_tolerance %.1f outside [0,100]", p.BackgroundTolerance)
	}
	if p.TargetSize <= 0 {
		return fmt.Errorf("config: target_size %d must be positive", p.TargetSize)
	}
	if p.PaddingPercent < 0 || p.PaddingPercent >= 100 {
		return fmt.Errorf("config: padding_percent %.1f outside [0,100)", p.PaddingPercent)
	}
	return nil
}

// Config holds the service configuration.
type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Upload   UploadConfig `mapstructure:"upload"`
	Naming   NamingConfig `mapstructure:"naming"`
	Defaults Processing   `mapstructure:"defaults"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type NamingConfig struct {
	// Endpoint of the external identify service. Empty disables naming;
	// sprites then keep their item_<index> default.
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads a YAML config file. Fields missing from the file keep the
// defaults below.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// New loads config.yaml from the working directory. A missing file
// falls back to the built-in defaults; a file that exists but cannot be
// parsed is an operator error and is surfaced, not masked.
func New() (*Config, error) {
	return loadOrDefault("config.yaml")
}

func loadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("upload.max_size", 20*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/png", "image/jpeg", "image/jpg", "image/x-targa", "image/x-tga"})

	v.SetDefault("naming.endpoint", "")
	v.SetDefault("naming.timeout", 60*time.Second)

	def := DefaultProcessing()
	v.SetDefault("defaults.remove_background", def.RemoveBackground)
	v.SetDefault("defaults.background_tolerance", def.BackgroundTolerance)
	v.SetDefault("defaults.homogenize", def.Homogenize)
	v.SetDefault("defaults.target_size", def.TargetSize)
	v.SetDefault("defaults.padding_percent", def.PaddingPercent)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			MaxSize:      20 * 1024 * 1024,
			AllowedTypes: []string{"image/png", "image/jpeg", "image/jpg", "image/x-targa", "image/x-tga"},
		},
		Naming: NamingConfig{
			Endpoint: "",
			Timeout:  60 * time.Second,
		},
		Defaults: DefaultProcessing(),
	}
}
