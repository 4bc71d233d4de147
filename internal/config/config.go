package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	MonitorIndex int `mapstructure:"monitor_index"`
	RenderWidth  int `mapstructure:"render_width"`
	RenderHeight int `mapstructure:"render_height"`
	OutputWidth  int `mapstructure:"output_width"`
	OutputHeight int `mapstructure:"output_height"`
	TargetFPS    int `mapstructure:"target_fps"`

	ExitHotkey         string `mapstructure:"exit_hotkey"`
	HideShell          bool   `mapstructure:"hide_shell"`
	ExcludeFromCapture bool   `mapstructure:"exclude_from_capture"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	MetricsIntervalSeconds int `mapstructure:"metrics_interval_seconds"`
}

func Default() *Config {
	return &Config{
		MonitorIndex:           0,
		RenderWidth:            1440,
		RenderHeight:           1080,
		OutputWidth:            1920,
		OutputHeight:           1080,
		TargetFPS:              60,
		ExitHotkey:             "insert",
		HideShell:              true,
		ExcludeFromCapture:     true,
		LogLevel:               "info",
		LogFormat:              "text",
		MetricsIntervalSeconds: 30,
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("glasspane")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GLASSPANE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("monitor_index", cfg.MonitorIndex)
	viper.Set("render_width", cfg.RenderWidth)
	viper.Set("render_height", cfg.RenderHeight)
	viper.Set("output_width", cfg.OutputWidth)
	viper.Set("output_height", cfg.OutputHeight)
	viper.Set("target_fps", cfg.TargetFPS)
	viper.Set("exit_hotkey", cfg.ExitHotkey)
	viper.Set("hide_shell", cfg.HideShell)
	viper.Set("exclude_from_capture", cfg.ExcludeFromCapture)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)
	viper.Set("log_file", cfg.LogFile)
	viper.Set("metrics_interval_seconds", cfg.MetricsIntervalSeconds)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "glasspane.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	return viper.WriteConfigAs(cfgPath)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Glasspane")
	case "darwin":
		return "/Library/Application Support/Glasspane"
	default:
		return "/etc/glasspane"
	}
}
