package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/contextiq/contextiq-cli/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIURL  string `mapstructure:"api_url" yaml:"api_url"`
	AuthURL string `mapstructure:"auth_url" yaml:"auth_url"`
	// StateDir holds the persisted session and the log file.
	StateDir         string `mapstructure:"state_dir" yaml:"state_dir"`
	HTTPTimeoutSec   int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	LogFile          string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
	SearchDebounceMs int    `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.contextiq/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is read into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CONTEXTIQ")
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:8000/api/v1/contextiq")
	v.SetDefault("auth_url", "http://localhost:8000/api/v1/auth")
	v.SetDefault("state_dir", "")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("search_debounce_ms", 300)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StateDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.StateDir = dir
	}
	dir, err := utils.ExpandHome(c.StateDir)
	if err != nil {
		return nil, err
	}
	c.StateDir = dir
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.StateDir, "contextiq.log")
	}
	return &c, nil
}

// Path is the file Save writes to: cfgFile when set, otherwise
// ~/.contextiq/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".contextiq"), nil
}
