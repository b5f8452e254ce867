package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads configuration from a yaml file with environment overrides.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader for the given config file path. An empty path
// falls back to the CONFIG_PATH environment variable, then "config.yaml".
func NewLoader(path string) *Loader {
	return &Loader{path: path, useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads the config file over the defaults, then applies env overrides.
// A missing file is not an error; the defaults carry a mock provider setup.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	path := l.path
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOICELAB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VOICELAB_AUTH_SECRET"); v != "" {
		cfg.Server.Auth.Secret = v
	}
	if v := os.Getenv("VOICELAB_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		for name, tts := range cfg.TTS {
			if tts.Type == "openai" && tts.APIKey == "" {
				tts.APIKey = v
				cfg.TTS[name] = tts
			}
		}
		for name, stt := range cfg.STT {
			if stt.Type == "openai" && stt.APIKey == "" {
				stt.APIKey = v
				cfg.STT[name] = stt
			}
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Server.Auth.Enabled && cfg.Server.Auth.Secret == "" {
		return fmt.Errorf("auth enabled but no secret configured")
	}
	if _, ok := cfg.TTS[cfg.Selected.TTS]; !ok && cfg.Selected.TTS != "" {
		return fmt.Errorf("selected TTS module %q has no configuration", cfg.Selected.TTS)
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 4
	}
	if cfg.Jobs.QueueSize <= 0 {
		cfg.Jobs.QueueSize = cfg.Jobs.Workers * 16
	}
	return nil
}
