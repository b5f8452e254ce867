package config

// Config is the root configuration for the voicelab server.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Log      LogConfig            `yaml:"log"`
	Web      WebConfig            `yaml:"web"`
	Audio    AudioConfig          `yaml:"audio"`
	Redis    RedisConfig          `yaml:"redis"`
	Database DatabaseConfig       `yaml:"database"`
	Jobs     JobsConfig           `yaml:"jobs"`
	TTS      map[string]TTSConfig `yaml:"TTS"`
	STT      map[string]STTConfig `yaml:"STT"`
	Selected SelectedConfig       `yaml:"selected_module"`
}

type ServerConfig struct {
	IP   string     `yaml:"ip"`
	Port int        `yaml:"port"`
	Auth AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Secret      string `yaml:"secret"`
	TokenExpiry int    `yaml:"token_expiry_hours"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
	Websocket string `yaml:"websocket"`
}

// AudioConfig controls merged-audio output handling.
type AudioConfig struct {
	OutputDir      string `yaml:"output_dir"`
	SaveMergedWAV  bool   `yaml:"save_merged_wav"`
	DeleteOnExpiry bool   `yaml:"delete_on_expiry"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JobsConfig sizes the background synthesis work pool.
type JobsConfig struct {
	Workers      int `yaml:"workers"`
	QueueSize    int `yaml:"queue_size"`
	MaxRetries   int `yaml:"max_retries"`
	MaxPerClient int `yaml:"max_per_client"`
}

type TTSConfig struct {
	Type           string                 `yaml:"type"`
	Voice          string                 `yaml:"voice"`
	Format         string                 `yaml:"format"`
	APIKey         string                 `yaml:"api_key,omitempty"`
	BaseURL        string                 `yaml:"url,omitempty"`
	SampleRate     int                    `yaml:"sample_rate,omitempty"`
	RequestDelayMS int                    `yaml:"request_delay_ms,omitempty"`
	Extra          map[string]interface{} `yaml:",inline"`
}

type STTConfig struct {
	Type    string `yaml:"type"`
	Model   string `yaml:"model,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"url,omitempty"`
}

type SelectedConfig struct {
	TTS string `yaml:"TTS"`
	STT string `yaml:"STT"`
}
