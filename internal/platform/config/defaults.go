package config

// Defaults returns the configuration used when no config file is present.
// Mock providers keep the server fully operational without vendor credentials.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
			Auth: AuthConfig{
				Enabled:     false,
				TokenExpiry: 24,
			},
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
			Websocket: "ws://127.0.0.1:8080",
		},
		Audio: AudioConfig{
			OutputDir:     "data/audio",
			SaveMergedWAV: true,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			Prefix:  "voicelab",
		},
		Database: DatabaseConfig{
			DSN: "data/voicelab.db",
		},
		Jobs: JobsConfig{
			Workers:      4,
			QueueSize:    64,
			MaxRetries:   2,
			MaxPerClient: 8,
		},
		TTS: map[string]TTSConfig{
			"mock": {
				Type:       "mock",
				Voice:      "narrator",
				Format:     "wav",
				SampleRate: 16000,
			},
			"edge": {
				Type:           "edge",
				Voice:          "zh-CN-XiaoxiaoNeural",
				Format:         "wav",
				RequestDelayMS: 200,
			},
			"openai": {
				Type:   "openai",
				Voice:  "alloy",
				Format: "wav",
			},
		},
		STT: map[string]STTConfig{
			"mock": {
				Type: "mock",
			},
			"openai": {
				Type:  "openai",
				Model: "whisper-1",
			},
		},
		Selected: SelectedConfig{
			TTS: "mock",
			STT: "mock",
		},
	}
}
