package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Worker       WorkerConfig       `yaml:"worker"`
	Transcript   TranscriptConfig   `yaml:"transcript"`
	Speech       SpeechConfig       `yaml:"speech"`
	RemoteConfig RemoteConfigConfig `yaml:"remote_config"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
	Defaults     DefaultsConfig     `yaml:"defaults"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig is optional; an empty Addr disables the task cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type WorkerConfig struct {
	// A negative MaxConcurrent runs every job on its own goroutine with no bound.
	MaxConcurrent int `yaml:"max_concurrent"`
	QueueSize     int `yaml:"queue_size"`
}

type TranscriptConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	APIHost string        `yaml:"api_host"`
	Timeout time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	TempDir          string        `yaml:"temp_dir"`
	DownloadTimeout  time.Duration `yaml:"download_timeout"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes"`
}

type RemoteConfigConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type DefaultsConfig struct {
	Model           string `yaml:"model"`
	SummaryLanguage string `yaml:"summary_language"`
}

// LoadConfig reads the yaml file at path, applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		c.Transcript.APIKey = v
	}
	if v := os.Getenv("RAPIDAPI_HOST"); v != "" {
		c.Transcript.APIHost = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("WORKER_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Worker.MaxConcurrent = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Transcript.APIKey == "" {
		return fmt.Errorf("transcript.api_key is required")
	}
	if c.RemoteConfig.Path == "" {
		return fmt.Errorf("remote_config.path is required")
	}
	if c.Worker.QueueSize < 0 {
		return fmt.Errorf("worker.queue_size must not be negative")
	}

	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Worker.MaxConcurrent == 0 {
		c.Worker.MaxConcurrent = 8
	}
	if c.Worker.QueueSize == 0 {
		c.Worker.QueueSize = 256
	}
	if c.Transcript.BaseURL == "" {
		c.Transcript.BaseURL = "https://youtube-transcriptor.p.rapidapi.com/transcript"
	}
	if c.Transcript.APIHost == "" {
		c.Transcript.APIHost = "youtube-transcriptor.p.rapidapi.com"
	}
	if c.Transcript.Timeout == 0 {
		c.Transcript.Timeout = 60 * time.Second
	}
	if c.Speech.TempDir == "" {
		c.Speech.TempDir = os.TempDir()
	}
	if c.Speech.DownloadTimeout == 0 {
		c.Speech.DownloadTimeout = 5 * time.Minute
	}
	if c.Speech.MaxDownloadBytes == 0 {
		c.Speech.MaxDownloadBytes = 25 << 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Defaults.Model == "" {
		c.Defaults.Model = "Gemini"
	}
	if c.Defaults.SummaryLanguage == "" {
		c.Defaults.SummaryLanguage = "Spanish"
	}

	return nil
}
