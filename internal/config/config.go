package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Storage    StorageConfig    `yaml:"storage"`
	Completion CompletionConfig `yaml:"completion"`
	Sample     SampleConfig     `yaml:"sample"`
	Retention  RetentionConfig  `yaml:"retention"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// StorageConfig configures the object store holding template content.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// CompletionConfig carries the external completion service credentials.
// It is passed explicitly at construction; nothing reads these from globals.
type CompletionConfig struct {
	Provider     string        `yaml:"provider"` // openai, azure, anthropic, ollama, gemini
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float64       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	PricePerKTok float64       `yaml:"price_per_k_tokens"`
	HelpRPS      float64       `yaml:"help_rps"`
	HelpBurst    int           `yaml:"help_burst"`
}

// SampleConfig bounds the sample-data fetch.
type SampleConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RetentionConfig bounds how long ledger rows are kept.
type RetentionConfig struct {
	ValidationDays int `yaml:"validation_days"`
	AIUsageDays    int `yaml:"ai_usage_days"`
	SystemLogDays  int `yaml:"system_log_days"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.applyDefaults()
	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "rentfolio.db",
		},
		JWT: JWTConfig{
			Secret:     "rentfolio-secret-key-change-in-production",
			ExpireHour: 24,
		},
		Storage: StorageConfig{
			Dir: "data/templates",
		},
		Completion: CompletionConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "gpt-4",
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values that have sensible fallbacks.
func (c *Config) applyDefaults() {
	if c.Completion.Timeout == 0 {
		c.Completion.Timeout = 30 * time.Second
	}
	if c.Completion.MaxTokens == 0 {
		c.Completion.MaxTokens = 4096
	}
	if c.Completion.PricePerKTok == 0 {
		c.Completion.PricePerKTok = 0.01
	}
	if c.Completion.HelpRPS == 0 {
		c.Completion.HelpRPS = 1
	}
	if c.Completion.HelpBurst == 0 {
		c.Completion.HelpBurst = 5
	}
	if c.Retention.ValidationDays == 0 {
		c.Retention.ValidationDays = 90
	}
	if c.Retention.AIUsageDays == 0 {
		c.Retention.AIUsageDays = 365
	}
	if c.Retention.SystemLogDays == 0 {
		c.Retention.SystemLogDays = 30
	}
	if c.Sample.Timeout == 0 {
		c.Sample.Timeout = 5 * time.Second
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/templates"
	}
	if c.JWT.ExpireHour == 0 {
		c.JWT.ExpireHour = 24
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if provider := os.Getenv("COMPLETION_PROVIDER"); provider != "" {
		c.Completion.Provider = provider
	}
	if baseURL := os.Getenv("COMPLETION_BASE_URL"); baseURL != "" {
		c.Completion.BaseURL = baseURL
	}
	if apiKey := os.Getenv("COMPLETION_API_KEY"); apiKey != "" {
		c.Completion.APIKey = apiKey
	}
	if model := os.Getenv("COMPLETION_MODEL"); model != "" {
		c.Completion.Model = model
	}
	if timeout := os.Getenv("COMPLETION_TIMEOUT_SECONDS"); timeout != "" {
		if sec, err := strconv.Atoi(timeout); err == nil && sec > 0 {
			c.Completion.Timeout = time.Duration(sec) * time.Second
		}
	}
	if price := os.Getenv("COMPLETION_PRICE_PER_K_TOKENS"); price != "" {
		if p, err := strconv.ParseFloat(price, 64); err == nil && p >= 0 {
			c.Completion.PricePerKTok = p
		}
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
