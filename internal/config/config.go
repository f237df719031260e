package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// Mode is "debug" or "release"; it sets the gin mode and the log level.
		Mode string `yaml:"mode"`
		// AllowOrigins lists the browser origins allowed to call the API with credentials.
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Quiz struct {
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		Secret       string `yaml:"secret"`
		TTL          string `yaml:"ttl"`
		SecureCookie bool   `yaml:"secure_cookie"`
	} `yaml:"auth"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
}

// Load reads YAML config from path. AUTH_SECRET overrides the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "medmcq.events"
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
