package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Scenarios struct {
		TTL string `yaml:"ttl" env:"SCENARIO_CACHE_TTL"`
	} `yaml:"scenarios"`
	AI   AIConfig   `yaml:"ai"`
	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`
}

// AIConfig drives the Gemini-backed question generator and policy evaluator.
type AIConfig struct {
	Model         string  `yaml:"model" env:"GEMINI_MODEL"`
	Timeout       string  `yaml:"timeout" env:"GEMINI_TIMEOUT"`
	QuestionCount int     `yaml:"questionCount" env:"QUESTION_COUNT"`
	Temperature   float32 `yaml:"temperature" env:"GEMINI_TEMPERATURE"`
	Keys          APIKeys `yaml:"keys"`
}

// APIKeys holds one Gemini key per scenario mode; Default covers single-player
// and anything unrecognised.
type APIKeys struct {
	Default        string `yaml:"default" env:"GEMINI_API_KEY"`
	Multiplayer    string `yaml:"multiplayer" env:"GEMINI_API_KEY_MULTIPLAYER"`
	Policy         string `yaml:"policy" env:"GEMINI_API_KEY_POLICY"`
	CrisisOlympics string `yaml:"crisisOlympics" env:"GEMINI_API_KEY_CRISIS_OLYMPICS"`
	RealWorld      string `yaml:"realWorld" env:"GEMINI_API_KEY_REALWORLD"`
	AIvsHuman      string `yaml:"aiVsHuman" env:"GEMINI_API_KEY_AI_VS_HUMAN"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" env:"JWT_SECRET"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Dir        string `yaml:"dir" env:"LOG_DIR"`
	MaxSizeMB  int    `yaml:"maxSizeMB" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"maxAgeDays" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
}

// Load reads YAML config from path and overlays environment variables.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.AI.Model = "gemini-1.5-flash"
	cfg.AI.Timeout = "60s"
	cfg.AI.QuestionCount = 3
	cfg.AI.Temperature = 0.7
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 5
	cfg.Log.MaxAgeDays = 14
	return cfg
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
