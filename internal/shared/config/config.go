package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"career-booster/internal/shared/secrets"
)

const configName = "career-booster"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	LLMProvider   string
	LLMModel      string
	LLMTimeout    time.Duration
	LLMMaxRetries int
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	NERProvider string
	NERModel    string
	NERBaseURL  string
	NERTimeout  time.Duration
	HFAPIToken  string

	SessionStore  string
	SessionTTL    time.Duration
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	RateLimitLLMPerMin int
}

// Load reads configuration from the environment, .env files and an optional
// career-booster.yaml, with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("config: read %s.yaml: %v", configName, err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))

	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),

		LLMProvider:   normalizeProvider(v.GetString("LLM_PROVIDER"), "gemini"),
		LLMModel:      strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMTimeout:    seconds(v.GetInt("LLM_TIMEOUT_SECONDS"), 120),
		LLMMaxRetries: nonNegative(v.GetInt("LLM_MAX_RETRIES")),
		OpenAIBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("OPENAI_BASE_URL")), "/"),

		NERProvider: normalizeProvider(v.GetString("NER_PROVIDER"), "huggingface"),
		NERModel:    strings.TrimSpace(v.GetString("NER_MODEL")),
		NERBaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("NER_BASE_URL")), "/"),
		NERTimeout:  seconds(v.GetInt("NER_TIMEOUT_SECONDS"), 60),

		SessionStore:  normalizeStore(v.GetString("SESSION_STORE")),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		RateLimitLLMPerMin: nonNegative(v.GetInt("RATE_LIMIT_LLM_PER_MIN")),
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}

	// Credentials are never compiled in; a *_FILE path wins over the inline value.
	if key, err := secrets.Load(secrets.Source{
		Name:  "GEMINI_API_KEY",
		Value: v.GetString("GEMINI_API_KEY"),
		File:  v.GetString("GEMINI_API_KEY_FILE"),
	}); err == nil {
		cfg.GeminiAPIKey = key
	} else if cfg.LLMProvider == "gemini" {
		log.Printf("config: %v; generative calls will degrade to fallbacks", err)
	}
	if key, err := secrets.Load(secrets.Source{
		Name:  "OPENAI_API_KEY",
		Value: v.GetString("OPENAI_API_KEY"),
		File:  v.GetString("OPENAI_API_KEY_FILE"),
	}); err == nil {
		cfg.OpenAIAPIKey = key
	} else if cfg.LLMProvider == "openai" {
		log.Printf("config: %v; generative calls will degrade to fallbacks", err)
	}
	if token, err := secrets.Load(secrets.Source{
		Name:  "HF_API_TOKEN",
		Value: v.GetString("HF_API_TOKEN"),
		File:  v.GetString("HF_API_TOKEN_FILE"),
	}); err == nil {
		cfg.HFAPIToken = token
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MODEL", "gemini-2.5-flash")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("LLM_MAX_RETRIES", 0)
	v.SetDefault("NER_PROVIDER", "huggingface")
	v.SetDefault("NER_MODEL", "dslim/bert-base-NER")
	v.SetDefault("NER_BASE_URL", "https://api-inference.huggingface.co/models")
	v.SetDefault("NER_TIMEOUT_SECONDS", 60)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_LLM_PER_MIN", 30)
	// Bound so AutomaticEnv picks them up even without a default.
	for _, key := range []string{"GEMINI_API_KEY", "GEMINI_API_KEY_FILE", "OPENAI_API_KEY", "OPENAI_API_KEY_FILE", "OPENAI_BASE_URL", "HF_API_TOKEN", "HF_API_TOKEN_FILE", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD"} {
		_ = v.BindEnv(key)
	}
}

// IsDevLike reports whether env is a local development environment.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw, def string) string {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "":
		return def
	default:
		return p
	}
}

func normalizeStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}
