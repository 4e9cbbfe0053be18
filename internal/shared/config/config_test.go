package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY_FILE", "")
	cfg := FromViper(newTestViper())

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("expected memory store, got %q", cfg.SessionStore)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.SessionTTL)
	}
	if cfg.LLMMaxRetries != 0 {
		t.Fatalf("expected retries disabled by default, got %d", cfg.LLMMaxRetries)
	}
	if cfg.NERModel != "dslim/bert-base-NER" {
		t.Fatalf("unexpected ner model %q", cfg.NERModel)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("expected no api key by default")
	}
}

func TestFromViperOverrides(t *testing.T) {
	v := newTestViper()
	v.Set("ENV", "prod")
	v.Set("SESSION_STORE", "PG")
	v.Set("SESSION_TTL", "45m")
	v.Set("LLM_MAX_RETRIES", -3)
	v.Set("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("NER_BASE_URL", "http://ner.local/models/")
	v.Set("GEMINI_API_KEY", "  inline-key ")

	cfg := FromViper(v)
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.SessionStore != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.SessionStore)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected 45m, got %s", cfg.SessionTTL)
	}
	if cfg.LLMMaxRetries != 0 {
		t.Fatalf("expected negative retries clamped, got %d", cfg.LLMMaxRetries)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.NERBaseURL != "http://ner.local/models" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.NERBaseURL)
	}
	if cfg.GeminiAPIKey != "inline-key" {
		t.Fatalf("expected trimmed key, got %q", cfg.GeminiAPIKey)
	}
}

func TestFromViperKeyFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemini.key")
	if err := os.WriteFile(path, []byte("file-key\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	v := newTestViper()
	v.Set("GEMINI_API_KEY", "inline-key")
	v.Set("GEMINI_API_KEY_FILE", path)

	cfg := FromViper(v)
	if cfg.GeminiAPIKey != "file-key" {
		t.Fatalf("expected key from file, got %q", cfg.GeminiAPIKey)
	}
}

func TestFromViperOpenAIProvider(t *testing.T) {
	v := newTestViper()
	v.Set("LLM_PROVIDER", " OpenAI ")
	v.Set("OPENAI_API_KEY", "sk-test")
	v.Set("OPENAI_BASE_URL", "http://llm.local/v1/")

	cfg := FromViper(v)
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("expected openai key, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIBaseURL != "http://llm.local/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.OpenAIBaseURL)
	}
}

func TestIsDevLike(t *testing.T) {
	for env, want := range map[string]bool{"dev": true, " local ": true, "production": false, "staging": false} {
		if got := IsDevLike(env); got != want {
			t.Fatalf("IsDevLike(%q) = %v want %v", env, got, want)
		}
	}
}
