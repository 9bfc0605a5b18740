package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	content := `
app:
  name: "clauselens"
  environment: "development"
server:
  address: ":9090"
auth:
  enabled: true
  jwtSecret: "secret"
llm:
  provider: "gemini"
  timeoutSeconds: 30
  gemini:
    apiKey: "key"
    model: "gemini-2.0-flash"
ocr:
  endpoint: "http://localhost:8884/recognize"
databases:
  redis:
    address: "localhost:6379"
    db: 2
logger:
  level: "debug"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Errorf("Expected server address :9090, got %q", cfg.Server.Address)
	}
	if !cfg.Auth.Enabled || cfg.Auth.JwtSecret != "secret" {
		t.Errorf("Unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.TimeoutSeconds != 30 {
		t.Errorf("Unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Unexpected gemini config: %+v", cfg.LLM.Gemini)
	}
	if cfg.Databases.Redis.DB != 2 {
		t.Errorf("Unexpected redis config: %+v", cfg.Databases.Redis)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Unexpected logger config: %+v", cfg.Logger)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does/not/exist.yaml"); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}
