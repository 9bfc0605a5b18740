package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo contains basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// AuthConfig configures the JWT bearer-token middleware.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`   // protect the API routes when true
	JwtSecret string `yaml:"jwtSecret"` // HMAC signing secret
}

// GeminiConfig holds the Gemini model set. Separate model ids let the
// cheap/fast model handle per-chunk work while the quality model handles
// summaries and merges.
type GeminiConfig struct {
	APIKey     string `yaml:"apiKey"`
	Model      string `yaml:"model"`      // summary / merge model
	ChunkModel string `yaml:"chunkModel"` // per-chunk analysis model
	ChatModel  string `yaml:"chatModel"`  // chat model
}

// OpenAIConfig holds the OpenAI-compatible provider settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"` // optional, for compatible gateways
	Model   string `yaml:"model"`
}

// LLMConfig selects and configures the completion-service provider.
type LLMConfig struct {
	Provider       string       `yaml:"provider"`       // "gemini" or "openai"
	TimeoutSeconds int          `yaml:"timeoutSeconds"` // per-call deadline, 0 means default
	Gemini         GeminiConfig `yaml:"gemini"`
	OpenAI         OpenAIConfig `yaml:"openai"`
}

// OCRConfig points at the external OCR engine used for image analysis.
type OCRConfig struct {
	Endpoint string `yaml:"endpoint"` // e.g. "http://localhost:8884/recognize"
	Language string `yaml:"language"` // default language(s), e.g. "eng" or "eng+spa"
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// MinIOConfig holds the object-store connection settings for uploads.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// DatabaseConfigs groups all backing-store configurations.
type DatabaseConfigs struct {
	Redis   RedisConfig `yaml:"redis"`
	MongoDB MongoConfig `yaml:"mongodb"`
	MinIO   MinIOConfig `yaml:"minio"`
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	OCR       OCRConfig       `yaml:"ocr"`
	Databases DatabaseConfigs `yaml:"databases"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// LoadConfig reads and parses the YAML configuration file at path.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
