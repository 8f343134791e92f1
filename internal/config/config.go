package config

import (
	"log/slog"
	"os"
	"strings"
)

// LLM provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	ServerPort string

	// SurrealDB connection (vector memory store)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Ollama embedding
	OllamaHost     string
	EmbeddingModel string

	// Chat LLM (OpenAI-compatible endpoints like DeepSeek, or local Ollama)
	LLMProvider string
	LLMModel    string
	LLMBaseURL  string
	LLMAPIKey   string

	// Agent profile manifest (YAML)
	AgentManifest string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		ServerPort: getEnv("GEOFILE_SERVER_PORT", "8800"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "geofile"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "memory"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbeddingModel: getEnv("GEOFILE_EMBEDDING_MODEL", "all-minilm:l6-v2"),

		LLMProvider: getEnv("GEOFILE_LLM_PROVIDER", ProviderOpenAI),
		LLMModel:    getEnv("GEOFILE_LLM_MODEL", "deepseek-chat"),
		LLMBaseURL:  getEnv("GEOFILE_LLM_BASE_URL", "https://api.deepseek.com/v1"),
		LLMAPIKey:   os.Getenv("GEOFILE_LLM_API_KEY"),

		AgentManifest: getEnv("GEOFILE_AGENT_MANIFEST", "agents.yaml"),

		LogFile:  getEnv("GEOFILE_LOG_FILE", "/tmp/geofile.log"),
		LogLevel: parseLogLevel(getEnv("GEOFILE_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
