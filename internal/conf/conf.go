package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/usecase"
	"github.com/tubesieve/tubesieve/internal/data"
)

// Config represents application configuration
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Google Cloud project (Vertex AI backend)
	GCP GCPConfig

	// Model provider credentials
	Gemini GeminiConfig
	Vertex VertexConfig
	OpenAI OpenAIConfig

	// Title filtering
	Filter FilterConfig

	// Chat replies
	Chat ChatConfig

	// Chat log storage
	ChatLog ChatLogConfig

	// Evaluator circuit breaker
	Breaker BreakerConfig

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig

	// Debug mode
	Debug bool

	// Log raw model output
	LogAIResponses bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port               string
	RateLimitPerMinute int // 0 disables rate limiting
}

// GCPConfig contains Google Cloud configuration
type GCPConfig struct {
	ProjectID string
	Region    string
}

// GeminiConfig contains Gemini API configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// VertexConfig contains Vertex AI configuration
type VertexConfig struct {
	Model string
}

// OpenAIConfig contains OpenAI-compatible provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// FilterConfig contains title filtering configuration
type FilterConfig struct {
	Provider       string
	TimeoutSeconds int
	ContextLookup  bool
	LookupURL      string
}

// ChatConfig contains chat reply configuration
type ChatConfig struct {
	Provider       string
	TimeoutSeconds int
}

// ChatLogConfig contains chat log storage configuration
type ChatLogConfig struct {
	Backend       string
	DBPath        string
	MongoURI      string
	MongoDatabase string
	Collection    string
}

// BreakerConfig contains circuit breaker configuration
type BreakerConfig struct {
	Failures        int // Consecutive failures before opening (0 disables)
	CooldownSeconds int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Chat log DB path
	chatLogDBPath := os.Getenv("CHATLOG_DB_PATH")
	if chatLogDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		chatLogDBPath = filepath.Join(homeDir, ".tubesieve", "chatlog.db")
	}

	// Load prompts from YAML
	promptsConfig, err := LoadPromptsConfig(os.Getenv("PROMPTS_CONFIG_PATH"))
	if err != nil {
		log.Warn().Err(err).Str("component", "config").Msg("Prompts config unusable, using defaults")
		promptsConfig = DefaultPromptsConfig()
	}

	// Override history settings from env if specified
	if val, ok := os.LookupEnv("CHAT_HISTORY_COUNT"); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			promptsConfig.History.MaxCount = parsed
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		GCP: GCPConfig{
			ProjectID: os.Getenv("PROJECT_ID"),
			Region:    getEnv("REGION", "us-central1"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Vertex: VertexConfig{
			Model: getEnv("VERTEX_AI_MODEL", "gemini-1.0-pro"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("OPENAI_MODEL"),
		},
		Filter: FilterConfig{
			Provider:       getEnv("FILTER_PROVIDER", data.ProviderGemini),
			TimeoutSeconds: getEnvInt("FILTER_TIMEOUT_SECONDS", 5),
			ContextLookup:  getEnvBool("CONTEXT_LOOKUP_ENABLED"),
			LookupURL:      os.Getenv("CONTEXT_LOOKUP_URL"),
		},
		Chat: ChatConfig{
			Provider:       getEnv("CHAT_PROVIDER", data.ProviderVertex),
			TimeoutSeconds: getEnvInt("CHAT_TIMEOUT_SECONDS", 30),
		},
		ChatLog: ChatLogConfig{
			Backend:       getEnv("CHATLOG_BACKEND", data.ChatLogSQLite),
			DBPath:        chatLogDBPath,
			MongoURI:      os.Getenv("MONGO_URI"),
			MongoDatabase: getEnv("MONGO_DATABASE", "tubesieve"),
			Collection:    getEnv("FIRESTORE_CHAT_COLLECTION", "chats"),
		},
		Breaker: BreakerConfig{
			Failures:        getEnvInt("BREAKER_FAILURES", 5),
			CooldownSeconds: getEnvInt("BREAKER_COOLDOWN_SECONDS", 30),
		},
		Prompts:        promptsConfig,
		Debug:          getEnvBool("DEBUG_MODE"),
		LogAIResponses: getEnvBool("LOG_AI_RESPONSES"),
	}
}

// Validate validates the configuration.
// Missing model credentials are not an error: the affected evaluator is
// disabled and its callers fall back to their safe defaults.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return &ConfigError{Field: "PORT", Message: "must be a number"}
	}
	if !knownProvider(c.Filter.Provider) {
		return &ConfigError{Field: "FILTER_PROVIDER", Message: "must be one of gemini, vertex, openai"}
	}
	if !knownProvider(c.Chat.Provider) {
		return &ConfigError{Field: "CHAT_PROVIDER", Message: "must be one of gemini, vertex, openai"}
	}
	switch c.ChatLog.Backend {
	case data.ChatLogSQLite:
	case data.ChatLogMongo:
		if c.ChatLog.MongoURI == "" {
			return &ConfigError{Field: "MONGO_URI", Message: "required when CHATLOG_BACKEND=mongo"}
		}
	default:
		return &ConfigError{Field: "CHATLOG_BACKEND", Message: "must be sqlite or mongo"}
	}
	if c.Filter.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "FILTER_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.Chat.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "CHAT_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.Breaker.Failures < 0 {
		return &ConfigError{Field: "BREAKER_FAILURES", Message: "must not be negative"}
	}
	return nil
}

// ToDataOptions converts to repository construction options
func (c *Config) ToDataOptions() data.Options {
	return data.Options{
		Filter:        c.evaluatorOptions(c.Filter.Provider),
		Chat:          c.evaluatorOptions(c.Chat.Provider),
		LookupURL:     c.Filter.LookupURL,
		LookupTimeout: time.Duration(c.Filter.TimeoutSeconds) * time.Second,
		ChatLog: data.ChatLogOptions{
			Backend:       c.ChatLog.Backend,
			DBPath:        c.ChatLog.DBPath,
			MongoURI:      c.ChatLog.MongoURI,
			MongoDatabase: c.ChatLog.MongoDatabase,
			Collection:    c.ChatLog.Collection,
		},
	}
}

func (c *Config) evaluatorOptions(provider string) data.EvaluatorOptions {
	model := c.Gemini.Model
	if provider == data.ProviderVertex {
		model = c.Vertex.Model
	}

	return data.EvaluatorOptions{
		Provider: provider,
		Gemini: data.GeminiSettings{
			APIKey:   c.Gemini.APIKey,
			Project:  c.GCP.ProjectID,
			Location: c.GCP.Region,
			Model:    model,
		},
		OpenAI: data.OpenAISettings{
			APIKey:  c.OpenAI.APIKey,
			BaseURL: c.OpenAI.BaseURL,
			Model:   c.OpenAI.Model,
		},
		Breaker: data.BreakerSettings{
			FailureThreshold: uint32(c.Breaker.Failures),
			Cooldown:         time.Duration(c.Breaker.CooldownSeconds) * time.Second,
		},
	}
}

// ToPromptConfig converts to prompt configuration
func (c *Config) ToPromptConfig() usecase.PromptConfig {
	if c.Prompts == nil {
		return usecase.DefaultPromptConfig
	}

	return usecase.PromptConfig{
		FilterTemplate:         c.Prompts.Filter.Template,
		ContextSectionTemplate: c.Prompts.Filter.ContextSectionTemplate,
		ChatTemplate:           c.Prompts.Chat.Template,
		HistoryMarker:          c.Prompts.Chat.HistoryMarker,
		MaxHistoryCount:        c.Prompts.History.MaxCount,
	}
}

// ToClassifierConfig converts to classifier configuration
func (c *Config) ToClassifierConfig() usecase.ClassifierConfig {
	return usecase.ClassifierConfig{
		Timeout:      time.Duration(c.Filter.TimeoutSeconds) * time.Second,
		UseContext:   c.Filter.ContextLookup,
		LogResponses: c.LogAIResponses,
	}
}

// ToChatConfig converts to chat reply configuration
func (c *Config) ToChatConfig() usecase.ChatConfig {
	return usecase.ChatConfig{
		Timeout: time.Duration(c.Chat.TimeoutSeconds) * time.Second,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func knownProvider(p string) bool {
	switch p {
	case data.ProviderGemini, data.ProviderVertex, data.ProviderOpenAI:
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && parsed
}
