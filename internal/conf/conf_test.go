package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubesieve/tubesieve/internal/biz/usecase"
	"github.com/tubesieve/tubesieve/internal/data"
)

var envKeys = []string{
	"PORT", "RATE_LIMIT_PER_MINUTE", "PROJECT_ID", "REGION",
	"GEMINI_API_KEY", "GEMINI_MODEL", "VERTEX_AI_MODEL",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"FILTER_PROVIDER", "FILTER_TIMEOUT_SECONDS", "CONTEXT_LOOKUP_ENABLED", "CONTEXT_LOOKUP_URL",
	"CHAT_PROVIDER", "CHAT_TIMEOUT_SECONDS", "CHAT_HISTORY_COUNT",
	"CHATLOG_BACKEND", "CHATLOG_DB_PATH", "MONGO_URI", "MONGO_DATABASE", "FIRESTORE_CHAT_COLLECTION",
	"BREAKER_FAILURES", "BREAKER_COOLDOWN_SECONDS",
	"DEBUG_MODE", "LOG_AI_RESPONSES", "PROMPTS_CONFIG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "us-central1", cfg.GCP.Region)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "gemini-1.0-pro", cfg.Vertex.Model)
	assert.Equal(t, data.ProviderGemini, cfg.Filter.Provider)
	assert.Equal(t, 5, cfg.Filter.TimeoutSeconds)
	assert.False(t, cfg.Filter.ContextLookup)
	assert.Equal(t, data.ProviderVertex, cfg.Chat.Provider)
	assert.Equal(t, 30, cfg.Chat.TimeoutSeconds)
	assert.Equal(t, data.ChatLogSQLite, cfg.ChatLog.Backend)
	assert.Equal(t, "chats", cfg.ChatLog.Collection)
	assert.Equal(t, "chatlog.db", filepath.Base(cfg.ChatLog.DBPath))
	assert.Equal(t, 5, cfg.Breaker.Failures)
	assert.Equal(t, 10, cfg.Prompts.History.MaxCount)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.LogAIResponses)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FILTER_PROVIDER", "openai")
	t.Setenv("FILTER_TIMEOUT_SECONDS", "2")
	t.Setenv("CONTEXT_LOOKUP_ENABLED", "true")
	t.Setenv("CHAT_HISTORY_COUNT", "0")
	t.Setenv("DEBUG_MODE", "1")
	t.Setenv("LOG_AI_RESPONSES", "true")
	t.Setenv("BREAKER_FAILURES", "not-a-number")

	cfg := LoadFromEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, data.ProviderOpenAI, cfg.Filter.Provider)
	assert.Equal(t, 2, cfg.Filter.TimeoutSeconds)
	assert.True(t, cfg.Filter.ContextLookup)
	assert.Equal(t, 0, cfg.Prompts.History.MaxCount)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.LogAIResponses)
	assert.Equal(t, 5, cfg.Breaker.Failures, "unparsable values keep the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Server.Port = "http" }, "PORT"},
		{"unknown filter provider", func(c *Config) { c.Filter.Provider = "palm" }, "FILTER_PROVIDER"},
		{"unknown chat provider", func(c *Config) { c.Chat.Provider = "" }, "CHAT_PROVIDER"},
		{"unknown backend", func(c *Config) { c.ChatLog.Backend = "firestore" }, "CHATLOG_BACKEND"},
		{"mongo without uri", func(c *Config) { c.ChatLog.Backend = data.ChatLogMongo }, "MONGO_URI"},
		{"zero filter timeout", func(c *Config) { c.Filter.TimeoutSeconds = 0 }, "FILTER_TIMEOUT_SECONDS"},
		{"zero chat timeout", func(c *Config) { c.Chat.TimeoutSeconds = 0 }, "CHAT_TIMEOUT_SECONDS"},
		{"negative breaker", func(c *Config) { c.Breaker.Failures = -1 }, "BREAKER_FAILURES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := LoadFromEnv()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestToDataOptions(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ID", "my-project")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("BREAKER_COOLDOWN_SECONDS", "10")

	opts := LoadFromEnv().ToDataOptions()

	assert.Equal(t, data.ProviderGemini, opts.Filter.Provider)
	assert.Equal(t, "gemini-1.5-flash", opts.Filter.Gemini.Model)
	assert.Equal(t, "gk", opts.Filter.Gemini.APIKey)

	assert.Equal(t, data.ProviderVertex, opts.Chat.Provider)
	assert.Equal(t, "gemini-1.0-pro", opts.Chat.Gemini.Model)
	assert.Equal(t, "my-project", opts.Chat.Gemini.Project)
	assert.Equal(t, "us-central1", opts.Chat.Gemini.Location)

	assert.Equal(t, uint32(5), opts.Filter.Breaker.FailureThreshold)
	assert.Equal(t, 10*time.Second, opts.Filter.Breaker.Cooldown)
	assert.Equal(t, 5*time.Second, opts.LookupTimeout)
	assert.Equal(t, "chats", opts.ChatLog.Collection)
}

func TestUsecaseConverters(t *testing.T) {
	clearEnv(t)
	t.Setenv("FILTER_TIMEOUT_SECONDS", "3")
	t.Setenv("CONTEXT_LOOKUP_ENABLED", "true")

	cfg := LoadFromEnv()

	cc := cfg.ToClassifierConfig()
	assert.Equal(t, 3*time.Second, cc.Timeout)
	assert.True(t, cc.UseContext)

	assert.Equal(t, 30*time.Second, cfg.ToChatConfig().Timeout)

	pc := cfg.ToPromptConfig()
	assert.Equal(t, usecase.DefaultPromptConfig.FilterTemplate, pc.FilterTemplate)
	assert.Equal(t, 10, pc.MaxHistoryCount)

	cfg.Prompts = nil
	assert.Equal(t, usecase.DefaultPromptConfig, cfg.ToPromptConfig())
}

func TestLoadPromptsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
filter:
  template: "Prefs: {{preferences}} / {{title}}{{context_section}}"
history:
  max_count: 3
`), 0644))

	cfg, err := LoadPromptsConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Prefs: {{preferences}} / {{title}}{{context_section}}", cfg.Filter.Template)
	assert.Equal(t, 3, cfg.History.MaxCount)
	// Missing fields come from defaults
	assert.Equal(t, usecase.DefaultPromptConfig.ChatTemplate, cfg.Chat.Template)
	assert.Equal(t, usecase.DefaultPromptConfig.ContextSectionTemplate, cfg.Filter.ContextSectionTemplate)
}

func TestLoadPromptsConfig_HistoryMaxCount(t *testing.T) {
	dir := t.TempDir()

	disabled := filepath.Join(dir, "disabled.yaml")
	require.NoError(t, os.WriteFile(disabled, []byte("history:\n  max_count: 0\n"), 0644))
	cfg, err := LoadPromptsConfig(disabled)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.History.MaxCount)
	assert.Equal(t, 0, (&Config{Prompts: cfg}).ToPromptConfig().MaxHistoryCount)

	omitted := filepath.Join(dir, "omitted.yaml")
	require.NoError(t, os.WriteFile(omitted, []byte("chat:\n  history_marker: \"Earlier:\"\n"), 0644))
	cfg, err = LoadPromptsConfig(omitted)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.History.MaxCount)
	assert.Equal(t, "Earlier:", cfg.Chat.HistoryMarker)
}

func TestLoadPromptsConfig_Errors(t *testing.T) {
	_, err := LoadPromptsConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("filter: [unclosed"), 0644))
	_, err = LoadPromptsConfig(bad)
	assert.Error(t, err)
}

func TestLoadPromptsConfig_ShippedFile(t *testing.T) {
	cfg, err := LoadPromptsConfig(filepath.Join("..", "..", "configs", "prompts.yaml"))
	require.NoError(t, err)

	assert.Contains(t, cfg.Filter.Template, "{{preferences}}")
	assert.Contains(t, cfg.Filter.Template, "{{title}}")
	assert.Contains(t, cfg.Filter.Template, "{{context_section}}")
	assert.Contains(t, cfg.Chat.Template, "{{message}}")
	assert.Equal(t, 10, cfg.History.MaxCount)
}
