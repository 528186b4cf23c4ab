package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubesieve/tubesieve/internal/conf"
)

func TestNew_WithoutCredentialsFallsBackToKeep(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PROJECT_ID", "")
	t.Setenv("CHATLOG_BACKEND", "sqlite")
	t.Setenv("CHATLOG_DB_PATH", filepath.Join(t.TempDir(), "chatlog.db"))

	cfg := conf.LoadFromEnv()
	require.NoError(t, cfg.Validate())

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Repos.FilterEvaluator)
	assert.Equal(t, "none", a.Usecases.Classifier.EvaluatorName())

	status, resp := a.Filter.HandleRaw(context.Background(), []byte(`{"title":"Hitman 3 Speedrun","preferences":"I hate gaming videos"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "keep", resp.Decision)

	// Chat events without an evaluator are swallowed
	assert.Nil(t, a.Chat.HandleRaw(context.Background(), []byte(`{"sender":"user","text":"hi","path":"chats/c1/messages/m1"}`)))
}

func TestNew_BadChatLogFails(t *testing.T) {
	cfg := conf.LoadFromEnv()
	cfg.ChatLog.Backend = "sqlite"
	cfg.ChatLog.Collection = "bad name"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
