package usecase

import (
	"strings"
	"testing"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
)

func TestRenderFilterPrompt_CustomTemplate(t *testing.T) {
	cfg := PromptConfig{
		FilterTemplate:         "P={{preferences}} T={{title}}{{context_section}}",
		ContextSectionTemplate: " C={{context}}",
	}.FillDefaults()

	q := domain.NewPreferenceQuery("no sports", "World Cup highlights")

	got := cfg.RenderFilterPrompt(q, "")
	if got != "P=no sports T=World Cup highlights" {
		t.Errorf("Unexpected prompt without context: %q", got)
	}

	got = cfg.RenderFilterPrompt(q, "football tournament")
	if got != "P=no sports T=World Cup highlights C=football tournament" {
		t.Errorf("Unexpected prompt with context: %q", got)
	}
}

func TestRenderFilterPrompt_NoPlaceholderLeak(t *testing.T) {
	q := domain.NewPreferenceQuery("I love programming", "Python tutorial")
	got := DefaultPromptConfig.RenderFilterPrompt(q, "")

	for _, ph := range []string{"{{preferences}}", "{{title}}", "{{context_section}}"} {
		if strings.Contains(got, ph) {
			t.Errorf("Placeholder %s not substituted", ph)
		}
	}
}

func TestFillDefaults(t *testing.T) {
	cfg := PromptConfig{MaxHistoryCount: -3}.FillDefaults()

	if cfg.FilterTemplate != DefaultPromptConfig.FilterTemplate {
		t.Error("Expected default filter template")
	}
	if cfg.ChatTemplate != DefaultPromptConfig.ChatTemplate {
		t.Error("Expected default chat template")
	}
	if cfg.MaxHistoryCount != 0 {
		t.Errorf("Expected negative history count clamped to 0, got %d", cfg.MaxHistoryCount)
	}
}

func TestRenderChatPrompt(t *testing.T) {
	history := []domain.Message{
		{Text: "what is Go?", Sender: domain.SenderUser},
		{Text: "A programming language.", Sender: domain.SenderAI},
	}

	got := DefaultPromptConfig.RenderChatPrompt(history, "show me a video about it")

	if !strings.Contains(got, DefaultPromptConfig.HistoryMarker) {
		t.Error("Expected history marker")
	}
	if !strings.Contains(got, "[User]: what is Go?\n[You]: A programming language.") {
		t.Errorf("History not formatted as expected:\n%s", got)
	}
	if !strings.Contains(got, "User message: show me a video about it") {
		t.Error("Expected user message")
	}

	noHistory := DefaultPromptConfig.RenderChatPrompt(nil, "hello")
	if strings.Contains(noHistory, DefaultPromptConfig.HistoryMarker) {
		t.Error("History marker should be absent without history")
	}
}
