package usecase

import (
	"fmt"
	"strings"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
)

// PromptConfig contains prompt configuration
type PromptConfig struct {
	FilterTemplate         string // Decision prompt (supports {{preferences}}, {{title}}, {{context_section}})
	ContextSectionTemplate string // Appended when lookup found something (supports {{context}})
	ChatTemplate           string // Chat reply prompt (supports {{history}}, {{message}})
	HistoryMarker          string // Header placed above prior chat messages

	// Max number of prior chat messages included in the chat prompt
	MaxHistoryCount int
}

// DefaultPromptConfig is the default prompt configuration
var DefaultPromptConfig = PromptConfig{
	FilterTemplate: `You are filtering YouTube videos to help a user stay productive.

User says: "{{preferences}}"
Video title: "{{title}}"{{context_section}}

Should this video be REMOVED (filtered out) or KEPT for this user?

Rules:
- If user says they "hate" or "avoid" something and the video is clearly about that topic, respond "remove"
- If user says they "love" or "want" something and the video is about that topic, respond "keep"
- If video matches what user wants to avoid, respond "remove"
- If video supports what user wants to focus on, respond "keep"
- When uncertain, respond "keep" to avoid over-filtering

Examples:
- User: "I hate gaming videos" + Video: "Hitman gameplay" → "remove"
- User: "I love programming" + Video: "Python tutorial" → "keep"

Respond with exactly one word: "keep" or "remove"
`,
	ContextSectionTemplate: "\nBackground on the video topic: {{context}}",
	ChatTemplate: `
You are a helpful AI assistant having a conversation about YouTube videos.
Respond to the user's message in a conversational and helpful way.
{{history}}
User message: {{message}}
`,
	HistoryMarker:   "[Earlier in this conversation]",
	MaxHistoryCount: 10,
}

// FillDefaults fills empty fields from DefaultPromptConfig
func (c PromptConfig) FillDefaults() PromptConfig {
	if c.FilterTemplate == "" {
		c.FilterTemplate = DefaultPromptConfig.FilterTemplate
	}
	if c.ContextSectionTemplate == "" {
		c.ContextSectionTemplate = DefaultPromptConfig.ContextSectionTemplate
	}
	if c.ChatTemplate == "" {
		c.ChatTemplate = DefaultPromptConfig.ChatTemplate
	}
	if c.HistoryMarker == "" {
		c.HistoryMarker = DefaultPromptConfig.HistoryMarker
	}
	if c.MaxHistoryCount < 0 {
		c.MaxHistoryCount = 0
	}
	return c
}

// RenderFilterPrompt embeds the statement and title verbatim into the
// decision prompt. topicContext may be empty.
//
// Placeholders are substituted in a single pass so user text containing
// "{{...}}" is never expanded.
func (c PromptConfig) RenderFilterPrompt(q domain.PreferenceQuery, topicContext string) string {
	section := ""
	if topicContext != "" {
		section = strings.NewReplacer("{{context}}", topicContext).Replace(c.ContextSectionTemplate)
	}

	return strings.NewReplacer(
		"{{preferences}}", q.Statement,
		"{{title}}", q.SubjectTitle,
		"{{context_section}}", section,
	).Replace(c.FilterTemplate)
}

// RenderChatPrompt builds the conversational prompt for a user message
func (c PromptConfig) RenderChatPrompt(history []domain.Message, message string) string {
	historyText := ""
	if len(history) > 0 {
		historyText = "\n" + c.formatHistory(history)
	}

	return strings.NewReplacer(
		"{{history}}", historyText,
		"{{message}}", message,
	).Replace(c.ChatTemplate)
}

func (c PromptConfig) formatHistory(messages []domain.Message) string {
	var sb strings.Builder
	sb.WriteString(c.HistoryMarker)
	sb.WriteString("\n")
	for _, m := range messages {
		if m.Sender == domain.SenderAI {
			sb.WriteString(fmt.Sprintf("[You]: %s\n", m.Text))
		} else {
			sb.WriteString(fmt.Sprintf("[User]: %s\n", m.Text))
		}
	}
	return sb.String()
}
