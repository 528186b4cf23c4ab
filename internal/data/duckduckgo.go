package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

const (
	defaultDuckDuckGoURL   = "https://api.duckduckgo.com/"
	defaultLookupTimeout   = 5 * time.Second
	maxRelatedTopics       = 2
	maxLookupResponseBytes = 1 << 20
)

// instantAnswer is the subset of the DuckDuckGo Instant Answer response we use
type instantAnswer struct {
	Abstract      string         `json:"Abstract"`
	Definition    string         `json:"Definition"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text string `json:"Text"`
}

// duckDuckGoLookup implements repo.ContextLookup on the DuckDuckGo Instant Answer API
type duckDuckGoLookup struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewDuckDuckGoLookup creates a context lookup. An empty baseURL uses the
// public endpoint; timeout <= 0 uses 5 seconds.
func NewDuckDuckGoLookup(baseURL string, timeout time.Duration) repo.ContextLookup {
	if baseURL == "" {
		baseURL = defaultDuckDuckGoURL
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &duckDuckGoLookup{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.With().Str("component", "lookup").Logger(),
	}
}

// Lookup implements repo.ContextLookup. Any failure yields "".
func (l *duckDuckGoLookup) Lookup(ctx context.Context, topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}

	answer, err := l.fetch(ctx, topic)
	if err != nil {
		l.logger.Debug().Err(err).Str("topic", topic).Msg("Search error")
		return ""
	}
	return formatInstantAnswer(answer)
}

func (l *duckDuckGoLookup) fetch(ctx context.Context, topic string) (*instantAnswer, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", topic)
	q.Set("format", "json")
	q.Set("no_redirect", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLookupResponseBytes)).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

// formatInstantAnswer joins abstract, definition and the first related topics
func formatInstantAnswer(a *instantAnswer) string {
	var parts []string

	if a.Abstract != "" {
		parts = append(parts, "Description: "+a.Abstract)
	}
	if a.Definition != "" {
		parts = append(parts, "Definition: "+a.Definition)
	}

	related := a.RelatedTopics
	if len(related) > maxRelatedTopics {
		related = related[:maxRelatedTopics]
	}
	var topics []string
	for _, t := range related {
		if t.Text != "" {
			topics = append(topics, t.Text)
		}
	}
	if len(topics) > 0 {
		parts = append(parts, "Related: "+strings.Join(topics, "; "))
	}

	return strings.Join(parts, " | ")
}
