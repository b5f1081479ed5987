package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultEndpoint is the public Hacker News Firebase API.
	DefaultEndpoint = "https://hacker-news.firebaseio.com/v0"

	// DefaultMaxResults bounds one discovery batch.
	DefaultMaxResults = 30

	// DefaultMinScore filters out stories with little traction.
	DefaultMinScore = 50

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Hacker News connector.
type Config struct {
	// Endpoint overrides the API base URL. Used in tests.
	Endpoint string

	// MaxResults bounds one fetch batch (default 30).
	MaxResults int

	// MinScore drops stories below the given point count (default 50).
	// Zero keeps the default; use a negative value to disable.
	MinScore int
}

// item is the API's story shape. Jobs and polls share it; the connector
// only admits stories.
type item struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Dead  bool   `json:"dead"`
}

// Connector discovers front-page stories as raw signals.
type Connector struct {
	cfg    Config
	client *http.Client
}

// NewConnector creates a Hacker News connector.
func NewConnector(cfg Config) *Connector {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = DefaultMinScore
	}
	return &Connector{
		cfg:    cfg,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Source returns the source kind this connector serves.
func (c *Connector) Source() domain.SourceKind {
	return domain.SourceHackerNews
}

// Fetch returns one batch of current top stories. Items that fail to
// load individually are skipped rather than failing the batch.
func (c *Connector) Fetch(ctx context.Context) ([]driven.RawSignal, error) {
	ids, err := c.topStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("hackernews: list top stories: %w", err)
	}

	signals := make([]driven.RawSignal, 0, c.cfg.MaxResults)
	for _, id := range ids {
		if len(signals) >= c.cfg.MaxResults {
			break
		}

		story, err := c.fetchItem(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("Hacker News: skipping item %d: %v", id, err)
			continue
		}
		if story == nil || story.Dead || story.Type != "story" || story.Title == "" {
			continue
		}
		if story.Score < c.cfg.MinScore {
			continue
		}

		signals = append(signals, driven.RawSignal{
			Source:     domain.SourceHackerNews,
			ExternalID: strconv.Itoa(story.ID),
			Payload:    buildPayload(story),
		})
	}

	logger.Debug("Hacker News: discovered %d stories", len(signals))
	return signals, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// topStories fetches the current front-page ID list.
func (c *Connector) topStories(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, c.cfg.Endpoint+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// fetchItem fetches a single item. The API returns null for unknown IDs,
// which decodes into a nil item.
func (c *Connector) fetchItem(ctx context.Context, id int) (*item, error) {
	var story *item
	url := fmt.Sprintf("%s/item/%d.json", c.cfg.Endpoint, id)
	if err := c.getJSON(ctx, url, &story); err != nil {
		return nil, err
	}
	return story, nil
}

func (c *Connector) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("query api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// buildPayload flattens a story into the normaliser's input shape.
func buildPayload(story *item) map[string]any {
	payload := map[string]any{
		"title": story.Title,
		"score": story.Score,
		"by":    story.By,
		"time":  story.Time,
	}
	if story.URL != "" {
		payload["url"] = story.URL
	}
	if story.Text != "" {
		payload["text"] = story.Text
	}
	return payload
}
