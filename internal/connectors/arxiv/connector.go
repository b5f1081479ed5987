package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultEndpoint is the public arXiv query API.
	DefaultEndpoint = "https://export.arxiv.org/api/query"

	// DefaultMaxResults bounds one discovery batch.
	DefaultMaxResults = 25

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// DefaultCategories covers the machine learning and software corners of
// arXiv that developer tooling tends to care about.
var DefaultCategories = []string{"cs.AI", "cs.LG", "cs.SE", "cs.DC"}

// Config holds configuration for the arXiv connector.
type Config struct {
	// Endpoint overrides the API base URL. Used in tests.
	Endpoint string

	// Query is a raw arXiv search query. When set, Categories is ignored.
	Query string

	// Categories restricts discovery to the given arXiv categories.
	// Defaults to a developer-focused set.
	Categories []string

	// MaxResults bounds one fetch batch (default 25).
	MaxResults int
}

// Connector discovers recently submitted papers as raw signals.
type Connector struct {
	cfg    Config
	client *http.Client
}

// NewConnector creates an arXiv connector.
func NewConnector(cfg Config) *Connector {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	return &Connector{
		cfg:    cfg,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Source returns the source kind this connector serves.
func (c *Connector) Source() domain.SourceKind {
	return domain.SourceArxiv
}

// Fetch returns one batch of recently submitted papers, newest first.
func (c *Connector) Fetch(ctx context.Context) ([]driven.RawSignal, error) {
	feed, err := c.query(ctx)
	if err != nil {
		return nil, fmt.Errorf("arxiv: discover papers: %w", err)
	}

	signals := make([]driven.RawSignal, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		id := paperID(entry.ID)
		if id == "" {
			logger.Debug("arXiv: skipping entry with unparseable id %q", entry.ID)
			continue
		}
		signals = append(signals, driven.RawSignal{
			Source:     domain.SourceArxiv,
			ExternalID: id,
			Payload:    buildPayload(entry),
		})
	}

	logger.Debug("arXiv: discovered %d papers", len(signals))
	return signals, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// query runs the Atom API request and decodes the feed.
func (c *Connector) query(ctx context.Context) (*feed, error) {
	params := url.Values{}
	params.Set("search_query", c.searchQuery())
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	params.Set("max_results", fmt.Sprintf("%d", c.cfg.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var f feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode atom feed: %w", err)
	}
	return &f, nil
}

// searchQuery builds the category disjunction unless an explicit query
// was configured.
func (c *Connector) searchQuery() string {
	if c.cfg.Query != "" {
		return c.cfg.Query
	}
	terms := make([]string, 0, len(c.cfg.Categories))
	for _, cat := range c.cfg.Categories {
		terms = append(terms, "cat:"+cat)
	}
	return strings.Join(terms, " OR ")
}

// buildPayload flattens an Atom entry into the normaliser's input shape.
func buildPayload(entry entry) map[string]any {
	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}

	payload := map[string]any{
		"title":      strings.TrimSpace(entry.Title),
		"summary":    strings.TrimSpace(entry.Summary),
		"authors":    strings.Join(authors, ", "),
		"published":  entry.Published,
		"updated":    entry.Updated,
		"categories": categories,
	}

	for _, link := range entry.Links {
		if link.Rel == "alternate" || (link.Rel == "" && link.Type == "text/html") {
			payload["link"] = link.Href
			break
		}
	}

	return payload
}

// paperID extracts the bare arXiv identifier from an entry ID URL such
// as "http://arxiv.org/abs/2401.00001v2". Version suffixes are dropped
// so a revised paper keeps its identity.
func paperID(entryID string) string {
	idx := strings.LastIndex(entryID, "/abs/")
	if idx < 0 {
		return ""
	}
	id := entryID[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		if version := id[v+1:]; version != "" && isDigits(version) {
			id = id[:v]
		}
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
