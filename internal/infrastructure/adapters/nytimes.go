package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

const (
	nytimesEndpoint = "https://api.nytimes.com/svc/topstories/v2"
	nytimesLabel    = "New York Times"
)

// NYTimes reads one section of the Top Stories API.
type NYTimes struct {
	name     string
	label    string
	limit    int
	apiKey   string
	section  string
	endpoint string
	client   *httpclient.Client
	logger   *slog.Logger
}

var _ ports.SourceAdapter = (*NYTimes)(nil)

// NewNYTimes reads the api key from credentials["apiKey"] and the section from options.
func NewNYTimes(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) *NYTimes {
	return &NYTimes{
		name:     cfg.Name,
		label:    firstNonEmpty(cfg.Label, nytimesLabel),
		limit:    cfg.Limit(),
		apiKey:   cfg.Secret("apiKey"),
		section:  cfg.Option("section", "home"),
		endpoint: strings.TrimRight(cfg.Option("endpoint", nytimesEndpoint), "/"),
		client:   client,
		logger:   orDiscard(logger),
	}
}

func (n *NYTimes) Name() string { return n.name }

type nytimesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title         string   `json:"title"`
		Abstract      string   `json:"abstract"`
		URL           string   `json:"url"`
		PublishedDate string   `json:"published_date"`
		DesFacet      []string `json:"des_facet"`
	} `json:"results"`
}

func (n *NYTimes) Fetch(ctx context.Context) ([]domain.Item, error) {
	if n.apiKey == "" {
		return nil, errors.New("nytimes: api key not configured")
	}

	target := fmt.Sprintf("%s/%s.json?%s", n.endpoint, url.PathEscape(n.section), url.Values{"api-key": {n.apiKey}}.Encode())
	var resp nytimesResponse
	if err := n.client.GetJSON(ctx, target, nil, &resp); err != nil {
		return nil, fmt.Errorf("nytimes: %w", err)
	}
	if resp.Status != "" && resp.Status != "OK" {
		return nil, fmt.Errorf("nytimes: status %q", resp.Status)
	}

	items := make([]domain.Item, 0, n.limit)
	for _, r := range resp.Results {
		if len(items) >= n.limit {
			break
		}
		if r.URL == "" || strings.TrimSpace(r.Title) == "" {
			continue
		}
		item := domain.Item{
			Title:    r.Title,
			URL:      r.URL,
			Summary:  htmlToText(r.Abstract),
			Source:   n.label,
			Keywords: r.DesFacet,
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			item.PublishedAt = domain.TimePtr(t)
		}
		items = append(items, item)
	}
	return items, nil
}
