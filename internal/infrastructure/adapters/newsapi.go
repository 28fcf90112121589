package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/top-headlines"
	newsAPILabel    = "NewsAPI"
	newsAPIRemoved  = "[Removed]"
)

// NewsAPI pulls top headlines from newsapi.org.
type NewsAPI struct {
	name     string
	label    string
	limit    int
	apiKey   string
	query    string
	language string
	country  string
	category string
	endpoint string
	client   *httpclient.Client
	logger   *slog.Logger
}

var _ ports.SourceAdapter = (*NewsAPI)(nil)

// NewNewsAPI reads the api key from credentials["apiKey"].
func NewNewsAPI(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) *NewsAPI {
	return &NewsAPI{
		name:     cfg.Name,
		label:    firstNonEmpty(cfg.Label, newsAPILabel),
		limit:    cfg.Limit(),
		apiKey:   cfg.Secret("apiKey"),
		query:    cfg.Query,
		language: cfg.Option("language", "en"),
		country:  cfg.Option("country", ""),
		category: cfg.Option("category", ""),
		endpoint: cfg.Option("endpoint", newsAPIEndpoint),
		client:   client,
		logger:   orDiscard(logger),
	}
}

func (n *NewsAPI) Name() string { return n.name }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) Fetch(ctx context.Context) ([]domain.Item, error) {
	if n.apiKey == "" {
		return nil, errors.New("newsapi: api key not configured")
	}

	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(n.limit))
	if n.language != "" {
		params.Set("language", n.language)
	}
	if n.country != "" {
		params.Set("country", n.country)
	}
	if n.category != "" {
		params.Set("category", n.category)
	}
	if n.query != "" {
		params.Set("q", n.query)
	}

	var resp newsAPIResponse
	headers := map[string]string{"X-Api-Key": n.apiKey}
	if err := n.client.GetJSON(ctx, n.endpoint+"?"+params.Encode(), headers, &resp); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q: %s %s", resp.Status, resp.Code, resp.Message)
	}

	items := make([]domain.Item, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if len(items) >= n.limit {
			break
		}
		if a.URL == "" || a.Title == "" || a.Title == newsAPIRemoved {
			continue
		}
		publisher := firstNonEmpty(a.Source.Name, "Unknown")
		item := domain.Item{
			Title:   a.Title,
			URL:     a.URL,
			Summary: htmlToText(a.Description),
			Source:  fmt.Sprintf("%s (%s)", n.label, publisher),
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(a.PublishedAt)); err == nil {
			item.PublishedAt = domain.TimePtr(t)
		}
		items = append(items, item)
	}
	return items, nil
}
