package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

const (
	hackerNewsAPI       = "https://hacker-news.firebaseio.com/v0"
	hackerNewsItemPage  = "https://news.ycombinator.com/item?id=%d"
	hackerNewsLabel     = "Hacker News"
	hackerNewsScanRatio = 2
)

// HackerNews reads the top stories list, then each story's details one by one.
type HackerNews struct {
	name    string
	label   string
	limit   int
	baseURL string
	client  *httpclient.Client
	logger  *slog.Logger
}

var _ ports.SourceAdapter = (*HackerNews)(nil)

// NewHackerNews builds the adapter from its config entry.
func NewHackerNews(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) *HackerNews {
	return &HackerNews{
		name:    cfg.Name,
		label:   firstNonEmpty(cfg.Label, hackerNewsLabel),
		limit:   cfg.Limit(),
		baseURL: strings.TrimRight(cfg.Option("endpoint", hackerNewsAPI), "/"),
		client:  client,
		logger:  orDiscard(logger),
	}
}

func (h *HackerNews) Name() string { return h.name }

type hnStory struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
	Dead  bool   `json:"dead"`
}

// Fetch collects up to limit stories. Jobs, polls and unreadable entries are skipped.
func (h *HackerNews) Fetch(ctx context.Context) ([]domain.Item, error) {
	var ids []int
	if err := h.client.GetJSON(ctx, h.baseURL+"/topstories.json", nil, &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	if scan := h.limit * hackerNewsScanRatio; len(ids) > scan {
		ids = ids[:scan]
	}

	items := make([]domain.Item, 0, h.limit)
	for _, id := range ids {
		if len(items) >= h.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var story hnStory
		if err := h.client.GetJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), nil, &story); err != nil {
			h.logger.Debug("skip story", "id", id, "error", err)
			continue
		}
		if story.Type != "story" || story.Dead || strings.TrimSpace(story.Title) == "" {
			continue
		}

		link := story.URL
		if link == "" {
			link = fmt.Sprintf(hackerNewsItemPage, id)
		}
		item := domain.Item{
			Title:   story.Title,
			URL:     link,
			Summary: htmlToText(story.Text),
			Source:  h.label,
			Score:   story.Score,
		}
		if story.Time > 0 {
			item.PublishedAt = domain.TimePtr(time.Unix(story.Time, 0).UTC())
		}
		items = append(items, item)
	}
	return items, nil
}
