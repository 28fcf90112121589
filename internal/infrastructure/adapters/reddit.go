package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

const (
	redditOAuthAPI    = "https://oauth.reddit.com"
	redditPublicAPI   = "https://www.reddit.com"
	redditTokenURL    = "https://www.reddit.com/api/v1/access_token"
	redditSelftextMax = 200
)

// Reddit reads the hot listing of each configured subreddit.
// With client credentials it uses the OAuth API; without them the public JSON listing.
type Reddit struct {
	name       string
	label      string
	limit      int
	subreddits []string
	endpoint   string
	tokens     *clientcredentials.Config
	client     *httpclient.Client
	logger     *slog.Logger
}

var _ ports.SourceAdapter = (*Reddit)(nil)

// NewReddit reads credentials["clientId"] and credentials["clientSecret"].
func NewReddit(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) (*Reddit, error) {
	subs := make([]string, 0, len(cfg.Subreddits))
	for _, s := range cfg.Subreddits {
		s = strings.TrimPrefix(strings.TrimSpace(s), "r/")
		if s != "" {
			subs = append(subs, s)
		}
	}
	if len(subs) == 0 {
		return nil, errors.New("reddit: at least one subreddit is required")
	}

	r := &Reddit{
		name:       cfg.Name,
		label:      firstNonEmpty(cfg.Label, "Reddit"),
		limit:      cfg.Limit(),
		subreddits: subs,
		endpoint:   redditPublicAPI,
		client:     client,
		logger:     orDiscard(logger),
	}
	if id, secret := cfg.Secret("clientId"), cfg.Secret("clientSecret"); id != "" && secret != "" {
		r.endpoint = redditOAuthAPI
		r.tokens = &clientcredentials.Config{
			ClientID:     id,
			ClientSecret: secret,
			TokenURL:     cfg.Option("tokenUrl", redditTokenURL),
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
	}
	r.endpoint = strings.TrimRight(cfg.Option("endpoint", r.endpoint), "/")
	return r, nil
}

func (r *Reddit) Name() string { return r.name }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Selftext   string  `json:"selftext"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

// Fetch skips subreddits that fail and reports an error only when all of them did.
func (r *Reddit) Fetch(ctx context.Context) ([]domain.Item, error) {
	headers, err := r.authHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit: token: %w", err)
	}

	var (
		items []domain.Item
		errs  []error
	)
	for _, sub := range r.subreddits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		posts, err := r.fetchSubreddit(ctx, sub, headers)
		if err != nil {
			r.logger.Warn("subreddit failed", "subreddit", sub, "error", err)
			errs = append(errs, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		items = append(items, posts...)
	}
	if len(errs) == len(r.subreddits) {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (r *Reddit) authHeaders(ctx context.Context) (map[string]string, error) {
	if r.tokens == nil {
		return nil, nil
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, r.client.HTTP())
	tok, err := r.tokens.Token(tokenCtx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + tok.AccessToken}, nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub string, headers map[string]string) ([]domain.Item, error) {
	target := fmt.Sprintf("%s/r/%s/hot.json?%s", r.endpoint, url.PathEscape(sub), url.Values{
		"limit":    {strconv.Itoa(r.limit)},
		"raw_json": {"1"},
	}.Encode())

	var listing redditListing
	if err := r.client.GetJSON(ctx, target, headers, &listing); err != nil {
		return nil, err
	}

	source := fmt.Sprintf("%s r/%s", r.label, sub)
	items := make([]domain.Item, 0, r.limit)
	for _, child := range listing.Data.Children {
		if len(items) >= r.limit {
			break
		}
		post := child.Data
		if post.Stickied || strings.TrimSpace(post.Title) == "" {
			continue
		}
		link := post.URL
		if link == "" && post.Permalink != "" {
			link = redditPublicAPI + post.Permalink
		}
		item := domain.Item{
			Title:   post.Title,
			URL:     link,
			Summary: truncateRunes(collapseSpace(post.Selftext), redditSelftextMax),
			Source:  source,
			Score:   post.Score,
		}
		if post.CreatedUTC > 0 {
			sec, frac := math.Modf(post.CreatedUTC)
			item.PublishedAt = domain.TimePtr(time.Unix(int64(sec), int64(frac*1e9)).UTC())
		}
		items = append(items, item)
	}
	return items, nil
}
