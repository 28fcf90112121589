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

	"golang.org/x/oauth2"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/credentials"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

const (
	gmailAPI          = "https://gmail.googleapis.com"
	gmailInboxLink    = "https://mail.google.com/mail/u/0/#inbox/"
	gmailDefaultQuery = "from:newsletters OR subject:important"
	gmailDefaultToken = "token.json"
	gmailDefaultLimit = 5
)

// Gmail lists messages matching a search query and reads their headers.
type Gmail struct {
	name     string
	label    string
	limit    int
	query    string
	endpoint string
	oauth    *oauth2.Config
	store    *credentials.FileTokenStore
	client   *httpclient.Client
	logger   *slog.Logger
}

var _ ports.SourceAdapter = (*Gmail)(nil)

// NewGmail reads the OAuth client file contents from credentials["clientSecrets"]
// (usually "file:credentials.json") and the token store path from options["tokenFile"].
func NewGmail(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) *Gmail {
	limit := gmailDefaultLimit
	if cfg.MaxItems > 0 {
		limit = cfg.MaxItems
	}
	g := &Gmail{
		name:     cfg.Name,
		label:    firstNonEmpty(cfg.Label, "Gmail"),
		limit:    limit,
		query:    firstNonEmpty(cfg.Query, gmailDefaultQuery),
		endpoint: strings.TrimRight(cfg.Option("endpoint", gmailAPI), "/"),
		store:    credentials.NewFileTokenStore(GmailTokenPath(cfg)),
		client:   client,
		logger:   orDiscard(logger),
	}
	if raw := cfg.Secret("clientSecrets"); raw != "" {
		oauthCfg, err := credentials.GoogleConfigFromJSON([]byte(raw), credentials.GmailReadonlyScope)
		if err != nil {
			g.logger.Warn("gmail client secrets unreadable", "error", err)
		} else {
			g.oauth = oauthCfg
		}
	}
	return g
}

// GmailTokenPath is where the consent flow stores, and the adapter reads, the OAuth token.
func GmailTokenPath(cfg config.AdapterConfig) string {
	return cfg.Option("tokenFile", gmailDefaultToken)
}

func (g *Gmail) Name() string { return g.name }

type gmailList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gmailMessage struct {
	ID           string `json:"id"`
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

func (m gmailMessage) header(name, fallback string) string {
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) && strings.TrimSpace(h.Value) != "" {
			return strings.TrimSpace(h.Value)
		}
	}
	return fallback
}

func (g *Gmail) Fetch(ctx context.Context) ([]domain.Item, error) {
	if g.oauth == nil {
		return nil, errors.New("gmail: client secrets not configured")
	}
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("gmail: %w", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + token}

	listURL := fmt.Sprintf("%s/gmail/v1/users/me/messages?%s", g.endpoint, url.Values{
		"q":          {g.query},
		"maxResults": {strconv.Itoa(g.limit)},
	}.Encode())
	var list gmailList
	if err := g.client.GetJSON(ctx, listURL, headers, &list); err != nil {
		return nil, fmt.Errorf("gmail: list messages: %w", err)
	}

	items := make([]domain.Item, 0, len(list.Messages))
	for _, ref := range list.Messages {
		if len(items) >= g.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgURL := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?%s", g.endpoint, url.PathEscape(ref.ID), url.Values{
			"format":          {"metadata"},
			"metadataHeaders": {"Subject", "From"},
		}.Encode())
		var msg gmailMessage
		if err := g.client.GetJSON(ctx, msgURL, headers, &msg); err != nil {
			g.logger.Debug("skip message", "id", ref.ID, "error", err)
			continue
		}
		item := domain.Item{
			Title:   "Email: " + msg.header("Subject", "No Subject"),
			URL:     gmailInboxLink + ref.ID,
			Summary: "From: " + msg.header("From", "Unknown"),
			Source:  g.label,
		}
		if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil && ms > 0 {
			item.PublishedAt = domain.TimePtr(time.UnixMilli(ms).UTC())
		}
		items = append(items, item)
	}
	return items, nil
}

func (g *Gmail) accessToken(ctx context.Context) (string, error) {
	stored, err := g.store.Load()
	if err != nil {
		return "", fmt.Errorf("load token (run `newsdigest auth gmail --adapter %s`): %w", g.name, err)
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, g.client.HTTP())
	source := credentials.PersistingTokenSource(g.oauth.TokenSource(tokenCtx, stored), g.store, stored)
	tok, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return tok.AccessToken, nil
}
