package adapters

import (
	"io"
	"log/slog"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/source"
)

// Adapter type names accepted in config.
const (
	TypeHackerNews = "hackernews"
	TypeNewsAPI    = "newsapi"
	TypeNYTimes    = "nytimes"
	TypeReddit     = "reddit"
	TypeRSS        = "rss"
	TypeGmail      = "gmail"
)

// Register adds every built-in adapter factory to reg.
func Register(reg *source.Registry) {
	reg.Register(TypeHackerNews, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewHackerNews(cfg, deps.HTTP, deps.Logger), nil
	})
	reg.Register(TypeNewsAPI, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewNewsAPI(cfg, deps.HTTP, deps.Logger), nil
	})
	reg.Register(TypeNYTimes, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewNYTimes(cfg, deps.HTTP, deps.Logger), nil
	})
	reg.Register(TypeReddit, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewReddit(cfg, deps.HTTP, deps.Logger)
	})
	reg.Register(TypeRSS, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewRSS(cfg, deps.HTTP, deps.Logger)
	})
	reg.Register(TypeGmail, func(cfg config.AdapterConfig, deps source.Deps) (ports.SourceAdapter, error) {
		return NewGmail(cfg, deps.HTTP, deps.Logger), nil
	})
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
