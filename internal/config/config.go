package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"NewsDigest/internal/domain"
)

const (
	configPathEnv     = "NEWSDIGEST_CONFIG"
	outputPathEnv     = "NEWSDIGEST_OUTPUT"
	logLevelEnv       = "NEWSDIGEST_LOG_LEVEL"
	includeEnv        = "NEWSDIGEST_INCLUDE"
	excludeEnv        = "NEWSDIGEST_EXCLUDE"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	defaultFetchTimeout   = 30 * time.Second
	defaultRequestTimeout = 15 * time.Second
	defaultSummaryLength  = 200
	defaultPreviewLength  = 300
	defaultMaxItems       = 10
	defaultRetries        = 2
)

// Config holds everything a digest run needs. The pipeline treats it as opaque input.
type Config struct {
	Logging    LoggingConfig   `yaml:"logging"`
	Fetch      FetchConfig     `yaml:"fetch"`
	Filters    FilterConfig    `yaml:"filters"`
	Digest     DigestConfig    `yaml:"digest"`
	Categories []CategoryRule  `yaml:"categories"`
	Output     OutputConfig    `yaml:"output"`
	Adapters   []AdapterConfig `yaml:"adapters"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetchConfig tunes the orchestrator and the shared HTTP client.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	Retries        *int          `yaml:"retries"`
	Backoff        time.Duration `yaml:"backoff"`
	RateLimit      float64       `yaml:"rateLimit"`
	UserAgent      string        `yaml:"userAgent"`
}

// RetryCount is the number of retries per request; unset means the default of 2.
func (f FetchConfig) RetryCount() int {
	if f.Retries == nil {
		return defaultRetries
	}
	return *f.Retries
}

// FilterConfig lists the keyword predicates applied after deduplication.
type FilterConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DigestConfig controls rendering.
type DigestConfig struct {
	Title         string `yaml:"title"`
	SummaryLength int    `yaml:"summaryLength"`
	PreviewLength int    `yaml:"previewLength"`
}

// CategoryRule maps a source label fragment to a category.
type CategoryRule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

// OutputConfig describes where the digest goes.
type OutputConfig struct {
	Path        string         `yaml:"path"`
	MetricsFile string         `yaml:"metricsFile"`
	Telegram    TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled is true when both token and chat are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// AdapterConfig describes one source adapter instance.
type AdapterConfig struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	Enabled     *bool             `yaml:"enabled"`
	MaxItems    int               `yaml:"maxItems"`
	Label       string            `yaml:"label"`
	Credentials map[string]string `yaml:"credentials"`
	URLs        []string          `yaml:"urls"`
	Subreddits  []string          `yaml:"subreddits"`
	Query       string            `yaml:"query"`
	Options     map[string]string `yaml:"options"`
}

// IsEnabled defaults to true when the field is omitted.
func (a AdapterConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// Limit returns MaxItems or the default.
func (a AdapterConfig) Limit() int {
	if a.MaxItems > 0 {
		return a.MaxItems
	}
	return defaultMaxItems
}

// Option returns an option value or the fallback.
func (a AdapterConfig) Option(key, fallback string) string {
	if v, ok := a.Options[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Secret resolves a credential reference by key.
func (a AdapterConfig) Secret(key string) string {
	return ResolveSecret(a.Credentials[key])
}

// EnabledAdapters filters out disabled entries.
func (c Config) EnabledAdapters() []AdapterConfig {
	out := make([]AdapterConfig, 0, len(c.Adapters))
	for _, a := range c.Adapters {
		if a.IsEnabled() {
			out = append(out, a)
		}
	}
	return out
}

// Load reads YAML configuration (if a path is given or set via env) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants a run depends on.
func (c Config) Validate() error {
	var problems []error
	if len(c.EnabledAdapters()) == 0 {
		problems = append(problems, errors.New("no adapters enabled"))
	}
	seen := map[string]struct{}{}
	for i, a := range c.Adapters {
		if strings.TrimSpace(a.Type) == "" {
			problems = append(problems, fmt.Errorf("adapters[%d]: type is required", i))
		}
		if a.MaxItems < 0 {
			problems = append(problems, fmt.Errorf("adapters[%d]: maxItems cannot be negative", i))
		}
		name := a.Name
		if name == "" {
			name = a.Type
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Errorf("adapters[%d]: duplicate name %q", i, name))
		}
		seen[name] = struct{}{}
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		problems = append(problems, errors.New("output.path is required"))
	}
	if c.Fetch.Timeout < 0 || c.Fetch.RequestTimeout < 0 {
		problems = append(problems, errors.New("fetch timeouts cannot be negative"))
	}
	if c.Fetch.RetryCount() < 0 {
		problems = append(problems, errors.New("fetch.retries cannot be negative"))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(problems...))
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(includeEnv); v != "" {
		c.Filters.Include = splitList(v)
	}
	if v := os.Getenv(excludeEnv); v != "" {
		c.Filters.Exclude = splitList(v)
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Output.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Output.Telegram.ChatID = v
	}
}

func (c *Config) applyDefaults() {
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = defaultFetchTimeout
	}
	if c.Fetch.RequestTimeout == 0 {
		c.Fetch.RequestTimeout = defaultRequestTimeout
	}
	if c.Fetch.Backoff == 0 {
		c.Fetch.Backoff = 300 * time.Millisecond
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "NewsDigest/1.0"
	}
	if c.Digest.SummaryLength <= 0 {
		c.Digest.SummaryLength = defaultSummaryLength
	}
	if c.Digest.PreviewLength <= 0 {
		c.Digest.PreviewLength = defaultPreviewLength
	}
	for i := range c.Adapters {
		if c.Adapters[i].Name == "" {
			c.Adapters[i].Name = c.Adapters[i].Type
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Fetch.Timeout != 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.RequestTimeout != 0 {
		base.Fetch.RequestTimeout = override.Fetch.RequestTimeout
	}
	if override.Fetch.Retries != nil {
		base.Fetch.Retries = override.Fetch.Retries
	}
	if override.Fetch.Backoff != 0 {
		base.Fetch.Backoff = override.Fetch.Backoff
	}
	if override.Fetch.RateLimit != 0 {
		base.Fetch.RateLimit = override.Fetch.RateLimit
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.Filters.Include != nil {
		base.Filters.Include = override.Filters.Include
	}
	if override.Filters.Exclude != nil {
		base.Filters.Exclude = override.Filters.Exclude
	}

	if override.Digest.Title != "" {
		base.Digest.Title = override.Digest.Title
	}
	if override.Digest.SummaryLength != 0 {
		base.Digest.SummaryLength = override.Digest.SummaryLength
	}
	if override.Digest.PreviewLength != 0 {
		base.Digest.PreviewLength = override.Digest.PreviewLength
	}

	if override.Categories != nil {
		base.Categories = override.Categories
	}

	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}
	if override.Output.MetricsFile != "" {
		base.Output.MetricsFile = override.Output.MetricsFile
	}
	if override.Output.Telegram.BotToken != "" {
		base.Output.Telegram.BotToken = override.Output.Telegram.BotToken
	}
	if override.Output.Telegram.ChatID != "" {
		base.Output.Telegram.ChatID = override.Output.Telegram.ChatID
	}

	if override.Adapters != nil {
		base.Adapters = override.Adapters
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetch: FetchConfig{
			Timeout:        defaultFetchTimeout,
			RequestTimeout: defaultRequestTimeout,
			Backoff:        300 * time.Millisecond,
			UserAgent:      "NewsDigest/1.0",
		},
		Digest: DigestConfig{
			Title:         "Daily Digest",
			SummaryLength: defaultSummaryLength,
			PreviewLength: defaultPreviewLength,
		},
		Categories: []CategoryRule{
			{Match: "hacker news", Category: "Tech"},
			{Match: "reddit", Category: "Community"},
			{Match: "newsapi", Category: "Headlines"},
			{Match: "new york times", Category: "Headlines"},
			{Match: "gmail", Category: "Inbox"},
		},
		Output: OutputConfig{Path: "digest.md"},
		Adapters: []AdapterConfig{
			{Name: "hackernews", Type: "hackernews", MaxItems: defaultMaxItems},
			{
				Name:     "rss",
				Type:     "rss",
				MaxItems: 5,
				URLs:     []string{"https://go.dev/blog/feed.atom"},
			},
		},
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
