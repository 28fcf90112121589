package domain

import (
	"fmt"
	"strings"
	"time"
)

// Item is one normalized piece of content produced by a source adapter.
type Item struct {
	Title   string
	URL     string
	Summary string
	Source  string
	// PublishedAt is nil when the source does not expose a timestamp.
	PublishedAt *time.Time
	Score       int
	Category    string
	Keywords    []string
}

// Validate reports whether the item carries the fields every later stage relies on.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("item from %q has no title", i.Source)
	}
	if strings.TrimSpace(i.URL) == "" {
		return fmt.Errorf("item %q has no url", i.Title)
	}
	return nil
}

// Published returns the publication time and whether it is known.
func (i Item) Published() (time.Time, bool) {
	if i.PublishedAt == nil {
		return time.Time{}, false
	}
	return *i.PublishedAt, true
}

// TimePtr is a helper for adapters that build items from parsed timestamps.
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FetchResult is the outcome of a single adapter call.
type FetchResult struct {
	Adapter string
	Items   []Item
	Err     error
	Elapsed time.Duration
}

// OK is true when the adapter returned without failure.
func (r FetchResult) OK() bool {
	return r.Err == nil
}
