package digest

import (
	"testing"

	"NewsDigest/internal/domain"
)

func TestDedupeHigherScoreWins(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "A", URL: "https://x.com/a", Score: 10, Source: "rss"},
		{Title: "B", URL: "https://x.com/b", Score: 1},
		{Title: "A again", URL: "https://X.com/a/?utm_source=hn", Score: 250, Source: "hn"},
	}
	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Title != "B" || got[1].Title != "A again" {
		t.Fatalf("survivors should keep input order: %+v", got)
	}
}

func TestDedupeTieKeepsFirst(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "first", URL: "https://x.com/a", Score: 5},
		{Title: "second", URL: "https://x.com/a#frag", Score: 5},
		{Title: "lower", URL: "https://x.com/a/", Score: 2},
	}
	got := Dedupe(items)
	if len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("tie should keep first encountered: %+v", got)
	}
}

func TestDedupeWhitespaceBeforeTrackingParam(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "feed", URL: "https://x.com/a?q=1 &utm_source=rss", Score: 3},
		{Title: "site", URL: "https://x.com/a?q=1", Score: 3},
	}
	got := Dedupe(items)
	if len(got) != 1 || got[0].Title != "feed" {
		t.Fatalf("expected one survivor keeping the first, got %+v", got)
	}
}

func TestDedupeNoDuplicates(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "1", URL: "https://x.com/1"},
		{Title: "2", URL: "https://x.com/2"},
		{Title: "3", URL: "https://x.com/3"},
	}
	got := Dedupe(items)
	for i := range items {
		if got[i].Title != items[i].Title {
			t.Fatalf("order changed: %+v", got)
		}
	}
	if len(Dedupe(nil)) != 0 {
		t.Fatalf("empty input should stay empty")
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "a", URL: "https://x.com/a", Score: 1},
		{Title: "b", URL: "https://x.com/a?fbclid=1", Score: 3},
		{Title: "c", URL: "https://x.com/c", Score: 2},
	}
	once := Dedupe(items)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed size: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Title != twice[i].Title {
			t.Fatalf("second pass changed order: %+v vs %+v", once, twice)
		}
	}
}
