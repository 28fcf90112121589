package digest

import (
	"strings"
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	doc := NewRenderer(RenderOptions{}).Render(nil, Meta{Title: "Morning"})
	if !strings.HasPrefix(doc, "# Morning\n") {
		t.Fatalf("missing title: %q", doc)
	}
	if !strings.Contains(doc, "No items") {
		t.Fatalf("empty digest should say there are no items: %q", doc)
	}
}

func TestRenderGroupsAndEntries(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "Story one", URL: "https://hn/1", Source: "Hacker News", Category: "Tech", Score: 120, Summary: "short"},
		{Title: "Mail", URL: "https://mail/1", Source: "Gmail", Summary: "From: a@b.c"},
		{Title: "Story two", URL: "https://hn/2", Source: "Hacker News", Category: "Tech", PublishedAt: at(6)},
	}
	doc := NewRenderer(RenderOptions{}).Render(items, Meta{
		Title:       "Digest",
		GeneratedAt: time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC),
	})

	for _, want := range []string{
		"_Generated 2024-05-01 07:30 UTC_",
		"3 items from 2 sources",
		"## Tech",
		"### 1. Story one",
		"- Link: https://hn/1",
		"- Score: 120",
		"### 2. Story two",
		"- Published: 2024-05-01 06:00 UTC",
		"## Gmail",
		"From: a@b.c",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Index(doc, "## Tech") > strings.Index(doc, "## Gmail") {
		t.Fatalf("groups should follow first appearance:\n%s", doc)
	}
	if strings.Count(doc, "- Score:") != 1 {
		t.Fatalf("zero scores should be hidden:\n%s", doc)
	}
}

func TestRenderTruncatesSummary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 50)
	doc := NewRenderer(RenderOptions{SummaryLength: 10}).Render([]domain.Item{
		{Title: "t", URL: "u", Source: "s", Summary: long},
	}, Meta{})
	if !strings.Contains(doc, strings.Repeat("é", 10)+"...") {
		t.Fatalf("summary not truncated by runes:\n%s", doc)
	}
	if strings.Contains(doc, strings.Repeat("é", 11)) {
		t.Fatalf("summary too long:\n%s", doc)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 6); got != "hello..." {
		t.Fatalf("Truncate = %q", got)
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	doc := strings.Repeat("ж", 400)
	if got := []rune(Preview(doc, 0)); len(got) != defaultPreviewLength {
		t.Fatalf("default preview length = %d", len(got))
	}
	if got := Preview("short", 300); got != "short" {
		t.Fatalf("Preview(short) = %q", got)
	}
	if Preview(doc, 5) != Preview(doc, 5) {
		t.Fatalf("Preview is not deterministic")
	}
}
