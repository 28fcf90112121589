package digest

import (
	"fmt"
	"strings"
	"time"

	"NewsDigest/internal/domain"
)

const (
	defaultSummaryLength = 200
	defaultPreviewLength = 300
	defaultTitle         = "Daily Digest"
	ellipsis             = "..."
)

// RenderOptions tune the document layout.
type RenderOptions struct {
	SummaryLength int
}

// Meta carries run-level values shown in the header.
type Meta struct {
	Title       string
	GeneratedAt time.Time
}

// Renderer turns a ranked collection into a Markdown document.
type Renderer struct {
	summaryLength int
}

// NewRenderer builds a renderer; non-positive lengths fall back to defaults.
func NewRenderer(opts RenderOptions) *Renderer {
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = defaultSummaryLength
	}
	return &Renderer{summaryLength: opts.SummaryLength}
}

type group struct {
	name  string
	items []domain.Item
}

// Render produces the digest. Items are grouped by category, or by source when the
// category is empty; groups appear in order of their first ranked item.
func (r *Renderer) Render(items []domain.Item, meta Meta) string {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = defaultTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !meta.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", meta.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}

	if len(items) == 0 {
		b.WriteString("No items matched this run.\n")
		return b.String()
	}

	groups := groupItems(items)
	fmt.Fprintf(&b, "%d items from %d sources\n", len(items), countSources(items))

	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s\n", g.name)
		for i, item := range g.items {
			r.writeEntry(&b, i+1, item)
		}
	}
	return b.String()
}

func (r *Renderer) writeEntry(b *strings.Builder, n int, item domain.Item) {
	fmt.Fprintf(b, "\n### %d. %s\n\n", n, oneLine(item.Title))
	fmt.Fprintf(b, "- Link: %s\n", item.URL)
	fmt.Fprintf(b, "- Source: %s\n", item.Source)
	if item.Score != 0 {
		fmt.Fprintf(b, "- Score: %d\n", item.Score)
	}
	if t, ok := item.Published(); ok {
		fmt.Fprintf(b, "- Published: %s\n", t.UTC().Format("2006-01-02 15:04 UTC"))
	}
	if summary := Truncate(oneLine(item.Summary), r.summaryLength); summary != "" {
		fmt.Fprintf(b, "\n%s\n", summary)
	}
}

func groupItems(items []domain.Item) []group {
	index := map[string]int{}
	var groups []group
	for _, item := range items {
		name := item.Category
		if name == "" {
			name = item.Source
		}
		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, group{name: name})
		}
		groups[pos].items = append(groups[pos].items, item)
	}
	return groups
}

func countSources(items []domain.Item) int {
	seen := map[string]struct{}{}
	for _, item := range items {
		seen[item.Source] = struct{}{}
	}
	return len(seen)
}

// Truncate cuts s to at most n runes and appends an ellipsis when anything was removed.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " ") + ellipsis
}

// Preview returns the first n runes of doc (300 when n is not positive).
func Preview(doc string, n int) string {
	if n <= 0 {
		n = defaultPreviewLength
	}
	runes := []rune(doc)
	if len(runes) <= n {
		return doc
	}
	return string(runes[:n])
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
