package digest

import (
	"strings"

	"golang.org/x/text/cases"

	"NewsDigest/internal/domain"
)

// Filter applies keyword predicates over title and summary.
// An item passes when it matches any include keyword (or include is empty)
// and matches no exclude keyword. Matching is a case-folded substring test.
func Filter(items []domain.Item, include, exclude []string) []domain.Item {
	folder := cases.Fold()
	inc := foldKeywords(folder, include)
	exc := foldKeywords(folder, exclude)

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		text := folder.String(item.Title + " " + item.Summary)
		if len(inc) > 0 && !containsAny(text, inc) {
			continue
		}
		if containsAny(text, exc) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func foldKeywords(folder cases.Caser, keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, folder.String(kw))
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
