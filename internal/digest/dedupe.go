package digest

import "NewsDigest/internal/domain"

// Dedupe keeps one item per canonical URL.
// The higher score wins, ties keep the first seen, and survivors retain their input order.
func Dedupe(items []domain.Item) []domain.Item {
	winners := make(map[string]int, len(items))
	for i, item := range items {
		key := CanonicalURL(item.URL)
		best, seen := winners[key]
		if !seen || item.Score > items[best].Score {
			winners[key] = i
		}
	}

	out := make([]domain.Item, 0, len(winners))
	for i, item := range items {
		if winners[CanonicalURL(item.URL)] == i {
			out = append(out, item)
		}
	}
	return out
}
