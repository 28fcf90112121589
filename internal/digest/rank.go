package digest

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"NewsDigest/internal/domain"
)

// CategoryRule assigns Category to items whose source label contains Match.
type CategoryRule struct {
	Match    string
	Category string
}

// Ranker orders items for presentation.
type Ranker struct {
	rules []CategoryRule
}

// NewRanker builds a ranker. Rules are tried in order and the first match wins.
func NewRanker(rules []CategoryRule) *Ranker {
	folder := cases.Fold()
	kept := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		match := strings.TrimSpace(r.Match)
		if match == "" || strings.TrimSpace(r.Category) == "" {
			continue
		}
		kept = append(kept, CategoryRule{Match: folder.String(match), Category: r.Category})
	}
	return &Ranker{rules: kept}
}

// Rank returns a new, categorised slice sorted by score (desc), publication time
// (desc, unknown last) and source label (asc). Ties keep their input order.
func (r *Ranker) Rank(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	r.categorize(out)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		at, aok := a.Published()
		bt, bok := b.Published()
		if aok != bok {
			return aok
		}
		if aok && !at.Equal(bt) {
			return at.After(bt)
		}
		return a.Source < b.Source
	})
	return out
}

func (r *Ranker) categorize(items []domain.Item) {
	if r == nil || len(r.rules) == 0 {
		return
	}
	folder := cases.Fold()
	for i := range items {
		if items[i].Category != "" {
			continue
		}
		source := folder.String(items[i].Source)
		for _, rule := range r.rules {
			if strings.Contains(source, rule.Match) {
				items[i].Category = rule.Category
				break
			}
		}
	}
}
