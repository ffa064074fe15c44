package merge

import "github.com/isowatch-cl/iso-news-harvester/internal/domain"

// Merge combines candidate lists into a single deduplicated slice keyed by
// URL. Lists are processed in argument order, which is the source priority
// order: the first list to present a URL wins and later lists contribute only
// unseen URLs (first-seen-wins, deliberately not last-write-wins, so live
// sources beat static seed data for the same article). Output preserves the
// order of first appearance. Candidates without a URL are dropped.
func Merge(lists ...[]domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{})
	var out []domain.Candidate

	for _, list := range lists {
		for _, cand := range list {
			if cand.URL == "" {
				continue
			}
			if _, dup := seen[cand.URL]; dup {
				continue
			}
			seen[cand.URL] = struct{}{}
			out = append(out, cand)
		}
	}
	return out
}

// Filter returns the candidates accepted by keep, preserving order. A nil
// predicate accepts everything. Relevance filtering is a caller concern; the
// merge engine only provides the mechanism.
func Filter(candidates []domain.Candidate, keep func(domain.Candidate) bool) []domain.Candidate {
	if keep == nil {
		return candidates
	}
	out := make([]domain.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if keep(cand) {
			out = append(out, cand)
		}
	}
	return out
}
