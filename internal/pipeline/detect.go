package pipeline

import (
	"github.com/oukeidos/docsync/internal/docstore"
	"github.com/oukeidos/docsync/internal/structure"
)

// Detect classifies every origin document against its translation.
func Detect(store *docstore.Store) ([]structure.ComparisonResult, error) {
	paths, err := store.WalkOrigin()
	if err != nil {
		return nil, err
	}
	results := make([]structure.ComparisonResult, 0, len(paths))
	for _, rel := range paths {
		origin, err := store.Origin(rel)
		if err != nil {
			return nil, err
		}
		translated, ok, err := store.Translated(rel)
		if err != nil {
			return nil, err
		}
		var tp *string
		if ok {
			tp = &translated
		}
		results = append(results, structure.Classify(rel, origin, tp))
	}
	return results, nil
}

// FilterStatus keeps results whose status is in want. An empty want keeps all.
func FilterStatus(results []structure.ComparisonResult, want ...structure.Status) []structure.ComparisonResult {
	if len(want) == 0 {
		return results
	}
	keep := make(map[structure.Status]bool, len(want))
	for _, s := range want {
		keep[s] = true
	}
	out := make([]structure.ComparisonResult, 0, len(results))
	for _, r := range results {
		if keep[r.Status] {
			out = append(out, r)
		}
	}
	return out
}
