package store

import (
	"slices"
)

// DistinctSorted drops empty values and duplicates and sorts the rest in
// byte order, so "Tarot" and "tarot" are distinct.
func DistinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Validate checks the classification invariant shared by both collections.
func Validate(section, category string, tags []string) error {
	if section == "" || category == "" {
		return ErrInvalidInput.WithMessage("section and category are required")
	}
	if tags != nil && len(tags) == 0 {
		return ErrInvalidInput.WithMessage("tag must be null or non-empty")
	}
	return nil
}
