package editor

import "strings"

// SplitNewTags splits comma separated input into trimmed, non-empty tags.
func SplitNewTags(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// MergeTags returns the locked existing tags followed by the tags typed in
// newInput. Order is kept and duplicates are not removed. An empty result
// is nil, which is stored as null.
func MergeTags(existing []string, newInput string) []string {
	fresh := SplitNewTags(newInput)
	if len(existing)+len(fresh) == 0 {
		return nil
	}
	out := make([]string, 0, len(existing)+len(fresh))
	out = append(out, existing...)
	return append(out, fresh...)
}

// RemoveTag drops every occurrence of tag.
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
