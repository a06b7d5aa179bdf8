package board

import "strings"

const (
	// MaxTagsOnCreate caps tags parsed from the quick-add field.
	MaxTagsOnCreate = 6
	// MaxTags caps tags on any later mutation.
	MaxTags = 8
)

// ParseTagsCSV splits a comma separated tag list: trimmed, lowercased, empties and duplicates
// dropped, capped at limit.
func ParseTagsCSV(csv string, limit int) []string {
	return NormalizeTags(strings.Split(csv, ","), limit)
}

// NormalizeTags lowercases and trims tags, dropping empties and exact duplicates, keeping the
// first limit entries in insertion order.
func NormalizeTags(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, raw := range in {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" || seen[tag] {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
