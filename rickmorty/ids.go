package rickmorty

import (
	"strconv"
	"strings"
)

// IDFromURL extracts the numeric id from the last path segment of a resource
// reference. References that don't end in a number map to 0.
func IDFromURL(ref string) int {
	seg := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		seg = ref[i+1:]
	}

	id, err := strconv.Atoi(seg)
	if err != nil {
		return 0
	}
	return id
}

// IDsFromURLs maps every reference through IDFromURL, preserving order
func IDsFromURLs(refs []string) []int {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, IDFromURL(ref))
	}
	return ids
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
