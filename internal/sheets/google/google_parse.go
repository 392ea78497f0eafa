package google

import (
	"fmt"
	"strings"
)

// parseIDColumn extracts record ids from the values of column A. It skips
// blanks, the header cell and comment rows starting with '#', and drops
// duplicates while keeping order.
func parseIDColumn(values [][]any) []string {
	seen := make(map[string]struct{}, len(values))
	ids := make([]string, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") || strings.EqualFold(v, "id") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, v)
	}
	return ids
}

// columnLetter maps a zero-based column index to its A1 letter(s).
func columnLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}
