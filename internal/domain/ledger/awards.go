package ledger

import (
	"sort"
	"strings"

	"github.com/leviathan-hq/larry/internal/domain/model"
)

// MatchAwardNames returns configured award names matching prefix
// case-insensitively, sorted, capped at limit. A limit at or below zero
// means no cap. Backs the gateway's award-name autocomplete.
func MatchAwardNames(ribbonTypes map[string]model.RibbonType, prefix string, limit int) []string {
	lower := strings.ToLower(prefix)

	names := make([]string, 0, len(ribbonTypes))
	for name := range ribbonTypes {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}
