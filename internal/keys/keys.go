package keys

import (
	"sort"
	"strings"

	"github.com/ericogr/llm-fighters/internal/game"
)

// SkillIDs returns the catalog's skill identifiers in a stable order
// (case-insensitive, ties broken by the raw id). Map iteration is random,
// so anything rendered or sent to an agent goes through this.
func SkillIDs(skills map[string]game.SkillDefinition) []string {
	ids := make([]string, 0, len(skills))
	for id := range skills {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// CooldownIDs returns the keys of a cooldown map in the same order.
func CooldownIDs(cooldowns map[string]int) []string {
	ids := make([]string, 0, len(cooldowns))
	for id := range cooldowns {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		li, lj := strings.ToLower(ids[i]), strings.ToLower(ids[j])
		if li == lj {
			return ids[i] < ids[j]
		}
		return li < lj
	})
}
