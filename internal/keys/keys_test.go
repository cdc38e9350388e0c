package keys

import (
	"reflect"
	"testing"

	"github.com/ericogr/llm-fighters/internal/game"
)

func TestSkillIDsSorted(t *testing.T) {
	skills := map[string]game.SkillDefinition{
		"ultimateNova": {}, "barrier": {}, "quickStrike": {}, "Heavy": {},
	}
	got := SkillIDs(skills)
	want := []string{"barrier", "Heavy", "quickStrike", "ultimateNova"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestCooldownIDsEmpty(t *testing.T) {
	if got := CooldownIDs(nil); len(got) != 0 {
		t.Fatalf("expected no ids, got %v", got)
	}
}
