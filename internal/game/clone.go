package game

// Clone helpers return fully independent copies so callers can never reach
// engine-owned maps or slices. Empty collections are copied as empty, not
// nil, which keeps reflect.DeepEqual comparisons stable across copies.

func cloneStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func cloneIntMap(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (p PlayerState) Clone() PlayerState {
	p.Cooldowns = cloneIntMap(p.Cooldowns)
	return p
}

func (la LastActions) Clone() LastActions {
	return LastActions{P1: cloneStrings(la.P1), P2: cloneStrings(la.P2)}
}

func (s GameState) Clone() GameState {
	s.P1 = s.P1.Clone()
	s.P2 = s.P2.Clone()
	s.LastActions = s.LastActions.Clone()
	return s
}

func (c GameConfig) Clone() GameConfig {
	skills := make(map[string]SkillDefinition, len(c.Skills))
	for k, v := range c.Skills {
		skills[k] = v
	}
	c.Skills = skills
	return c
}

func (l GameLog) Clone() GameLog {
	l.State = l.State.Clone()
	calls := make([]ToolCall, len(l.ToolCalls))
	copy(calls, l.ToolCalls)
	l.ToolCalls = calls
	return l
}

// CloneLogs deep-copies a log list.
func CloneLogs(src []GameLog) []GameLog {
	dst := make([]GameLog, len(src))
	for i := range src {
		dst[i] = src[i].Clone()
	}
	return dst
}

// CloneViolations copies a violation list.
func CloneViolations(src []ViolationLog) []ViolationLog {
	dst := make([]ViolationLog, len(src))
	copy(dst, src)
	return dst
}

// CloneTokens copies a token usage list.
func CloneTokens(src []TokenLog) []TokenLog {
	dst := make([]TokenLog, len(src))
	copy(dst, src)
	return dst
}

func (b BattleResult) Clone() BattleResult {
	b.GameConfig = b.GameConfig.Clone()
	b.Logs = CloneLogs(b.Logs)
	b.ViolationLogs = CloneViolations(b.ViolationLogs)
	b.TokenLogs = CloneTokens(b.TokenLogs)
	return b
}
