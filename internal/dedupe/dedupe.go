package dedupe

// Package dedupe provides the shared singleflight group that keeps a battle
// from being driven by two runners at once. Concurrent resume requests for
// the same battle id join the run already in flight and receive its result.

import "golang.org/x/sync/singleflight"

// BattleGroup deduplicates battle runs keyed by battle id.
var BattleGroup singleflight.Group
