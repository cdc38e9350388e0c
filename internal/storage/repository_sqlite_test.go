package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/llm-fighters/internal/config"
	"github.com/ericogr/llm-fighters/internal/engine"
	"github.com/ericogr/llm-fighters/internal/game"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := OpenDB(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewSQLiteRepository(db)
}

func playedResult(t *testing.T) game.BattleResult {
	t.Helper()
	cfg := config.DefaultGameConfig()
	e := engine.New(cfg)
	steps := [][]game.ToolCall{
		{{Type: game.ToolCallUseSkill, Skill: config.SkillQuickStrike}},
		nil,
		{{Type: game.ToolCallUseSkill, Skill: config.SkillBarrier}},
	}
	for _, calls := range steps {
		if _, err := e.ProcessTurn(e.CurrentPlayer(), calls); err != nil {
			t.Fatalf("process turn: %v", err)
		}
	}
	e.RecordTokenUsage(1, game.P1, 99)
	return game.BattleResult{
		GameConfig:    e.Config(),
		Logs:          e.Logs(),
		ViolationLogs: e.ViolationLogs(),
		TokenLogs:     e.TokenLogs(),
		P1Config:      game.AgentConfig{Name: "alpha", Provider: "openai", APIKey: "sk-secret"},
		P2Config:      game.AgentConfig{Name: "beta", Provider: "scripted"},
	}
}

func TestRepository_CreateSaveGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &game.BattleRecord{ID: "b-1", GameConfig: config.DefaultGameConfig()}
	if err := repo.CreateBattle(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetBattle(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ConfigVersion != config.VersionV1 || got.Winner != game.WinnerNone || got.TurnsPlayed != 0 {
		t.Fatalf("unexpected fresh record: %+v", got)
	}

	res := playedResult(t)
	res.Winner = game.WinnerP2
	if err := BattleSink(repo, "b-1").SaveResult(ctx, res); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = repo.GetBattle(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Winner != game.WinnerP2 || got.TurnsPlayed != 3 {
		t.Fatalf("unexpected saved record: winner %q turns %d", got.Winner, got.TurnsPlayed)
	}
	loaded := got.Result()
	if len(loaded.Logs) != 3 || len(loaded.ViolationLogs) != 1 || len(loaded.TokenLogs) != 1 {
		t.Fatalf("unexpected history sizes: %d %d %d", len(loaded.Logs), len(loaded.ViolationLogs), len(loaded.TokenLogs))
	}
	if loaded.Logs[0].Result != res.Logs[0].Result || loaded.ViolationLogs[0] != res.ViolationLogs[0] {
		t.Fatalf("history did not round-trip")
	}
	if loaded.P1Config.APIKey != "" || loaded.P1Config.Name != "alpha" {
		t.Fatalf("api key must not be stored: %+v", loaded.P1Config)
	}

	want := engine.Reconstruct(res.GameConfig, res.Logs, res.ViolationLogs)
	replayed := engine.Reconstruct(loaded.GameConfig, loaded.Logs, loaded.ViolationLogs)
	if replayed.P2.HP != want.P2.HP || replayed.P2.PenaltyTurnsRemaining != want.P2.PenaltyTurnsRemaining || replayed.Turn != want.Turn {
		t.Fatalf("stored history replays differently: %+v vs %+v", replayed, want)
	}

	res.Winner = game.WinnerNone
	if err := repo.SaveResult(ctx, "b-1", res); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = repo.GetBattle(ctx, "b-1")
	if got.Winner != game.WinnerNone {
		t.Fatalf("zero winner should overwrite, got %q", got.Winner)
	}
}

func TestRepository_MissingBattle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.GetBattle(ctx, "nope"); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
	if err := repo.SaveResult(ctx, "nope", game.BattleResult{}); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
	if err := repo.DeleteBattle(ctx, "nope"); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
}

func TestRepository_ListAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	recs := []*game.BattleRecord{
		{ID: "a", CreatedAt: base, Public: true, OwnerID: "ana", Winner: game.WinnerP1},
		{ID: "b", CreatedAt: base.Add(time.Minute), OwnerID: "ana"},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute), Public: true, OwnerID: "bo", Winner: game.WinnerDraw},
	}
	for _, r := range recs {
		r.GameConfig = config.DefaultGameConfig()
		if err := repo.CreateBattle(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	page, total, err := repo.ListBattles(ctx, ListOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected first page: total %d ids %v", total, ids(page))
	}
	page, _, _ = repo.ListBattles(ctx, ListOptions{Page: 2, PageSize: 2})
	if len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected second page: %v", ids(page))
	}

	page, total, _ = repo.ListBattles(ctx, ListOptions{CompletedOnly: true, PublicOnly: true})
	if total != 2 || len(page) != 2 {
		t.Fatalf("expected 2 completed public battles, got %v", ids(page))
	}
	page, total, _ = repo.ListBattles(ctx, ListOptions{OwnerID: "ana", CompletedOnly: true})
	if total != 1 || page[0].ID != "a" {
		t.Fatalf("expected only a, got %v", ids(page))
	}

	if err := repo.DeleteBattle(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetBattle(ctx, "a"); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("deleted battle still visible: %v", err)
	}
	if _, total, _ = repo.ListBattles(ctx, ListOptions{}); total != 2 {
		t.Fatalf("expected 2 remaining battles, got %d", total)
	}
}

func ids(recs []game.BattleRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
