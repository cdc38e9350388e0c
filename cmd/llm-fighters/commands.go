package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/ericogr/llm-fighters/internal/service"
	"github.com/ericogr/llm-fighters/internal/storage"
	"github.com/ericogr/llm-fighters/internal/version"
)

var errUsage = errors.New("invalid arguments")

func runCmd(ctx context.Context, args []string) error {
	cfg := loadConfigOrExit(configPath())
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	count := fs.Int("n", 1, "number of battles to create and play")
	maxTurns := fs.Int("max-turns", cfg.MaxTurns, "round cap per battle")
	concurrency := fs.Int("concurrency", cfg.MaxConcurrentBattles, "battles played at the same time")
	public := fs.Bool("public", false, "mark the battles as public")
	owner := fs.String("owner", "", "owner id stored with the battles")
	_ = fs.Parse(args)
	if *count < 1 {
		return fmt.Errorf("%w: -n must be at least 1", errUsage)
	}

	repo := createRepositoryOrExit(cfg.DatabasePath)
	recorder, stopMetrics := startMetricsServer(cfg.MetricsAddress)
	defer stopMetrics()

	ids := make([]string, 0, *count)
	for i := 0; i < *count; i++ {
		rec, err := service.CreateBattle(ctx, repo, service.CreateBattleInput{
			Game:    cfg.Game,
			P1:      cfg.Agents[game.P1],
			P2:      cfg.Agents[game.P2],
			Public:  *public,
			OwnerID: *owner,
		})
		if err != nil {
			return err
		}
		ids = append(ids, rec.ID)
	}

	outcomes := service.RunBattles(ctx, repo, ids, *concurrency, service.RunOptions{
		MaxTurns: *maxTurns,
		Observer: recorder,
	})
	return printOutcomes(outcomes)
}

func resumeCmd(ctx context.Context, args []string) error {
	cfg := loadConfigOrExit(configPath())
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	maxTurns := fs.Int("max-turns", cfg.MaxTurns, "round cap for the battle")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: resume takes one battle id", errUsage)
	}

	repo := createRepositoryOrExit(cfg.DatabasePath)
	recorder, stopMetrics := startMetricsServer(cfg.MetricsAddress)
	defer stopMetrics()

	out, err := service.ResumeBattle(ctx, repo, fs.Arg(0), service.RunOptions{
		MaxTurns: *maxTurns,
		Observer: recorder,
	})
	if err != nil {
		return err
	}
	return printOutcomes([]service.BattleOutcome{*out})
}

func replayCmd(ctx context.Context, args []string) error {
	cfg := loadConfigOrExit(configPath())
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	step := fs.Int("step", -1, "number of logged turns to apply (default: all)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: replay takes one battle id", errUsage)
	}

	repo := createRepositoryOrExit(cfg.DatabasePath)
	rec, err := repo.GetBattle(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	res := rec.Result()
	n := *step
	if n < 0 {
		n = len(res.Logs)
	}
	state, err := service.StateAt(res, n)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		ID     string         `json:"id"`
		Step   int            `json:"step"`
		Steps  int            `json:"steps"`
		Winner game.Winner    `json:"winner"`
		State  game.GameState `json:"state"`
	}{rec.ID, n, len(res.Logs), res.Winner, state})
}

func listCmd(ctx context.Context, args []string) error {
	cfg := loadConfigOrExit(configPath())
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", storage.DefaultPageSize, "battles per page")
	completed := fs.Bool("completed", false, "only finished battles")
	public := fs.Bool("public", false, "only public battles")
	owner := fs.String("owner", "", "only battles of this owner")
	_ = fs.Parse(args)

	repo := createRepositoryOrExit(cfg.DatabasePath)
	recs, total, err := repo.ListBattles(ctx, storage.ListOptions{
		Page:          *page,
		PageSize:      *size,
		CompletedOnly: *completed,
		PublicOnly:    *public,
		OwnerID:       *owner,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tP1\tP2\tTURNS\tWINNER\tCONFIG")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.P1Config.Name, r.P2Config.Name,
			r.TurnsPlayed, winnerLabel(r.Winner), r.ConfigVersion)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d battles\n", len(recs), total)
	return nil
}

func deleteCmd(ctx context.Context, args []string) error {
	cfg := loadConfigOrExit(configPath())
	if len(args) != 1 {
		return fmt.Errorf("%w: delete takes one battle id", errUsage)
	}
	repo := createRepositoryOrExit(cfg.DatabasePath)
	if err := repo.DeleteBattle(ctx, args[0]); err != nil {
		return err
	}
	logging.Info("battle deleted", logging.Fields{constants.LogFieldBattleID: args[0]})
	return nil
}

func versionCmd() {
	fmt.Println("llm-fighters " + version.String())
}

func printOutcomes(outs []service.BattleOutcome) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tP1\tP2\tTURNS\tWINNER\tSTATUS")
	failed := 0
	for _, o := range outs {
		status := "ok"
		switch {
		case o.Err != nil:
			status = "error: " + o.Err.Error()
			failed++
		case o.AbortErr != nil:
			status = "stopped: " + o.AbortErr.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.Result.AgentFor(game.P1).Name, o.Result.AgentFor(game.P2).Name,
			len(o.Result.Logs), winnerLabel(o.Result.Winner), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d battles failed", failed, len(outs))
	}
	return nil
}

func winnerLabel(w game.Winner) string {
	if w == game.WinnerNone {
		return "in progress"
	}
	return string(w)
}
