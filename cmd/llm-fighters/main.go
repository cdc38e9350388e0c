package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/joho/godotenv"
)

const usage = `usage: llm-fighters <command> [flags]

commands:
  run      create battles from the config agents and play them
  resume   continue an interrupted battle
  replay   print the state of a stored battle at a given step
  list     list stored battles
  delete   delete a stored battle
  version  print build information
`

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Debug("no .env file found, reading environment variables directly", nil)
	}
	logging.Configure()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// SIGINT stops the running battles after their current turn; their
	// progress is saved and can be resumed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch strings.ToLower(cmd) {
	case "run":
		err = runCmd(ctx, args)
	case "resume":
		err = resumeCmd(ctx, args)
	case "replay":
		err = replayCmd(ctx, args)
	case "list":
		err = listCmd(ctx, args)
	case "delete":
		err = deleteCmd(ctx, args)
	case "version":
		versionCmd()
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		stop()
		logging.Fatal("command failed", err, logging.Fields{"command": cmd})
	}
}

func configPath() string {
	if p := os.Getenv(constants.EnvBattleConfig); p != "" {
		return p
	}
	return constants.DefaultConfigPath
}
