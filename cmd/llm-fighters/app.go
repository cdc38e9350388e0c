package main

import (
	"github.com/ericogr/llm-fighters/internal/config"
	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/ericogr/llm-fighters/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid battle configuration", err, logging.Fields{constants.LogFieldPath: path})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{constants.LogFieldPath: dbPath})
	}
	return storage.NewSQLiteRepository(db)
}
