package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens the sqlite database at dataSourceName, creating its parent
// directory when needed, and migrates the battle schema.
func OpenDB(dataSourceName string) (*gorm.DB, error) {
	if isFilePath(dataSourceName) {
		if dir := filepath.Dir(dataSourceName); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.BattleRecord{}); err != nil {
		return nil, err
	}
	logging.Debug("database ready", logging.Fields{"dsn": dataSourceName})
	return db, nil
}

func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
