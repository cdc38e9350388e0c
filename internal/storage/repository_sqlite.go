package storage

import (
	"context"
	"errors"

	"github.com/ericogr/llm-fighters/internal/config"
	"github.com/ericogr/llm-fighters/internal/game"
	"gorm.io/gorm"
)

// resultColumns are rewritten on every SaveResult, zero values included.
var resultColumns = []string{
	"winner", "config_version", "turns_played", "game_config",
	"logs", "violation_logs", "token_logs", "p1_config", "p2_config",
	"updated_at",
}

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattle(ctx context.Context, rec *game.BattleRecord) error {
	if rec.ConfigVersion == "" {
		rec.ConfigVersion = config.Version(rec.GameConfig)
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *sqliteRepository) GetBattle(ctx context.Context, id string) (*game.BattleRecord, error) {
	var rec game.BattleRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) SaveResult(ctx context.Context, id string, res game.BattleResult) error {
	var rec game.BattleRecord
	rec.Apply(res)
	rec.ConfigVersion = config.Version(res.GameConfig)

	tx := r.db.WithContext(ctx).Model(&game.BattleRecord{}).
		Where("id = ?", id).
		Select(resultColumns).
		Updates(&rec)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrBattleNotFound
	}
	return nil
}

func (r *sqliteRepository) ListBattles(ctx context.Context, opts ListOptions) ([]game.BattleRecord, int64, error) {
	opts = opts.normalized()

	filter := func(db *gorm.DB) *gorm.DB {
		if opts.CompletedOnly {
			db = db.Where("winner <> ?", "")
		}
		if opts.PublicOnly {
			db = db.Where("public = ?", true)
		}
		if opts.OwnerID != "" {
			db = db.Where("owner_id = ?", opts.OwnerID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&game.BattleRecord{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []game.BattleRecord
	err := r.db.WithContext(ctx).Scopes(filter).
		Omit("logs", "violation_logs", "token_logs").
		Order("created_at DESC").Order("id").
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *sqliteRepository) DeleteBattle(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&game.BattleRecord{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrBattleNotFound
	}
	return nil
}
