package storage

import (
	"context"
	"errors"

	"github.com/ericogr/llm-fighters/internal/game"
)

var ErrBattleNotFound = errors.New("battle not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions filters and paginates ListBattles. Page starts at 1.
type ListOptions struct {
	Page          int
	PageSize      int
	CompletedOnly bool
	PublicOnly    bool
	OwnerID       string
}

type Repository interface {
	CreateBattle(ctx context.Context, rec *game.BattleRecord) error
	GetBattle(ctx context.Context, id string) (*game.BattleRecord, error)
	// SaveResult overwrites the stored result of an existing battle.
	SaveResult(ctx context.Context, id string, res game.BattleResult) error
	// ListBattles returns one page of battles, newest first, without their
	// logs, plus the total number of matching battles.
	ListBattles(ctx context.Context, opts ListOptions) ([]game.BattleRecord, int64, error)
	DeleteBattle(ctx context.Context, id string) error
}

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}
