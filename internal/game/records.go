package game

import (
	"time"

	"gorm.io/gorm"
)

// BattleRecord is the persisted row of a battle. Nested structures are stored
// as JSON columns; the record is the durable checkpoint a battle resumes from.
type BattleRecord struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Winner        Winner         `json:"winner" gorm:"size:8;index"`
	ConfigVersion string         `json:"config_version" gorm:"size:16"`
	TurnsPlayed   int            `json:"turns_played"`
	GameConfig    GameConfig     `json:"game_config" gorm:"serializer:json"`
	Logs          []GameLog      `json:"logs" gorm:"serializer:json"`
	ViolationLogs []ViolationLog `json:"violation_logs" gorm:"serializer:json"`
	TokenLogs     []TokenLog     `json:"token_logs" gorm:"serializer:json"`
	P1Config      AgentConfig    `json:"p1_config" gorm:"column:p1_config;serializer:json"`
	P2Config      AgentConfig    `json:"p2_config" gorm:"column:p2_config;serializer:json"`

	Public  bool   `json:"public" gorm:"index"`
	OwnerID string `json:"owner_id" gorm:"size:64;index"`
}

// Store battles in a table named after what they hold.
func (BattleRecord) TableName() string { return "battle_results" }

// Result converts the record into the aggregate consumed by the runner.
func (r *BattleRecord) Result() BattleResult {
	return BattleResult{
		Winner:        r.Winner,
		GameConfig:    r.GameConfig,
		Logs:          r.Logs,
		ViolationLogs: r.ViolationLogs,
		TokenLogs:     r.TokenLogs,
		P1Config:      r.P1Config,
		P2Config:      r.P2Config,
	}.Clone()
}

// Apply copies a battle result into the record.
func (r *BattleRecord) Apply(res BattleResult) {
	res = res.Clone()
	r.Winner = res.Winner
	r.GameConfig = res.GameConfig
	r.Logs = res.Logs
	r.ViolationLogs = res.ViolationLogs
	r.TokenLogs = res.TokenLogs
	r.P1Config = res.P1Config
	r.P2Config = res.P2Config
	r.TurnsPlayed = len(res.Logs)
}
