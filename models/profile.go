package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds per-user ledger balances and counters. It is owned
// one-to-one by a User and mutated only through the reward engines.
type Profile struct {
	ID                  string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID              string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	DisplayName         string    `gorm:"size:64" json:"display_name"`
	AvatarURL           string    `gorm:"size:512" json:"avatar_url"`
	TotalKAIA           float64   `gorm:"column:total_kaia;default:0" json:"total_kaia"`
	TotalZOO            float64   `gorm:"column:total_zoo;default:0" json:"total_zoo"`
	TotalWBTC           float64   `gorm:"column:total_wbtc;default:0" json:"total_wbtc"`
	TotalTasksCompleted int       `gorm:"default:0" json:"total_tasks_completed"`
	LoginStreak         int       `gorm:"default:0" json:"login_streak"`
	ReferralCode        string    `gorm:"size:16;uniqueIndex" json:"referral_code"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Derived, never stored: populated from the referrals table on read.
	ReferralCount int64 `gorm:"-" json:"referral_count"`
}

// Balance returns the cumulative balance for a token symbol.
func (p *Profile) Balance(token string) float64 {
	switch token {
	case TokenKAIA:
		return p.TotalKAIA
	case TokenZOO:
		return p.TotalZOO
	case TokenWBTC:
		return p.TotalWBTC
	}
	return 0
}

// AddBalance increments the cumulative balance for a token symbol.
func (p *Profile) AddBalance(token string, amount float64) {
	switch token {
	case TokenKAIA:
		p.TotalKAIA += amount
	case TokenZOO:
		p.TotalZOO += amount
	case TokenWBTC:
		p.TotalWBTC += amount
	}
}

// BeforeCreate assigns a UUID and timestamps when not provided.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (p *Profile) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}
