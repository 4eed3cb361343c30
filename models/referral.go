package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Referral records that a referee registered through a referrer's code.
// A referee appears at most once across all rows and users cannot refer
// themselves.
type Referral struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ReferrerID   string    `gorm:"type:varchar(36);index;not null" json:"referrer_id"`
	RefereeID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"referee_id"`
	RewardAmount float64   `json:"reward_amount"`
	RewardToken  string    `gorm:"size:16" json:"reward_token"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID and creation timestamp when not provided.
func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
