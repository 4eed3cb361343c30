package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types recorded in the ledger.
const (
	TxTaskReward        = "task_reward"
	TxDailyReward       = "daily_reward"
	TxReferralReward    = "referral_reward"
	TxAchievementReward = "achievement_reward"
	TxTransfer          = "transfer"
)

// Transaction is an immutable, append-only ledger entry. Rows are never
// updated or deleted; retrieval is always newest-first.
type Transaction struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Token       string    `gorm:"size:16;not null" json:"token"`
	Type        string    `gorm:"size:32;not null" json:"transaction_type"`
	ReferenceID string    `gorm:"type:varchar(36)" json:"reference_id,omitempty"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a UUID and creation timestamp when not provided.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return nil
}
