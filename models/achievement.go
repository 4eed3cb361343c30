package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement types granted by the reward engines.
const (
	AchievementTaskMaster = "task_master"
)

// Achievement records an unlocked per-user milestone. Level is the
// 1-based tier within the achievement type.
type Achievement struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	Type       string    `gorm:"size:32;not null;uniqueIndex:idx_user_achievement;column:achievement_type" json:"achievement_type"`
	Level      int       `gorm:"not null;uniqueIndex:idx_user_achievement;column:achievement_level" json:"achievement_level"`
	Progress   int       `gorm:"column:current_progress" json:"current_progress"`
	NextTarget int       `json:"next_target"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// BeforeCreate assigns a UUID and unlock timestamp when not provided.
func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now()
	}
	return nil
}
