package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a catalog entry users can complete once for a reward.
type Task struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"size:500" json:"description"`
	RewardAmount float64   `gorm:"not null" json:"reward_amount"`
	RewardToken  string    `gorm:"size:16;not null" json:"reward_token"`
	TaskType     string    `gorm:"size:32" json:"task_type"`
	RedirectURL  string    `gorm:"size:512" json:"redirect_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskWithStatus decorates a Task with the caller's completion state.
type TaskWithStatus struct {
	Task
	Completed bool `json:"completed"`
}

// TaskCompletion records that a (user, task) pair has been rewarded.
// At most one row exists per pair.
type TaskCompletion struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_task" json:"user_id"`
	TaskID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_task" json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// BeforeCreate assigns a UUID and creation timestamp when not provided.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return nil
}

// BeforeCreate assigns a UUID and completion timestamp when not provided.
func (c *TaskCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	return nil
}
