package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayList stores the cyclic-day positions completed within the current
// 7-day cycle. Persisted as a JSON array so it works on both MySQL and
// Postgres without a native array column.
type DayList []int

// Value implements driver.Valuer.
func (d DayList) Value() (driver.Value, error) {
	if d == nil {
		d = DayList{}
	}
	b, err := json.Marshal([]int(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *DayList) Scan(src interface{}) error {
	if src == nil {
		*d = DayList{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("daylist: cannot scan %T", src)
	}
	if len(b) == 0 {
		*d = DayList{}
		return nil
	}
	return json.Unmarshal(b, (*[]int)(d))
}

// Contains reports whether the cyclic position is already recorded.
func (d DayList) Contains(day int) bool {
	for _, v := range d {
		if v == day {
			return true
		}
	}
	return false
}

// LoginStreak tracks a user's daily claim streak. CurrentDay is the
// cyclic position (0..6) of the most recent successful claim and
// DaysCompleted is cleared whenever the streak resets.
type LoginStreak struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	StreakDays    int        `gorm:"default:0" json:"streak_days"`
	CurrentDay    int        `gorm:"default:0" json:"current_day"`
	LastClaimedAt *time.Time `json:"last_claimed_at"`
	DaysCompleted DayList    `gorm:"type:varchar(64)" json:"days_completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID and timestamps when not provided.
func (s *LoginStreak) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (s *LoginStreak) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}
