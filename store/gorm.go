package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaiazoo/zooquest/models"
)

// Gorm is the relational Store. Compound operations run inside a
// database transaction with the affected profile row locked FOR
// UPDATE, so concurrent mutations for the same user serialize at the
// database and a failure partway rolls everything back.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an initialized gorm handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) CreateUser(user *models.User, profile *models.Profile, streak *models.LoginStreak) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		if err == nil {
			return ErrEmailExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		streak.UserID = user.ID
		if streak.DaysCompleted == nil {
			streak.DaysCompleted = models.DayList{}
		}
		if err := tx.Create(streak).Error; err != nil {
			return fmt.Errorf("create streak: %w", err)
		}
		return nil
	})
}

func (g *Gorm) User(id string) (*models.User, error) {
	var user models.User
	if err := g.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (g *Gorm) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := g.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (g *Gorm) Profile(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := g.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := g.db.Model(&models.Referral{}).Where("referrer_id = ?", userID).Count(&profile.ReferralCount).Error; err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}
	return &profile, nil
}

func (g *Gorm) ProfileByReferralCode(code string) (*models.Profile, error) {
	var profile models.Profile
	if err := g.db.Where("referral_code = ?", code).First(&profile).Error; err != nil {
		return nil, mapErr(err)
	}
	return &profile, nil
}

func (g *Gorm) UpdateProfile(userID string, displayName, avatarURL *string) (*models.Profile, error) {
	var profile models.Profile
	err := g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return mapErr(err)
		}
		if displayName != nil {
			profile.DisplayName = *displayName
		}
		if avatarURL != nil {
			profile.AvatarURL = *avatarURL
		}
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (g *Gorm) Streak(userID string) (*models.LoginStreak, error) {
	var streak models.LoginStreak
	if err := g.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		return nil, mapErr(err)
	}
	return &streak, nil
}

func (g *Gorm) EnsureStreak(userID string) (*models.LoginStreak, error) {
	streak, err := g.Streak(userID)
	if err == nil {
		return streak, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := g.User(userID); err != nil {
		return nil, err
	}
	created := &models.LoginStreak{UserID: userID, DaysCompleted: models.DayList{}}
	if err := g.db.Create(created).Error; err != nil {
		return nil, fmt.Errorf("create streak: %w", err)
	}
	return created, nil
}

func (g *Gorm) ApplyStreakClaim(userID string, next models.LoginStreak, amount float64, token, description string) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return mapErr(err)
		}
		var streak models.LoginStreak
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&streak).Error; err != nil {
			return mapErr(err)
		}

		streak.StreakDays = next.StreakDays
		streak.CurrentDay = next.CurrentDay
		streak.LastClaimedAt = next.LastClaimedAt
		streak.DaysCompleted = next.DaysCompleted
		if err := tx.Save(&streak).Error; err != nil {
			return fmt.Errorf("save streak: %w", err)
		}

		entry := models.Transaction{
			UserID:      userID,
			Amount:      amount,
			Token:       token,
			Type:        models.TxDailyReward,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		profile.AddBalance(token, amount)
		profile.LoginStreak = next.StreakDays
		return tx.Save(&profile).Error
	})
}

func (g *Gorm) Task(id string) (*models.Task, error) {
	var task models.Task
	if err := g.db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, mapErr(err)
	}
	return &task, nil
}

func (g *Gorm) Tasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := g.db.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (g *Gorm) TasksWithStatus(userID string) ([]models.TaskWithStatus, error) {
	tasks, err := g.Tasks()
	if err != nil {
		return nil, err
	}
	var completions []models.TaskCompletion
	if err := g.db.Where("user_id = ?", userID).Find(&completions).Error; err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		done[c.TaskID] = true
	}
	out := make([]models.TaskWithStatus, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.TaskWithStatus{Task: t, Completed: done[t.ID]})
	}
	return out, nil
}

func (g *Gorm) CreateTask(task *models.Task) error {
	return g.db.Create(task).Error
}

func (g *Gorm) Completions(userID string) ([]models.TaskCompletion, error) {
	var completions []models.TaskCompletion
	if err := g.db.Where("user_id = ?", userID).Order("completed_at DESC").Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (g *Gorm) ApplyTaskCompletion(userID string, task models.Task, description string) (*models.TaskCompletion, error) {
	completion := &models.TaskCompletion{UserID: userID, TaskID: task.ID}
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return mapErr(err)
		}

		var existing models.TaskCompletion
		err := tx.Where("user_id = ? AND task_id = ?", userID, task.ID).First(&existing).Error
		if err == nil {
			return ErrAlreadyCompleted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check completion: %w", err)
		}

		if err := tx.Create(completion).Error; err != nil {
			return fmt.Errorf("create completion: %w", err)
		}

		entry := models.Transaction{
			UserID:      userID,
			Amount:      task.RewardAmount,
			Token:       task.RewardToken,
			Type:        models.TxTaskReward,
			ReferenceID: task.ID,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		profile.AddBalance(task.RewardToken, task.RewardAmount)
		profile.TotalTasksCompleted++
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return completion, nil
}

func (g *Gorm) Transactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := g.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (g *Gorm) ApplyReferral(referral *models.Referral, description string) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Referral
		err := tx.Where("referee_id = ?", referral.RefereeID).First(&existing).Error
		if err == nil {
			return ErrAlreadyReferred
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check referral: %w", err)
		}

		var profile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", referral.ReferrerID).First(&profile).Error; err != nil {
			return mapErr(err)
		}

		if err := tx.Create(referral).Error; err != nil {
			return fmt.Errorf("create referral: %w", err)
		}

		entry := models.Transaction{
			UserID:      referral.ReferrerID,
			Amount:      referral.RewardAmount,
			Token:       referral.RewardToken,
			Type:        models.TxReferralReward,
			ReferenceID: referral.ID,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		profile.AddBalance(referral.RewardToken, referral.RewardAmount)
		return tx.Save(&profile).Error
	})
}

func (g *Gorm) Referrals(referrerID string) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := g.db.Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

func (g *Gorm) ApplyAchievement(achievement *models.Achievement, amount float64, token, description string) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Achievement
		err := tx.Where("user_id = ? AND achievement_type = ? AND achievement_level = ?",
			achievement.UserID, achievement.Type, achievement.Level).First(&existing).Error
		if err == nil {
			return nil // already unlocked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check achievement: %w", err)
		}

		var profile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", achievement.UserID).First(&profile).Error; err != nil {
			return mapErr(err)
		}

		if err := tx.Create(achievement).Error; err != nil {
			return fmt.Errorf("create achievement: %w", err)
		}

		if amount > 0 {
			entry := models.Transaction{
				UserID:      achievement.UserID,
				Amount:      amount,
				Token:       token,
				Type:        models.TxAchievementReward,
				ReferenceID: achievement.ID,
				Description: description,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("append transaction: %w", err)
			}
			profile.AddBalance(token, amount)
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *Gorm) Achievements(userID string) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := g.db.Where("user_id = ?", userID).Order("unlocked_at DESC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
