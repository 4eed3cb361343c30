package store

import (
	"errors"

	"github.com/kaiazoo/zooquest/models"
)

// Sentinel errors shared by both store implementations. Callers use
// errors.Is to tell expected domain conditions apart from storage
// failures, which are returned wrapped and unclassified.
var (
	ErrNotFound         = errors.New("record not found")
	ErrEmailExists      = errors.New("email already registered")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrAlreadyReferred  = errors.New("user already referred")
)

// Store is the persistence contract for the reward engines. Every
// Apply* method is atomic: either all of its listed effects happen or
// none do. Implementations exist for an in-memory map (Memory) and a
// relational database via gorm (Gorm); the engines do not care which
// one they are given.
type Store interface {
	// CreateUser inserts the user with its profile and streak record as
	// one unit. Fails with ErrEmailExists when the email is taken.
	CreateUser(user *models.User, profile *models.Profile, streak *models.LoginStreak) error
	User(id string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)

	// Profile returns the ledger profile with ReferralCount populated.
	Profile(userID string) (*models.Profile, error)
	ProfileByReferralCode(code string) (*models.Profile, error)
	UpdateProfile(userID string, displayName, avatarURL *string) (*models.Profile, error)

	// Streak returns the user's streak record, ErrNotFound when absent.
	Streak(userID string) (*models.LoginStreak, error)
	// EnsureStreak returns the streak record, creating a zero-valued one
	// when the user has none yet.
	EnsureStreak(userID string) (*models.LoginStreak, error)
	// ApplyStreakClaim atomically overwrites the streak record with
	// next, appends a daily_reward transaction, adds amount to the
	// profile balance for token and sets the profile login_streak
	// counter to next.StreakDays.
	ApplyStreakClaim(userID string, next models.LoginStreak, amount float64, token, description string) error

	Task(id string) (*models.Task, error)
	Tasks() ([]models.Task, error)
	TasksWithStatus(userID string) ([]models.TaskWithStatus, error)
	CreateTask(task *models.Task) error
	Completions(userID string) ([]models.TaskCompletion, error)
	// ApplyTaskCompletion atomically records the completion, appends a
	// task_reward transaction, adds the task reward to the profile
	// balance and increments total_tasks_completed. Fails with
	// ErrAlreadyCompleted when the (user, task) pair exists.
	ApplyTaskCompletion(userID string, task models.Task, description string) (*models.TaskCompletion, error)

	// Transactions returns the user's ledger entries newest-first.
	Transactions(userID string) ([]models.Transaction, error)

	// ApplyReferral atomically inserts the referral, appends a
	// referral_reward transaction for the referrer and adds the reward
	// to the referrer's balance. Fails with ErrAlreadyReferred when the
	// referee already has a referral row.
	ApplyReferral(referral *models.Referral, description string) error
	Referrals(referrerID string) ([]models.Referral, error)

	// ApplyAchievement atomically inserts the achievement, appends an
	// achievement_reward transaction and adds the reward to the user's
	// balance. A zero amount records the unlock without a payout.
	ApplyAchievement(achievement *models.Achievement, amount float64, token, description string) error
	Achievements(userID string) ([]models.Achievement, error)
}
