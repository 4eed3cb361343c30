package rewards

import (
	"errors"
	"fmt"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

// AchievementPolicy describes the task-count milestones and the payout
// each unlock carries.
type AchievementPolicy struct {
	Targets      []int
	RewardAmount float64
	RewardToken  string
}

// DefaultAchievementPolicy unlocks tiers at 1, 5, 10 and 25 completed
// tasks, each paying 5 ZOO.
func DefaultAchievementPolicy() AchievementPolicy {
	return AchievementPolicy{Targets: []int{1, 5, 10, 25}, RewardAmount: 5, RewardToken: models.TokenZOO}
}

// TaskEngine grants the one-shot reward for completing a catalog task
// and unlocks task-count achievements as side effects.
type TaskEngine struct {
	store        store.Store
	achievements AchievementPolicy
	locks        *userLocks
}

// NewTaskEngine builds an engine on top of the given store.
func NewTaskEngine(s store.Store, achievements AchievementPolicy) *TaskEngine {
	return &TaskEngine{store: s, achievements: achievements, locks: newUserLocks()}
}

// Complete rewards the user for the task at most once. The store
// enforces the (user, task) uniqueness inside its atomic apply;
// failures are terminal, never retried.
func (e *TaskEngine) Complete(userID, taskID string) (*models.TaskCompletion, error) {
	task, err := e.store.Task(taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	completion, err := e.store.ApplyTaskCompletion(userID, *task, "Task completed: "+task.Title)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed unlock must not undo an applied reward.
	if err := e.grantMilestones(userID); err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("achievement grant failed for user %s: %v", userID, err)
	}

	return completion, nil
}

// grantMilestones unlocks every achievement tier whose target the
// user's completed-task count has reached.
func (e *TaskEngine) grantMilestones(userID string) error {
	profile, err := e.store.Profile(userID)
	if err != nil {
		return err
	}
	for i, target := range e.achievements.Targets {
		if profile.TotalTasksCompleted < target {
			break
		}
		nextTarget := 0
		if i+1 < len(e.achievements.Targets) {
			nextTarget = e.achievements.Targets[i+1]
		}
		achievement := &models.Achievement{
			UserID:     userID,
			Type:       models.AchievementTaskMaster,
			Level:      i + 1,
			Progress:   profile.TotalTasksCompleted,
			NextTarget: nextTarget,
		}
		description := fmt.Sprintf("Achievement unlocked: %d tasks completed", target)
		if err := e.store.ApplyAchievement(achievement, e.achievements.RewardAmount, e.achievements.RewardToken, description); err != nil {
			return err
		}
	}
	return nil
}
