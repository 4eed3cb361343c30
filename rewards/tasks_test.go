package rewards

import (
	"errors"
	"testing"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
)

func seedTask(t *testing.T, s store.Store, title string, amount float64, token string) string {
	t.Helper()
	task := models.Task{Title: title, RewardAmount: amount, RewardToken: token, TaskType: "social"}
	if err := s.CreateTask(&task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	return task.ID
}

func TestCompleteTaskOnce(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "tasks@example.com", "TASK1111")
	taskID := seedTask(t, s, "Follow on X", 5, models.TokenZOO)
	engine := NewTaskEngine(s, DefaultAchievementPolicy())

	completion, err := engine.Complete(userID, taskID)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if completion.TaskID != taskID {
		t.Errorf("got completion task %q, want %q", completion.TaskID, taskID)
	}

	profile, err := s.Profile(userID)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if profile.TotalTasksCompleted != 1 {
		t.Errorf("got %d tasks completed, want 1", profile.TotalTasksCompleted)
	}

	// Repeat attempt must not pay again.
	if _, err := engine.Complete(userID, taskID); !errors.Is(err, store.ErrAlreadyCompleted) {
		t.Fatalf("got error %v on repeat, want ErrAlreadyCompleted", err)
	}
	profile, _ = s.Profile(userID)
	if profile.TotalTasksCompleted != 1 {
		t.Errorf("got %d tasks completed after repeat, want 1", profile.TotalTasksCompleted)
	}
}

func TestCompleteTaskUnknown(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "nobody@example.com", "TASK2222")
	engine := NewTaskEngine(s, DefaultAchievementPolicy())

	if _, err := engine.Complete(userID, "no-such-task"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("got error %v, want ErrTaskNotFound", err)
	}
}

func TestCompleteTaskPaysAndUnlocksAchievement(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "achieve@example.com", "TASK3333")
	taskID := seedTask(t, s, "Join Telegram", 5, models.TokenZOO)
	engine := NewTaskEngine(s, DefaultAchievementPolicy())

	if _, err := engine.Complete(userID, taskID); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	// Task reward 5 ZOO plus the first-task achievement of 5 ZOO.
	profile, _ := s.Profile(userID)
	if profile.TotalZOO != 10 {
		t.Errorf("got ZOO balance %v, want 10", profile.TotalZOO)
	}

	achievements, err := s.Achievements(userID)
	if err != nil {
		t.Fatalf("Achievements() error: %v", err)
	}
	if len(achievements) != 1 {
		t.Fatalf("got %d achievements, want 1", len(achievements))
	}
	got := achievements[0]
	if got.Type != models.AchievementTaskMaster {
		t.Errorf("got achievement type %q, want %q", got.Type, models.AchievementTaskMaster)
	}
	if got.Level != 1 {
		t.Errorf("got achievement level %d, want 1", got.Level)
	}
	if got.NextTarget != 5 {
		t.Errorf("got next target %d, want 5", got.NextTarget)
	}

	entries, _ := s.Transactions(userID)
	if len(entries) != 2 {
		t.Fatalf("got %d transactions, want 2", len(entries))
	}
	// Newest first: achievement reward landed after the task reward.
	if entries[0].Type != models.TxAchievementReward {
		t.Errorf("got newest transaction type %q, want %q", entries[0].Type, models.TxAchievementReward)
	}
	if entries[1].Type != models.TxTaskReward {
		t.Errorf("got older transaction type %q, want %q", entries[1].Type, models.TxTaskReward)
	}
}

func TestAchievementTiersAccumulate(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "tiers@example.com", "TASK4444")
	engine := NewTaskEngine(s, AchievementPolicy{Targets: []int{1, 3}, RewardAmount: 2, RewardToken: models.TokenZOO})

	for i := 0; i < 3; i++ {
		taskID := seedTask(t, s, "Task", 1, models.TokenKAIA)
		if _, err := engine.Complete(userID, taskID); err != nil {
			t.Fatalf("Complete() #%d error: %v", i+1, err)
		}
	}

	achievements, _ := s.Achievements(userID)
	if len(achievements) != 2 {
		t.Fatalf("got %d achievements, want 2", len(achievements))
	}

	profile, _ := s.Profile(userID)
	if profile.TotalTasksCompleted != 3 {
		t.Errorf("got %d tasks completed, want 3", profile.TotalTasksCompleted)
	}
	// Two tiers at 2 ZOO each.
	if profile.TotalZOO != 4 {
		t.Errorf("got ZOO balance %v, want 4", profile.TotalZOO)
	}
	// Task rewards paid in KAIA stay separate.
	if profile.TotalKAIA != 3 {
		t.Errorf("got KAIA balance %v, want 3", profile.TotalKAIA)
	}
}
