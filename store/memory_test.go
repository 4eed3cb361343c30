package store

import (
	"errors"
	"testing"
	"time"

	"github.com/kaiazoo/zooquest/models"
)

func newTestUser(t *testing.T, m *Memory, email, code string) string {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", DisplayName: "Tester"}
	profile := models.Profile{DisplayName: "Tester", ReferralCode: code}
	streak := models.LoginStreak{}
	if err := m.CreateUser(&user, &profile, &streak); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return user.ID
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	newTestUser(t, m, "dup@example.com", "CODE1111")

	user := models.User{Email: "DUP@example.com", PasswordHash: "x"}
	profile := models.Profile{ReferralCode: "CODE2222"}
	streak := models.LoginStreak{}
	if err := m.CreateUser(&user, &profile, &streak); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("got error %v, want ErrEmailExists", err)
	}
}

func TestCreateUserDuplicateReferralCode(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	firstID := newTestUser(t, m, "first-code@example.com", "SAME1111")

	user := models.User{Email: "second-code@example.com", PasswordHash: "x"}
	profile := models.Profile{ReferralCode: "SAME1111"}
	streak := models.LoginStreak{}
	if err := m.CreateUser(&user, &profile, &streak); err == nil {
		t.Fatal("CreateUser() with taken referral code succeeded, want error")
	}

	// The first owner keeps the code and nothing of the second user
	// was written.
	owner, err := m.ProfileByReferralCode("SAME1111")
	if err != nil {
		t.Fatalf("ProfileByReferralCode() error: %v", err)
	}
	if owner.UserID != firstID {
		t.Errorf("code resolves to %q, want %q", owner.UserID, firstID)
	}
	if _, err := m.UserByEmail("second-code@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v for rejected user, want ErrNotFound", err)
	}
}

func TestCreateUserInitializesRecords(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "fresh@example.com", "CODE3333")

	profile, err := m.Profile(userID)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if profile.TotalKAIA != 0 || profile.TotalZOO != 0 || profile.TotalWBTC != 0 {
		t.Errorf("new profile has nonzero balances: %+v", profile)
	}
	if profile.ReferralCode != "CODE3333" {
		t.Errorf("got referral code %q, want CODE3333", profile.ReferralCode)
	}

	streak, err := m.Streak(userID)
	if err != nil {
		t.Fatalf("Streak() error: %v", err)
	}
	if streak.StreakDays != 0 || streak.LastClaimedAt != nil {
		t.Errorf("new streak not zero valued: %+v", streak)
	}
	if streak.DaysCompleted == nil || len(streak.DaysCompleted) != 0 {
		t.Errorf("got days completed %v, want empty list", streak.DaysCompleted)
	}
}

func TestUserByEmailNormalizes(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "Mixed@Example.com", "CODE4444")

	u, err := m.UserByEmail("mixed@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() error: %v", err)
	}
	if u.ID != userID {
		t.Errorf("got user %q, want %q", u.ID, userID)
	}
}

func TestEnsureStreakCreatesLazily(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "lazy@example.com", "CODE5555")

	// Simulate a user predating eager streak creation.
	m.mu.Lock()
	delete(m.streaks, userID)
	m.mu.Unlock()

	if _, err := m.Streak(userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
	s, err := m.EnsureStreak(userID)
	if err != nil {
		t.Fatalf("EnsureStreak() error: %v", err)
	}
	if s.StreakDays != 0 {
		t.Errorf("got streak days %d, want 0", s.StreakDays)
	}

	if _, err := m.EnsureStreak("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v for unknown user, want ErrNotFound", err)
	}
}

func TestApplyStreakClaimUpdatesAllRecords(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "claim@example.com", "CODE6666")

	claimedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	next := models.LoginStreak{
		StreakDays:    1,
		CurrentDay:    1,
		LastClaimedAt: &claimedAt,
		DaysCompleted: models.DayList{1},
	}
	if err := m.ApplyStreakClaim(userID, next, 1, models.TokenKAIA, "Daily login reward"); err != nil {
		t.Fatalf("ApplyStreakClaim() error: %v", err)
	}

	streak, _ := m.Streak(userID)
	if streak.StreakDays != 1 || streak.CurrentDay != 1 {
		t.Errorf("streak not updated: %+v", streak)
	}
	if streak.LastClaimedAt == nil || !streak.LastClaimedAt.Equal(claimedAt) {
		t.Errorf("got last claimed %v, want %v", streak.LastClaimedAt, claimedAt)
	}

	profile, _ := m.Profile(userID)
	if profile.TotalKAIA != 1 {
		t.Errorf("got KAIA balance %v, want 1", profile.TotalKAIA)
	}
	if profile.LoginStreak != 1 {
		t.Errorf("got profile login streak %d, want 1", profile.LoginStreak)
	}

	entries, _ := m.Transactions(userID)
	if len(entries) != 1 || entries[0].Type != models.TxDailyReward {
		t.Fatalf("got transactions %+v, want one daily reward", entries)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "ledger@example.com", "CODE7777")

	task := models.Task{Title: "First", RewardAmount: 1, RewardToken: models.TokenKAIA}
	if err := m.CreateTask(&task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	if _, err := m.ApplyTaskCompletion(userID, task, "Task completed: First"); err != nil {
		t.Fatalf("ApplyTaskCompletion() error: %v", err)
	}

	claimedAt := time.Now()
	next := models.LoginStreak{StreakDays: 1, CurrentDay: 1, LastClaimedAt: &claimedAt, DaysCompleted: models.DayList{1}}
	if err := m.ApplyStreakClaim(userID, next, 1, models.TokenKAIA, "Daily login reward"); err != nil {
		t.Fatalf("ApplyStreakClaim() error: %v", err)
	}

	entries, _ := m.Transactions(userID)
	if len(entries) != 2 {
		t.Fatalf("got %d transactions, want 2", len(entries))
	}
	if entries[0].Type != models.TxDailyReward || entries[1].Type != models.TxTaskReward {
		t.Errorf("transactions not newest first: %q then %q", entries[0].Type, entries[1].Type)
	}
}

func TestTasksWithStatus(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "status@example.com", "CODE8888")

	done := models.Task{Title: "Done", RewardAmount: 1, RewardToken: models.TokenZOO}
	open := models.Task{Title: "Open", RewardAmount: 1, RewardToken: models.TokenZOO}
	if err := m.CreateTask(&done); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	if err := m.CreateTask(&open); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	if _, err := m.ApplyTaskCompletion(userID, done, "Task completed: Done"); err != nil {
		t.Fatalf("ApplyTaskCompletion() error: %v", err)
	}

	tasks, err := m.TasksWithStatus(userID)
	if err != nil {
		t.Fatalf("TasksWithStatus() error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	byTitle := map[string]bool{}
	for _, task := range tasks {
		byTitle[task.Title] = task.Completed
	}
	if !byTitle["Done"] {
		t.Error("completed task not flagged")
	}
	if byTitle["Open"] {
		t.Error("open task flagged as completed")
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	userID := newTestUser(t, m, "edit@example.com", "CODE9999")

	name := "Zoo Keeper"
	profile, err := m.UpdateProfile(userID, &name, nil)
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if profile.DisplayName != "Zoo Keeper" {
		t.Errorf("got display name %q, want %q", profile.DisplayName, "Zoo Keeper")
	}
	if profile.AvatarURL != "" {
		t.Errorf("avatar changed unexpectedly: %q", profile.AvatarURL)
	}

	avatar := "https://cdn.example.com/a.png"
	profile, err = m.UpdateProfile(userID, nil, &avatar)
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if profile.DisplayName != "Zoo Keeper" {
		t.Errorf("display name lost on avatar update: %q", profile.DisplayName)
	}
	if profile.AvatarURL != avatar {
		t.Errorf("got avatar %q, want %q", profile.AvatarURL, avatar)
	}
}

func TestSeedTasksIdempotent(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	if err := SeedTasks(m); err != nil {
		t.Fatalf("SeedTasks() error: %v", err)
	}
	tasks, _ := m.Tasks()
	if len(tasks) == 0 {
		t.Fatal("seed produced no tasks")
	}
	count := len(tasks)

	if err := SeedTasks(m); err != nil {
		t.Fatalf("SeedTasks() second run error: %v", err)
	}
	tasks, _ = m.Tasks()
	if len(tasks) != count {
		t.Errorf("got %d tasks after reseed, want %d", len(tasks), count)
	}
}
