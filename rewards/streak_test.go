package rewards

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
)

// seedUser creates a user with profile and streak in a fresh memory
// store and returns its ID.
func seedUser(t *testing.T, s store.Store, email, code string) string {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", DisplayName: "Tester"}
	profile := models.Profile{DisplayName: "Tester", ReferralCode: code}
	streak := models.LoginStreak{}
	if err := s.CreateUser(&user, &profile, &streak); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return user.ID
}

func TestClaimDailyFirstClaim(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "first@example.com", "AAAA1111")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	result, err := engine.ClaimDaily(userID, base)
	if err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}
	if result.StreakDays != 1 {
		t.Errorf("got streak days %d, want 1", result.StreakDays)
	}
	if result.CurrentDay != 1 {
		t.Errorf("got current day %d, want 1", result.CurrentDay)
	}
	if result.RewardAmount != 1 {
		t.Errorf("got reward %v, want 1", result.RewardAmount)
	}
	if result.RewardToken != models.TokenKAIA {
		t.Errorf("got token %q, want %q", result.RewardToken, models.TokenKAIA)
	}

	profile, err := s.Profile(userID)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if profile.TotalKAIA != 1 {
		t.Errorf("got KAIA balance %v, want 1", profile.TotalKAIA)
	}
	if profile.LoginStreak != 1 {
		t.Errorf("got profile login streak %d, want 1", profile.LoginStreak)
	}

	entries, err := s.Transactions(userID)
	if err != nil {
		t.Fatalf("Transactions() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d transactions, want 1", len(entries))
	}
	if entries[0].Type != models.TxDailyReward {
		t.Errorf("got transaction type %q, want %q", entries[0].Type, models.TxDailyReward)
	}
}

func TestClaimDailySameDayRejected(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "twice@example.com", "BBBB2222")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	if _, err := engine.ClaimDaily(userID, base); err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}

	// Same calendar day, hours later.
	_, err := engine.ClaimDaily(userID, base.Add(20*time.Hour))
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("got error %v, want ErrAlreadyClaimed", err)
	}

	profile, _ := s.Profile(userID)
	if profile.TotalKAIA != 1 {
		t.Errorf("got KAIA balance %v after rejected claim, want 1", profile.TotalKAIA)
	}
}

func TestClaimDailyConsecutiveDays(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "streak@example.com", "CCCC3333")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := engine.ClaimDaily(userID, base); err != nil {
		t.Fatalf("ClaimDaily() day 1 error: %v", err)
	}
	result, err := engine.ClaimDaily(userID, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ClaimDaily() day 2 error: %v", err)
	}
	if result.StreakDays != 2 {
		t.Errorf("got streak days %d, want 2", result.StreakDays)
	}
	if result.CurrentDay != 2 {
		t.Errorf("got current day %d, want 2", result.CurrentDay)
	}
}

func TestClaimDailyGapResetsStreak(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "gap@example.com", "DDDD4444")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := engine.ClaimDaily(userID, base); err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}
	if _, err := engine.ClaimDaily(userID, base.Add(24*time.Hour)); err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}

	// Two full days of silence break the streak.
	result, err := engine.ClaimDaily(userID, base.Add(4*24*time.Hour))
	if err != nil {
		t.Fatalf("ClaimDaily() after gap error: %v", err)
	}
	if result.StreakDays != 1 {
		t.Errorf("got streak days %d after gap, want 1", result.StreakDays)
	}
	if result.CurrentDay != 1 {
		t.Errorf("got current day %d after gap, want 1", result.CurrentDay)
	}

	streak, err := s.Streak(userID)
	if err != nil {
		t.Fatalf("Streak() error: %v", err)
	}
	if len(streak.DaysCompleted) != 1 || streak.DaysCompleted[0] != 1 {
		t.Errorf("got days completed %v after gap, want [1]", streak.DaysCompleted)
	}
}

func TestClaimDailyMilestone(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "milestone@example.com", "EEEE5555")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var last *ClaimResult
	for day := 0; day < 6; day++ {
		result, err := engine.ClaimDaily(userID, base.Add(time.Duration(day)*24*time.Hour))
		if err != nil {
			t.Fatalf("ClaimDaily() day %d error: %v", day+1, err)
		}
		last = result
	}

	if last.CurrentDay != 6 {
		t.Fatalf("got current day %d on sixth claim, want 6", last.CurrentDay)
	}
	if last.RewardAmount != 3 {
		t.Errorf("got milestone reward %v, want 3", last.RewardAmount)
	}

	profile, _ := s.Profile(userID)
	if profile.TotalKAIA != 8 {
		t.Errorf("got KAIA balance %v after six claims, want 8", profile.TotalKAIA)
	}

	// The milestone value 6 shows on the last day slot.
	view, err := engine.View(userID, base.Add(5*24*time.Hour))
	if err != nil {
		t.Fatalf("View() error: %v", err)
	}
	if !view.Days[6].Completed {
		t.Error("day 7 not completed after milestone claim")
	}
}

func TestClaimDailyCycleWraps(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "wrap@example.com", "FFFF6666")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var last *ClaimResult
	for day := 0; day < 7; day++ {
		result, err := engine.ClaimDaily(userID, base.Add(time.Duration(day)*24*time.Hour))
		if err != nil {
			t.Fatalf("ClaimDaily() day %d error: %v", day+1, err)
		}
		last = result
	}

	if last.StreakDays != 7 {
		t.Errorf("got streak days %d, want 7", last.StreakDays)
	}
	if last.CurrentDay != 0 {
		t.Errorf("got current day %d after wrap, want 0", last.CurrentDay)
	}
	if last.RewardAmount != 1 {
		t.Errorf("got reward %v after wrap, want 1", last.RewardAmount)
	}
}

func TestClaimDailyConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "race@example.com", "GGGG7777")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	const attempts = 16

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = engine.ClaimDaily(userID, now)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("got %d successful claims, want exactly 1", wins)
	}

	profile, _ := s.Profile(userID)
	if profile.TotalKAIA != 1 {
		t.Errorf("got KAIA balance %v after concurrent claims, want 1", profile.TotalKAIA)
	}
}

func TestStreakView(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "view@example.com", "HHHH8888")
	engine := NewStreakEngine(s, DefaultStreakPolicy())

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := engine.ClaimDaily(userID, base); err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}

	// Day slot N tracks cycle value N-1, so the first claim (stored
	// value 1) lights up slot 2 and slot 1 stays open for the wrap
	// value 0.
	view, err := engine.View(userID, base)
	if err != nil {
		t.Fatalf("View() error: %v", err)
	}
	if len(view.Days) != 7 {
		t.Fatalf("got %d day slots, want 7", len(view.Days))
	}
	if view.Days[0].Completed {
		t.Error("day 1 completed after first claim, want open")
	}
	if !view.Days[1].Completed {
		t.Error("day 2 not completed after first claim")
	}

	if _, err := engine.ClaimDaily(userID, base.Add(24*time.Hour)); err != nil {
		t.Fatalf("ClaimDaily() error: %v", err)
	}

	view, err = engine.View(userID, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("View() error: %v", err)
	}
	if !view.ClaimedToday {
		t.Error("ClaimedToday = false, want true")
	}
	if !view.Days[1].Completed || !view.Days[2].Completed {
		t.Errorf("days 2 and 3 should be completed, got %+v", view.Days[1:3])
	}
	if view.Days[3].Completed {
		t.Error("day 4 should not be completed yet")
	}

	// Next calendar day, nothing claimed yet.
	view, err = engine.View(userID, base.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("View() error: %v", err)
	}
	if view.ClaimedToday {
		t.Error("ClaimedToday = true on the following day, want false")
	}
}
