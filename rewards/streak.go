package rewards

import (
	"time"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
)

// StreakPolicy is the payout schedule for daily claims.
type StreakPolicy struct {
	DailyAmount     float64
	MilestoneAmount float64
	Token           string
}

// DefaultStreakPolicy pays 1 KAIA per day and 3 KAIA on the milestone
// day of the 7-day cycle.
func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{DailyAmount: 1, MilestoneAmount: 3, Token: models.TokenKAIA}
}

// ClaimResult is returned from a successful daily claim.
type ClaimResult struct {
	StreakDays   int     `json:"streak_days"`
	CurrentDay   int     `json:"current_day"`
	RewardAmount float64 `json:"reward_amount"`
	RewardToken  string  `json:"reward_token"`
}

// DayStatus marks one position of the 7-day cycle as completed or not.
type DayStatus struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
}

// StreakView is the read-only projection of a user's streak.
type StreakView struct {
	StreakDays    int            `json:"streak_days"`
	CurrentDay    int            `json:"current_day"`
	LastClaimedAt *time.Time     `json:"last_claimed_at"`
	DaysCompleted models.DayList `json:"days_completed"`
	Days          []DayStatus    `json:"days"`
	ClaimedToday  bool           `json:"claimed_today"`
}

// StreakEngine decides daily-claim eligibility and payout. It is pure
// decision logic over the stored streak record; the store applies the
// resulting mutation atomically.
type StreakEngine struct {
	store  store.Store
	policy StreakPolicy
	locks  *userLocks
}

// NewStreakEngine builds an engine on top of the given store.
func NewStreakEngine(s store.Store, policy StreakPolicy) *StreakEngine {
	return &StreakEngine{store: s, policy: policy, locks: newUserLocks()}
}

// ClaimDaily performs one claim attempt at the given instant. The
// clock is read once by the caller and passed through so the decision
// is deterministic. The whole read-decide-apply sequence holds the
// user's lock, making a same-day retry fail with ErrAlreadyClaimed
// instead of double-rewarding.
func (e *StreakEngine) ClaimDaily(userID string, now time.Time) (*ClaimResult, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	current, err := e.store.EnsureStreak(userID)
	if err != nil {
		return nil, err
	}

	// "Already claimed today" is calendar-date equality, not a rolling
	// 24-hour window: claiming at 23:59 and again at 00:01 is allowed.
	if current.LastClaimedAt != nil && sameCalendarDay(*current.LastClaimedAt, now) {
		return nil, ErrAlreadyClaimed
	}

	next := *current
	next.DaysCompleted = append(models.DayList{}, current.DaysCompleted...)

	if current.LastClaimedAt != nil {
		// A gap of exactly one day continues the streak; anything
		// longer breaks it.
		if daysSince := int(now.Sub(*current.LastClaimedAt) / (24 * time.Hour)); daysSince > 1 {
			next.StreakDays = 0
			next.CurrentDay = 0
			next.DaysCompleted = models.DayList{}
		}
	}

	next.StreakDays++
	next.CurrentDay = (next.CurrentDay + 1) % 7
	if !next.DaysCompleted.Contains(next.CurrentDay) {
		next.DaysCompleted = append(next.DaysCompleted, next.CurrentDay)
	}

	amount := e.policy.DailyAmount
	if next.CurrentDay == 6 {
		amount = e.policy.MilestoneAmount
	}

	claimedAt := now
	next.LastClaimedAt = &claimedAt

	if err := e.store.ApplyStreakClaim(userID, next, amount, e.policy.Token, "Daily login reward"); err != nil {
		return nil, err
	}

	return &ClaimResult{
		StreakDays:   next.StreakDays,
		CurrentDay:   next.CurrentDay,
		RewardAmount: amount,
		RewardToken:  e.policy.Token,
	}, nil
}

// View returns the stored streak with the derived 7-day sequence and
// the claimed-today flag. Read-only.
func (e *StreakEngine) View(userID string, now time.Time) (*StreakView, error) {
	streak, err := e.store.Streak(userID)
	if err != nil {
		return nil, err
	}

	// Slot N is labelled day N+1 but tracks cycle value N: the first
	// claim stores value 1 and shows up on day 2, the milestone value 6
	// on day 7.
	days := make([]DayStatus, 7)
	for i := 0; i < 7; i++ {
		days[i] = DayStatus{Day: i + 1, Completed: streak.DaysCompleted.Contains(i)}
	}

	return &StreakView{
		StreakDays:    streak.StreakDays,
		CurrentDay:    streak.CurrentDay,
		LastClaimedAt: streak.LastClaimedAt,
		DaysCompleted: streak.DaysCompleted,
		Days:          days,
		ClaimedToday:  streak.LastClaimedAt != nil && sameCalendarDay(*streak.LastClaimedAt, now),
	}, nil
}

// Transactions returns the user's ledger entries, newest first.
func (e *StreakEngine) Transactions(userID string) ([]models.Transaction, error) {
	return e.store.Transactions(userID)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
