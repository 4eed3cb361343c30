package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaiazoo/zooquest/models"
)

// Memory is the in-memory Store used when no database is configured
// and by the test suites. A fresh instance per process (or per test)
// replaces the process-wide mutable object the platform started out
// with. One mutex guards all maps; the compound Apply* operations run
// entirely under it, which makes them all-or-nothing.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	emailIndex   map[string]string
	profiles     map[string]*models.Profile
	codeIndex    map[string]string
	streaks      map[string]*models.LoginStreak
	tasks        map[string]*models.Task
	taskOrder    []string
	completions  map[string]map[string]*models.TaskCompletion
	transactions map[string][]models.Transaction
	referrals    map[string][]models.Referral
	refereeIndex map[string]string
	achievements map[string][]models.Achievement
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        map[string]*models.User{},
		emailIndex:   map[string]string{},
		profiles:     map[string]*models.Profile{},
		codeIndex:    map[string]string{},
		streaks:      map[string]*models.LoginStreak{},
		tasks:        map[string]*models.Task{},
		completions:  map[string]map[string]*models.TaskCompletion{},
		transactions: map[string][]models.Transaction{},
		referrals:    map[string][]models.Referral{},
		refereeIndex: map[string]string{},
		achievements: map[string][]models.Achievement{},
	}
}

func (m *Memory) CreateUser(user *models.User, profile *models.Profile, streak *models.LoginStreak) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, ok := m.emailIndex[email]; ok {
		return ErrEmailExists
	}
	// Matches the unique index the relational store puts on the code.
	if _, ok := m.codeIndex[profile.ReferralCode]; ok {
		return fmt.Errorf("referral code %s already in use", profile.ReferralCode)
	}

	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UserID = user.ID
	profile.CreatedAt, profile.UpdatedAt = now, now

	if streak.ID == "" {
		streak.ID = uuid.NewString()
	}
	streak.UserID = user.ID
	if streak.DaysCompleted == nil {
		streak.DaysCompleted = models.DayList{}
	}
	streak.CreatedAt, streak.UpdatedAt = now, now

	m.users[user.ID] = cloneUser(user)
	m.emailIndex[email] = user.ID
	m.profiles[user.ID] = cloneProfile(profile)
	m.codeIndex[profile.ReferralCode] = user.ID
	m.streaks[user.ID] = cloneStreak(streak)
	return nil
}

func (m *Memory) User(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *Memory) UserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emailIndex[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(m.users[id]), nil
}

func (m *Memory) Profile(userID string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneProfile(p)
	out.ReferralCount = int64(len(m.referrals[userID]))
	return out, nil
}

func (m *Memory) ProfileByReferralCode(code string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.codeIndex[code]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProfile(m.profiles[userID]), nil
}

func (m *Memory) UpdateProfile(userID string, displayName, avatarURL *string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}
	p.UpdatedAt = time.Now()
	return cloneProfile(p), nil
}

func (m *Memory) Streak(userID string) (*models.LoginStreak, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.streaks[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStreak(s), nil
}

func (m *Memory) EnsureStreak(userID string) (*models.LoginStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.streaks[userID]; ok {
		return cloneStreak(s), nil
	}
	if _, ok := m.users[userID]; !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	s := &models.LoginStreak{
		ID:            uuid.NewString(),
		UserID:        userID,
		DaysCompleted: models.DayList{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.streaks[userID] = s
	return cloneStreak(s), nil
}

func (m *Memory) ApplyStreakClaim(userID string, next models.LoginStreak, amount float64, token, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	s, ok := m.streaks[userID]
	if !ok {
		return ErrNotFound
	}

	next.ID = s.ID
	next.UserID = userID
	next.CreatedAt = s.CreatedAt
	next.UpdatedAt = time.Now()
	m.streaks[userID] = cloneStreak(&next)

	m.appendTransactionLocked(models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Token:       token,
		Type:        models.TxDailyReward,
		Description: description,
	})

	p.AddBalance(token, amount)
	p.LoginStreak = next.StreakDays
	p.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) Task(id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *Memory) Tasks() ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Task, 0, len(m.taskOrder))
	// Newest first, matching the relational store's created_at DESC.
	for i := len(m.taskOrder) - 1; i >= 0; i-- {
		out = append(out, *m.tasks[m.taskOrder[i]])
	}
	return out, nil
}

func (m *Memory) TasksWithStatus(userID string) ([]models.TaskWithStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	done := m.completions[userID]
	out := make([]models.TaskWithStatus, 0, len(m.taskOrder))
	for i := len(m.taskOrder) - 1; i >= 0; i-- {
		t := m.tasks[m.taskOrder[i]]
		_, completed := done[t.ID]
		out = append(out, models.TaskWithStatus{Task: *t, Completed: completed})
	}
	return out, nil
}

func (m *Memory) CreateTask(task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if _, ok := m.tasks[task.ID]; ok {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	t := *task
	m.tasks[t.ID] = &t
	m.taskOrder = append(m.taskOrder, t.ID)
	return nil
}

func (m *Memory) Completions(userID string) ([]models.TaskCompletion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.TaskCompletion, 0, len(m.completions[userID]))
	for _, c := range m.completions[userID] {
		out = append(out, *c)
	}
	return out, nil
}

func (m *Memory) ApplyTaskCompletion(userID string, task models.Task, description string) (*models.TaskCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, done := m.completions[userID][task.ID]; done {
		return nil, ErrAlreadyCompleted
	}

	completion := &models.TaskCompletion{
		ID:          uuid.NewString(),
		UserID:      userID,
		TaskID:      task.ID,
		CompletedAt: time.Now(),
	}
	if m.completions[userID] == nil {
		m.completions[userID] = map[string]*models.TaskCompletion{}
	}
	m.completions[userID][task.ID] = completion

	m.appendTransactionLocked(models.Transaction{
		UserID:      userID,
		Amount:      task.RewardAmount,
		Token:       task.RewardToken,
		Type:        models.TxTaskReward,
		ReferenceID: task.ID,
		Description: description,
	})

	p.AddBalance(task.RewardToken, task.RewardAmount)
	p.TotalTasksCompleted++
	p.UpdatedAt = time.Now()

	out := *completion
	return &out, nil
}

func (m *Memory) Transactions(userID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.transactions[userID]
	out := make([]models.Transaction, 0, len(log))
	// Append-only log reversed: newest first.
	for i := len(log) - 1; i >= 0; i-- {
		out = append(out, log[i])
	}
	return out, nil
}

func (m *Memory) ApplyReferral(referral *models.Referral, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.refereeIndex[referral.RefereeID]; ok {
		return ErrAlreadyReferred
	}
	p, ok := m.profiles[referral.ReferrerID]
	if !ok {
		return ErrNotFound
	}

	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = time.Now()
	}
	m.referrals[referral.ReferrerID] = append(m.referrals[referral.ReferrerID], *referral)
	m.refereeIndex[referral.RefereeID] = referral.ID

	m.appendTransactionLocked(models.Transaction{
		UserID:      referral.ReferrerID,
		Amount:      referral.RewardAmount,
		Token:       referral.RewardToken,
		Type:        models.TxReferralReward,
		ReferenceID: referral.ID,
		Description: description,
	})
	p.AddBalance(referral.RewardToken, referral.RewardAmount)
	p.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) Referrals(referrerID string) ([]models.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Referral, len(m.referrals[referrerID]))
	copy(out, m.referrals[referrerID])
	return out, nil
}

func (m *Memory) ApplyAchievement(achievement *models.Achievement, amount float64, token, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[achievement.UserID]
	if !ok {
		return ErrNotFound
	}
	for _, a := range m.achievements[achievement.UserID] {
		if a.Type == achievement.Type && a.Level == achievement.Level {
			return nil // already unlocked
		}
	}

	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	if achievement.UnlockedAt.IsZero() {
		achievement.UnlockedAt = time.Now()
	}
	m.achievements[achievement.UserID] = append(m.achievements[achievement.UserID], *achievement)

	if amount > 0 {
		m.appendTransactionLocked(models.Transaction{
			UserID:      achievement.UserID,
			Amount:      amount,
			Token:       token,
			Type:        models.TxAchievementReward,
			ReferenceID: achievement.ID,
			Description: description,
		})
		p.AddBalance(token, amount)
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (m *Memory) Achievements(userID string) ([]models.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Achievement, len(m.achievements[userID]))
	copy(out, m.achievements[userID])
	return out, nil
}

func (m *Memory) appendTransactionLocked(t models.Transaction) {
	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.transactions[t.UserID] = append(m.transactions[t.UserID], t)
}

func cloneUser(u *models.User) *models.User {
	out := *u
	return &out
}

func cloneProfile(p *models.Profile) *models.Profile {
	out := *p
	return &out
}

func cloneStreak(s *models.LoginStreak) *models.LoginStreak {
	out := *s
	out.DaysCompleted = append(models.DayList{}, s.DaysCompleted...)
	return &out
}
