package store

import "github.com/kaiazoo/zooquest/models"

// defaultTasks mirrors the task catalog the platform ships with. Task
// editing is an operator concern handled outside this service.
var defaultTasks = []models.Task{
	{
		Title:        "Follow ZooQuest on X",
		Description:  "Follow the official ZooQuest account to stay up to date.",
		RewardAmount: 5,
		RewardToken:  models.TokenZOO,
		TaskType:     "social",
		RedirectURL:  "https://x.com/zooquest",
	},
	{
		Title:        "Join the Telegram community",
		Description:  "Join the ZooQuest announcement channel.",
		RewardAmount: 5,
		RewardToken:  models.TokenZOO,
		TaskType:     "social",
		RedirectURL:  "https://t.me/zooquest",
	},
	{
		Title:        "Complete your profile",
		Description:  "Set a display name and avatar on your profile page.",
		RewardAmount: 1,
		RewardToken:  models.TokenKAIA,
		TaskType:     "onboarding",
	},
	{
		Title:        "Invite a friend",
		Description:  "Share your referral code and have a friend register with it.",
		RewardAmount: 10,
		RewardToken:  models.TokenZOO,
		TaskType:     "referral",
	},
}

// SeedTasks inserts the default task catalog when the store has none.
func SeedTasks(s Store) error {
	existing, err := s.Tasks()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := range defaultTasks {
		task := defaultTasks[i]
		if err := s.CreateTask(&task); err != nil {
			return err
		}
	}
	return nil
}
