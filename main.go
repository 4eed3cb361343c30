package main

import (
	"github.com/kaiazoo/zooquest/config"
	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/routes"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Without a configured database driver the service runs on the
	// in-memory store, which is enough for local development.
	var s store.Store
	if cfg.DBDriver != "" {
		db := config.InitDatabase(
			&models.User{},
			&models.Profile{},
			&models.LoginStreak{},
			&models.Transaction{},
			&models.Task{},
			&models.TaskCompletion{},
			&models.Referral{},
			&models.Achievement{},
		)
		s = store.NewGorm(db)
	} else {
		utils.Sugar.Warn("no database driver configured, using in-memory store")
		s = store.NewMemory()
	}

	if err := store.SeedTasks(s); err != nil {
		utils.Sugar.Fatalf("failed to seed task catalog: %v", err)
	}

	engines := routes.Engines{
		Streak: rewards.NewStreakEngine(s, rewards.StreakPolicy{
			DailyAmount:     cfg.DailyRewardAmount,
			MilestoneAmount: cfg.MilestoneRewardAmount,
			Token:           cfg.StreakRewardToken,
		}),
		Tasks: rewards.NewTaskEngine(s, rewards.AchievementPolicy{
			Targets:      cfg.AchievementTargets,
			RewardAmount: cfg.AchievementRewardAmount,
			RewardToken:  cfg.AchievementRewardToken,
		}),
		Referrals: rewards.NewReferralEngine(s, rewards.ReferralPolicy{
			RewardAmount: cfg.ReferralRewardAmount,
			RewardToken:  cfg.ReferralRewardToken,
		}),
	}

	r := routes.SetupRouter(s, engines)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
