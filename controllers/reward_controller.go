package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

// RewardController serves the daily login streak and the transaction
// ledger.
type RewardController struct {
	engine *rewards.StreakEngine
}

// NewRewardController creates a RewardController.
func NewRewardController(engine *rewards.StreakEngine) *RewardController {
	return &RewardController{engine: engine}
}

// LoginStreak returns the caller's streak with the 7-day cycle view.
func (r *RewardController) LoginStreak(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	view, err := r.engine.View(userID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "streak not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to get login streak")
		return
	}
	utils.Success(ctx, view)
}

// ClaimDaily performs one daily-claim attempt. The clock is read once
// here so the engine's decision covers a single instant.
func (r *RewardController) ClaimDaily(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	result, err := r.engine.ClaimDaily(userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrAlreadyClaimed):
			utils.Error(ctx, http.StatusConflict, 40903, "daily reward already claimed")
		case errors.Is(err, store.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to claim daily reward")
		}
		return
	}

	utils.InvalidateByPrefix(profileCacheKey(userID))
	utils.Success(ctx, result)
}

// Transactions returns the caller's reward ledger, newest first.
func (r *RewardController) Transactions(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	entries, err := r.engine.Transactions(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list transactions")
		return
	}
	utils.Success(ctx, entries)
}
