package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/utils"
)

// ReferralController lists referrals credited to the caller. Pairings
// themselves are created during registration.
type ReferralController struct {
	engine *rewards.ReferralEngine
}

// NewReferralController creates a ReferralController.
func NewReferralController(engine *rewards.ReferralEngine) *ReferralController {
	return &ReferralController{engine: engine}
}

// List returns the referrals where the caller is the referrer.
func (r *ReferralController) List(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	referrals, err := r.engine.List(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list referrals")
		return
	}
	utils.Success(ctx, referrals)
}
