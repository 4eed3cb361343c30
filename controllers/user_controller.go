package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

// UserController exposes the reward profile endpoints.
type UserController struct {
	store store.Store
}

// NewUserController creates a UserController.
func NewUserController(s store.Store) *UserController {
	return &UserController{store: s}
}

func profileCacheKey(userID string) string {
	return "cache:profile:" + userID
}

// GetProfile returns the caller's reward profile including balances and
// the derived referral count.
func (u *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	if b, ok := utils.CacheGetBytes(profileCacheKey(userID)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	profile, err := u.store.Profile(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to get profile")
		return
	}

	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: profile}
	utils.CacheSetJSON(profileCacheKey(userID), wrapper, time.Minute)

	utils.Success(ctx, profile)
}

// UpdateProfile changes the mutable profile fields. Balances, counters
// and the referral code are never writable through this endpoint.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	if req.DisplayName != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.DisplayName))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "display name cannot be empty")
			return
		}
		if len([]rune(name)) > 64 {
			rs := []rune(name)
			name = string(rs[:64])
		}
		req.DisplayName = &name
	}
	if req.AvatarURL != nil {
		url := strings.TrimSpace(*req.AvatarURL)
		if len(url) > 512 {
			utils.Error(ctx, http.StatusBadRequest, 40032, "avatar url too long")
			return
		}
		req.AvatarURL = &url
	}

	profile, err := u.store.UpdateProfile(userID, req.DisplayName, req.AvatarURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix(profileCacheKey(userID))
	utils.Success(ctx, profile)
}
