package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

const tokenTTL = 72 * time.Hour

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	store     store.Store
	referrals *rewards.ReferralEngine
}

// NewAuthController creates an AuthController.
func NewAuthController(s store.Store, referrals *rewards.ReferralEngine) *AuthController {
	return &AuthController{store: s, referrals: referrals}
}

// Register creates a local account with bcrypt hashing. The profile and
// streak record are created in the same write, and an optional referral
// code credits the referrer.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6,max=72"`
		DisplayName  string `json:"display_name"`
		ReferralCode string `json:"referral_code"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := utils.Sanitize(strings.TrimSpace(req.DisplayName))
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}
	if l := len([]rune(displayName)); l > 64 {
		rs := []rune(displayName)
		displayName = string(rs[:64])
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	profile := models.Profile{
		DisplayName:  displayName,
		ReferralCode: utils.GenerateReferralCode(6),
	}
	streak := models.LoginStreak{}

	if err := a.store.CreateUser(&user, &profile, &streak); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	// The account exists either way; a bad code must not fail signup.
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		if _, err := a.referrals.Apply(user.ID, strings.ToUpper(code)); err != nil && utils.Sugar != nil {
			utils.Sugar.Infow("referral not credited", "user_id", user.ID, "error", err)
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.store.UserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the current authenticated user's account.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	user, err := a.store.User(userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, user)
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenTTL)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}
