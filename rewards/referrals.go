package rewards

import (
	"errors"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
)

// ReferralPolicy is the payout for a successful referral.
type ReferralPolicy struct {
	RewardAmount float64
	RewardToken  string
}

// DefaultReferralPolicy pays the referrer 10 ZOO per referred signup.
func DefaultReferralPolicy() ReferralPolicy {
	return ReferralPolicy{RewardAmount: 10, RewardToken: models.TokenZOO}
}

// ReferralEngine records referrer/referee pairings and pays the
// referrer. A referee can be referred only once, and never by
// themselves.
type ReferralEngine struct {
	store  store.Store
	policy ReferralPolicy
}

// NewReferralEngine builds an engine on top of the given store.
func NewReferralEngine(s store.Store, policy ReferralPolicy) *ReferralEngine {
	return &ReferralEngine{store: s, policy: policy}
}

// Apply resolves the referral code and atomically records the pairing
// plus the referrer's reward.
func (e *ReferralEngine) Apply(refereeID, code string) (*models.Referral, error) {
	referrer, err := e.store.ProfileByReferralCode(code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReferralCodeUnknown
		}
		return nil, err
	}
	if referrer.UserID == refereeID {
		return nil, ErrSelfReferral
	}

	referral := &models.Referral{
		ReferrerID:   referrer.UserID,
		RefereeID:    refereeID,
		RewardAmount: e.policy.RewardAmount,
		RewardToken:  e.policy.RewardToken,
	}
	if err := e.store.ApplyReferral(referral, "Referral reward"); err != nil {
		return nil, err
	}
	return referral, nil
}

// List returns the referrals credited to the user, newest first.
func (e *ReferralEngine) List(userID string) ([]models.Referral, error) {
	return e.store.Referrals(userID)
}
