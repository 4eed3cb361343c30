package rewards

import (
	"errors"
	"testing"

	"github.com/kaiazoo/zooquest/models"
	"github.com/kaiazoo/zooquest/store"
)

func TestReferralApply(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	referrerID := seedUser(t, s, "referrer@example.com", "REF11111")
	refereeID := seedUser(t, s, "referee@example.com", "REF22222")
	engine := NewReferralEngine(s, DefaultReferralPolicy())

	referral, err := engine.Apply(refereeID, "REF11111")
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if referral.ReferrerID != referrerID {
		t.Errorf("got referrer %q, want %q", referral.ReferrerID, referrerID)
	}
	if referral.RewardAmount != 10 || referral.RewardToken != models.TokenZOO {
		t.Errorf("got reward %v %s, want 10 ZOO", referral.RewardAmount, referral.RewardToken)
	}

	profile, err := s.Profile(referrerID)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if profile.TotalZOO != 10 {
		t.Errorf("got referrer ZOO balance %v, want 10", profile.TotalZOO)
	}
	if profile.ReferralCount != 1 {
		t.Errorf("got referral count %d, want 1", profile.ReferralCount)
	}

	// The referee earns nothing from being referred.
	refereeProfile, _ := s.Profile(refereeID)
	if refereeProfile.TotalZOO != 0 {
		t.Errorf("got referee ZOO balance %v, want 0", refereeProfile.TotalZOO)
	}

	list, err := engine.List(referrerID)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d referrals, want 1", len(list))
	}
}

func TestReferralUnknownCode(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	refereeID := seedUser(t, s, "lost@example.com", "REF33333")
	engine := NewReferralEngine(s, DefaultReferralPolicy())

	if _, err := engine.Apply(refereeID, "NOPE0000"); !errors.Is(err, ErrReferralCodeUnknown) {
		t.Fatalf("got error %v, want ErrReferralCodeUnknown", err)
	}
}

func TestReferralSelf(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	userID := seedUser(t, s, "self@example.com", "REF44444")
	engine := NewReferralEngine(s, DefaultReferralPolicy())

	if _, err := engine.Apply(userID, "REF44444"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("got error %v, want ErrSelfReferral", err)
	}
}

func TestReferralRefereeOnlyOnce(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	seedUser(t, s, "one@example.com", "REF55555")
	seedUser(t, s, "two@example.com", "REF66666")
	refereeID := seedUser(t, s, "three@example.com", "REF77777")
	engine := NewReferralEngine(s, DefaultReferralPolicy())

	if _, err := engine.Apply(refereeID, "REF55555"); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	// A second pairing, even through a different code, is rejected.
	if _, err := engine.Apply(refereeID, "REF66666"); !errors.Is(err, store.ErrAlreadyReferred) {
		t.Fatalf("got error %v, want ErrAlreadyReferred", err)
	}
}
