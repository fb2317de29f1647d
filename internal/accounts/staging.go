package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// stagingTTL bounds how long an unverified registration may linger. It
// comfortably covers the OTP window plus the resend budget.
const stagingTTL = 15 * time.Minute

// pendingRegistration is the redis-staged signup awaiting OTP verification.
type pendingRegistration struct {
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	OTPSecret    string    `json:"otp_secret"`
	OTPExpiresAt time.Time `json:"otp_expires_at"`
	ResendCount  int       `json:"resend_count"`
}

type stagingStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SignupKey(email string) string
}

func saveStaging(ctx context.Context, store stagingStore, pending pendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal pending registration")
	}
	if err := store.Set(ctx, store.SignupKey(pending.Email), string(payload), stagingTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage registration")
	}
	return nil
}

func loadStaging(ctx context.Context, store stagingStore, email string) (*pendingRegistration, error) {
	raw, err := store.Get(ctx, store.SignupKey(email))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration session expired, please sign up again")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending registration")
	}
	var pending pendingRegistration
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unmarshal pending registration")
	}
	return &pending, nil
}

func clearStaging(ctx context.Context, store stagingStore, email string) error {
	return store.Del(ctx, store.SignupKey(email))
}
