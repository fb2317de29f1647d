package security

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTPPeriodSeconds is the validity window for verification codes.
const OTPPeriodSeconds = 60

var otpOpts = totp.ValidateOpts{
	Period:    OTPPeriodSeconds,
	Skew:      0,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewOTPSecret generates a fresh TOTP secret for a pending registration.
func NewOTPSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "amart",
		AccountName: email,
		Period:      OTPPeriodSeconds,
	})
	if err != nil {
		return "", fmt.Errorf("generating otp secret: %w", err)
	}
	return key.Secret(), nil
}

// GenerateOTP produces the 6-digit code for the secret at the given time.
func GenerateOTP(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at, otpOpts)
	if err != nil {
		return "", fmt.Errorf("generating otp code: %w", err)
	}
	return code, nil
}

// ValidateOTP reports whether the code matches the secret's current window.
// Zero skew: a code from the previous window is already expired.
func ValidateOTP(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, otpOpts)
	return err == nil && ok
}
