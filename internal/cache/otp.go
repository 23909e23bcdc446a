package cache

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no OTP is stored for an email (never
// issued, expired, or already consumed).
var ErrOTPNotFound = errors.New("otp not found or expired")

// OTPStore keeps registration one-time passwords in Redis. The key TTL is
// the expiry: an expired OTP simply disappears.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates an OTPStore with the given code lifetime.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

// Issue generates a fresh 6-digit code for the email and stores it,
// replacing any previous code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store OTP for %s: %w", email, err)
	}
	return code, nil
}

// Verify checks the submitted code against the stored one and consumes it on
// success. A wrong code leaves the stored OTP in place for another attempt.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read OTP for %s: %w", email, err)
	}
	if stored != code {
		return ErrOTPNotFound
	}
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to consume OTP for %s: %w", email, err)
	}
	return nil
}
