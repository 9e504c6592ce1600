package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPInvalid is returned when the code is wrong, expired or already used.
var ErrOTPInvalid = errors.New("otp invalid or expired")

const otpTTL = 5 * time.Minute

// OTPStore keeps one-time codes in redis. A code survives for five minutes
// and is consumed on first successful verification.
type OTPStore struct {
	rdb *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

// Generate creates a six-digit code for the address, replacing any
// outstanding one.
func (s *OTPStore) Generate(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Consume checks the code and deletes it so it cannot be replayed.
func (s *OTPStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("read otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPInvalid
	}
	return s.rdb.Del(ctx, otpKey(email)).Err()
}

func otpKey(email string) string {
	return "auth:otp:" + email
}
