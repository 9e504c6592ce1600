package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian/internal/shared"
)

// OTPDeliverer hands a generated code off for out-of-band delivery.
type OTPDeliverer interface {
	EnqueueOTP(ctx context.Context, email, code string) error
}

// Service implements registration and the two login flows, password and
// one-time code.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	tokens    *TokenManager
	otp       *OTPStore
	deliverer OTPDeliverer
}

func NewService(logger *slog.Logger, repo Repository, tokens *TokenManager, otp *OTPStore, deliverer OTPDeliverer) *Service {
	return &Service{logger: logger, repo: repo, tokens: tokens, otp: otp, deliverer: deliverer}
}

// Register creates an active user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, User{
		CompanyID:    req.CompanyID,
		BranchID:     req.BranchID,
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Status:       UserActive,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Login verifies the password and issues a bearer token. A missing user and
// a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Status != UserActive {
		return nil, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issue(u)
}

// RequestOTP generates a code and queues its delivery. Unknown addresses
// succeed silently so the endpoint cannot be used to probe for accounts.
func (s *Service) RequestOTP(ctx context.Context, req OTPRequest) error {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Status != UserActive {
		return nil
	}
	code, err := s.otp.Generate(ctx, u.Email)
	if err != nil {
		return err
	}
	if err := s.deliverer.EnqueueOTP(ctx, u.Email, code); err != nil {
		s.logger.Error("enqueue otp delivery failed", "error", err)
		return err
	}
	return nil
}

// VerifyOTP consumes the code and issues a bearer token.
func (s *Service) VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*TokenResponse, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	if u.Status != UserActive {
		return nil, ErrOTPInvalid
	}
	if err := s.otp.Consume(ctx, u.Email, req.Code); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

func (s *Service) issue(u *User) (*TokenResponse, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      u,
	}, nil
}
