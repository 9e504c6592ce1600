package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memUsers struct {
	users  map[int64]*User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int64]*User{}, nextID: 1}
}

func (m *memUsers) Create(ctx context.Context, u User) (int64, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return 0, ErrEmailTaken
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	m.users[u.ID] = &u
	return u.ID, nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

type capturedOTP struct {
	email, code string
}

type fakeDeliverer struct {
	sent []capturedOTP
}

func (f *fakeDeliverer) EnqueueOTP(ctx context.Context, email, code string) error {
	f.sent = append(f.sent, capturedOTP{email: email, code: code})
	return nil
}

func newTestService(t *testing.T) (*Service, *memUsers, *fakeDeliverer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenManager("test-secret", "meridian", time.Hour, rdb)
	repo := newMemUsers()
	deliverer := &fakeDeliverer{}
	svc := NewService(slog.Default(), repo, tokens, NewOTPStore(rdb), deliverer)
	return svc, repo, deliverer, mr
}

func seedUser(t *testing.T, repo *memUsers, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := repo.Create(context.Background(), User{
		CompanyID:    1,
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Status:       UserActive,
	})
	require.NoError(t, err)
	return repo.users[id]
}

func TestLoginAndVerify(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := svc.tokens.Verify(context.Background(), resp.Token)
	require.NoError(t, err)
	require.EqualValues(t, 1, claims.CompanyID)
	require.Equal(t, repo.users[1].ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "s3cretpass"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginDisabledUser(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	u := seedUser(t, repo, "user@example.com", "s3cretpass")
	u.Status = UserDisabled

	_, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "s3cretpass"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	claims, err := svc.tokens.Verify(context.Background(), resp.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), claims))

	_, err = svc.tokens.Verify(context.Background(), resp.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestOTPFlow(t *testing.T) {
	svc, repo, deliverer, _ := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	require.NoError(t, svc.RequestOTP(context.Background(), OTPRequest{Email: "user@example.com"}))
	require.Len(t, deliverer.sent, 1)
	require.Len(t, deliverer.sent[0].code, 6)

	resp, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{
		Email: "user@example.com",
		Code:  deliverer.sent[0].code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	// Single use.
	_, err = svc.VerifyOTP(context.Background(), OTPVerifyRequest{
		Email: "user@example.com",
		Code:  deliverer.sent[0].code,
	})
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPWrongCode(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	require.NoError(t, svc.RequestOTP(context.Background(), OTPRequest{Email: "user@example.com"}))
	_, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{Email: "user@example.com", Code: "000000"})
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPExpires(t *testing.T) {
	svc, repo, deliverer, mr := newTestService(t)
	seedUser(t, repo, "user@example.com", "s3cretpass")

	require.NoError(t, svc.RequestOTP(context.Background(), OTPRequest{Email: "user@example.com"}))
	mr.FastForward(6 * time.Minute)

	_, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{
		Email: "user@example.com",
		Code:  deliverer.sent[0].code,
	})
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPUnknownAddressIsSilent(t *testing.T) {
	svc, _, deliverer, _ := newTestService(t)
	require.NoError(t, svc.RequestOTP(context.Background(), OTPRequest{Email: "ghost@example.com"}))
	require.Empty(t, deliverer.sent)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	u, err := svc.Register(context.Background(), RegisterRequest{
		CompanyID: 1,
		Name:      "New User",
		Email:     "New@Example.com",
		Password:  "longenough",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)

	stored := repo.users[u.ID]
	require.NotEqual(t, "longenough", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")))
}
