package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/google"
)

type mockCredentialStore struct{ mock.Mock }

func (m *mockCredentialStore) Get(ctx context.Context, credentialID string) (*domain.Credential, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *mockCredentialStore) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *mockCredentialStore) Update(ctx context.Context, credentialID string, updates map[string]interface{}) error {
	return m.Called(ctx, credentialID, updates).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(credentialID, email, role, sessionID string) (string, error) {
	args := m.Called(credentialID, email, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) Verify(ctx context.Context, token string) (*google.Payload, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*google.Payload), args.Error(1)
}

type fixture struct {
	credentials *mockCredentialStore
	sessions    *mockSessionStore
	signer      *mockSigner
	google      *mockGoogle
	svc         *service
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		credentials: new(mockCredentialStore),
		sessions:    new(mockSessionStore),
		signer:      new(mockSigner),
		google:      new(mockGoogle),
	}
	cfg := &config.Config{RefreshTokenDur: 30 * 24 * time.Hour, GoogleClientID: "client-id"}
	f.svc = NewService(f.credentials, f.sessions, f.signer, f.google, cfg, zap.NewNop()).(*service)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.credentials.On("GetByEmail", ctx, "kund@example.com").Return(&domain.Credential{
		CredentialID: "cred-1",
		Email:        "kund@example.com",
		PasswordHash: hashed(t, "correct-password"),
		Role:         domain.RoleUser,
	}, nil)
	f.sessions.On("Put", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.CredentialID == "cred-1" && s.Enable && s.RefreshToken != ""
	})).Return(nil)
	f.signer.On("Sign", "cred-1", "kund@example.com", domain.RoleUser, mock.Anything).
		Return("signed.jwt", nil)

	pair, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "kund@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, domain.RoleUser, pair.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.credentials.On("GetByEmail", ctx, "kund@example.com").Return(&domain.Credential{
		CredentialID: "cred-1",
		PasswordHash: hashed(t, "correct-password"),
	}, nil)

	_, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "kund@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.credentials.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrUserNotFound)

	_, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.credentials.On("GetByEmail", ctx, "kund@example.com").Return(&domain.Credential{
		CredentialID: "cred-1",
		PasswordHash: hashed(t, "correct-password"),
		Disabled:     true,
	}, nil)

	_, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "kund@example.com",
		Password: "correct-password",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGoogleLoginPinsSubjectOnFirstUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.google.On("Verify", ctx, "google-token").Return(&google.Payload{
		Sub:           "sub-123",
		Email:         "admin@b8shield.com",
		EmailVerified: true,
	}, nil)
	f.credentials.On("GetByEmail", ctx, "admin@b8shield.com").Return(&domain.Credential{
		CredentialID: "cred-1",
		Email:        "admin@b8shield.com",
		Role:         domain.RoleAdmin,
	}, nil)
	f.credentials.On("Update", ctx, "cred-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["google_sub"] == "sub-123"
	})).Return(nil)
	f.sessions.On("Put", ctx, mock.Anything).Return(nil)
	f.signer.On("Sign", "cred-1", "admin@b8shield.com", domain.RoleAdmin, mock.Anything).
		Return("signed.jwt", nil)

	pair, err := f.svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "google-token"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, pair.Role)
	f.credentials.AssertExpectations(t)
}

func TestGoogleLoginRejectsSubjectMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.google.On("Verify", ctx, "google-token").Return(&google.Payload{
		Sub:           "sub-other",
		Email:         "admin@b8shield.com",
		EmailVerified: true,
	}, nil)
	f.credentials.On("GetByEmail", ctx, "admin@b8shield.com").Return(&domain.Credential{
		CredentialID: "cred-1",
		GoogleSub:    "sub-123",
	}, nil)

	_, err := f.svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "google-token"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGoogleLoginRejectsUnverifiedEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.google.On("Verify", ctx, "google-token").Return(&google.Payload{
		Sub:   "sub-123",
		Email: "admin@b8shield.com",
	}, nil)

	_, err := f.svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "google-token"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.credentials.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.sessions.On("GetByRefreshToken", ctx, "old-refresh").Return(&domain.Session{
		SessionID:        "sess-1",
		CredentialID:     "cred-1",
		Enable:           true,
		RefreshToken:     "old-refresh",
		RefreshExpiresAt: testNow.Add(time.Hour).Unix(),
	}, nil)
	f.credentials.On("Get", ctx, "cred-1").Return(&domain.Credential{
		CredentialID: "cred-1",
		Email:        "kund@example.com",
		Role:         domain.RoleUser,
	}, nil)
	f.sessions.On("RotateRefreshToken", ctx, "sess-1", mock.MatchedBy(func(tok string) bool {
		return tok != "" && tok != "old-refresh"
	}), testNow.Add(30*24*time.Hour).Unix()).Return(nil)
	f.signer.On("Sign", "cred-1", "kund@example.com", domain.RoleUser, "sess-1").
		Return("new.jwt", nil)

	pair, err := f.svc.Refresh(ctx, domain.RefreshRequest{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "new.jwt", pair.AccessToken)
	assert.NotEqual(t, "old-refresh", pair.RefreshToken)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.sessions.On("GetByRefreshToken", ctx, "old-refresh").Return(&domain.Session{
		SessionID:        "sess-1",
		CredentialID:     "cred-1",
		Enable:           true,
		RefreshExpiresAt: testNow.Add(-time.Minute).Unix(),
	}, nil)

	_, err := f.svc.Refresh(ctx, domain.RefreshRequest{RefreshToken: "old-refresh"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.sessions.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutDisablesSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.sessions.On("Update", ctx, "sess-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["enable"] == false
	})).Return(nil)

	require.NoError(t, f.svc.Logout(ctx, "sess-1"))
	f.sessions.AssertExpectations(t)
}
