package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/google"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/token"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

// Service opens and closes login sessions. Password and Google sign-in both
// resolve to the same credential + session model.
type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*TokenPair, error)
	LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req domain.RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, sessionID string) error
}

type credentialStore interface {
	Get(ctx context.Context, credentialID string) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Update(ctx context.Context, credentialID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type tokenSigner interface {
	Sign(credentialID, email, role, sessionID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	credentials credentialStore
	sessions    sessionStore
	signer      tokenSigner
	google      googleVerifier
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(credentials credentialStore, sessions sessionStore, signer tokenSigner, googleVerifier googleVerifier, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		credentials: credentials,
		sessions:    sessions,
		signer:      signer,
		google:      googleVerifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Login checks the password and opens a session. Wrong password and unknown
// address both come back as ErrUnauthorized, indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*TokenPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	cred, err := s.credentials.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if cred.Disabled {
		return nil, fmt.Errorf("login: account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
	}

	return s.openSession(ctx, cred)
}

// LoginWithGoogle verifies a Google ID token and opens a session for the
// matching credential. Only existing accounts can sign in this way; the
// Google subject is pinned on first use.
func (s *service) LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*TokenPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	if s.cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("google login disabled: %w", domain.ErrForbidden)
	}

	payload, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("google login: unverified email: %w", domain.ErrUnauthorized)
	}

	cred, err := s.credentials.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("google login: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if cred.Disabled {
		return nil, fmt.Errorf("google login: account disabled: %w", domain.ErrForbidden)
	}

	switch cred.GoogleSub {
	case "":
		if err := s.credentials.Update(ctx, cred.CredentialID, map[string]interface{}{
			"google_sub": payload.Sub,
		}); err != nil {
			return nil, err
		}
	case payload.Sub:
	default:
		return nil, fmt.Errorf("google login: subject mismatch: %w", domain.ErrUnauthorized)
	}

	return s.openSession(ctx, cred)
}

// Refresh rotates the refresh token and issues a new access token. Disabled
// sessions and expired refresh tokens fail with ErrUnauthorized.
func (s *service) Refresh(ctx context.Context, req domain.RefreshRequest) (*TokenPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	sess, err := s.sessions.GetByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if s.now().Unix() > sess.RefreshExpiresAt {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}

	cred, err := s.credentials.Get(ctx, sess.CredentialID)
	if err != nil {
		return nil, err
	}
	if cred.Disabled {
		return nil, fmt.Errorf("refresh: account disabled: %w", domain.ErrForbidden)
	}

	newToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := s.now().Add(s.cfg.RefreshTokenDur).Unix()
	if err := s.sessions.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(cred.CredentialID, cred.Email, cred.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: newToken, Role: cred.Role}, nil
}

// Logout disables the session so its refresh token stops working. The access
// token dies at its natural expiry.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"enable": false,
	})
}

func (s *service) openSession(ctx context.Context, cred *domain.Credential) (*TokenPair, error) {
	refresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		CredentialID:     cred.CredentialID,
		Enable:           true,
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.cfg.RefreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(cred.CredentialID, cred.Email, cred.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session opened",
		zap.String("credential_id", cred.CredentialID),
		zap.String("session_id", sess.SessionID),
		zap.String("role", cred.Role))
	return &TokenPair{AccessToken: access, RefreshToken: refresh, Role: cred.Role}, nil
}
