package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/token"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

const codeDigits = 6

// Service runs the password reset and email verification flows. Codes are
// single-use: consumption checks expiry and the used flag, then burns the
// record before any state change it authorizes.
type Service interface {
	RequestPasswordReset(ctx context.Context, req domain.RequestPasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req domain.ConfirmPasswordResetRequest) error
	RequestEmailVerification(ctx context.Context, req domain.RequestEmailVerificationRequest) error
	ConfirmEmailVerification(ctx context.Context, req domain.ConfirmEmailVerificationRequest) error
}

type resetStore interface {
	Put(ctx context.Context, rec *domain.PasswordResetRecord) error
	GetByEmailAndCode(ctx context.Context, email, code string) (*domain.PasswordResetRecord, error)
	MarkUsed(ctx context.Context, resetID string) error
}

type verificationStore interface {
	Put(ctx context.Context, rec *domain.EmailVerificationRecord) error
	GetByEmailAndCode(ctx context.Context, email, code string) (*domain.EmailVerificationRecord, error)
	MarkVerified(ctx context.Context, verificationID string) error
}

type credentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Update(ctx context.Context, credentialID string, updates map[string]interface{}) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type b2cCustomerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.B2CCustomer, error)
	Update(ctx context.Context, customerID string, updates map[string]interface{}) error
}

type sessionStore interface {
	DisableByCredential(ctx context.Context, credentialID string) error
}

type emailer interface {
	Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	resets        resetStore
	verifications verificationStore
	credentials   credentialStore
	users         userStore
	customers     b2cCustomerStore
	sessions      sessionStore
	emails        emailer
	sms           smsSender
	cfg           *config.Config
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(resets resetStore, verifications verificationStore, credentials credentialStore, users userStore, customers b2cCustomerStore, sessions sessionStore, emails emailer, sms smsSender, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		resets:        resets,
		verifications: verifications,
		credentials:   credentials,
		users:         users,
		customers:     customers,
		sessions:      sessions,
		emails:        emails,
		sms:           sms,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// RequestPasswordReset issues a fresh code and mails it. Unknown addresses
// return success anyway so the endpoint can't be used to probe for accounts.
// B2B accounts with a phone on file also get the code by SMS.
func (s *service) RequestPasswordReset(ctx context.Context, req domain.RequestPasswordResetRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	if _, err := s.credentials.GetByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown address", zap.String("email", req.Email))
			return nil
		}
		return err
	}

	code, err := token.NewNumericCode(codeDigits)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(domain.ResetCodeTTL)
	rec := &domain.PasswordResetRecord{
		ResetID:   id.New(),
		Email:     req.Email,
		Code:      code,
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.resets.Put(ctx, rec); err != nil {
		return err
	}

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailPasswordReset,
		CustomerInfo: domain.CustomerInfo{Email: req.Email},
		Code: &domain.CodePayload{
			Code:      code,
			ExpiresAt: expiresAt,
		},
	}); err != nil {
		return err
	} else if !res.Success {
		return fmt.Errorf("password reset email: %s", res.Error)
	}

	s.sendCodeSMS(ctx, req.Email, code)
	return nil
}

// sendCodeSMS mirrors the reset code over SMS when the account has a phone
// number. Best-effort.
func (s *service) sendCodeSMS(ctx context.Context, email, code string) {
	if s.sms == nil {
		return
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user.Phone == nil || *user.Phone == "" {
		return
	}
	msg := fmt.Sprintf("B8Shield: din återställningskod är %s", code)
	if err := s.sms.SendSMS(ctx, *user.Phone, msg); err != nil {
		s.logger.Warn("reset code sms failed", zap.String("email", email), zap.Error(err))
	}
}

// ConfirmPasswordReset consumes a code and sets the new password. A code that
// is used, expired or unknown fails with ErrUnauthorized; the record is marked
// used before the password changes so a crash can't leave a replayable code.
func (s *service) ConfirmPasswordReset(ctx context.Context, req domain.ConfirmPasswordResetRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	rec, err := s.resets.GetByEmailAndCode(ctx, req.Email, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("password reset: %w", domain.ErrUnauthorized)
		}
		return err
	}
	if rec.Used {
		return fmt.Errorf("password reset code already used: %w", domain.ErrUnauthorized)
	}
	if s.now().Unix() > rec.ExpiresAt {
		return fmt.Errorf("password reset code expired: %w", domain.ErrUnauthorized)
	}

	if err := s.resets.MarkUsed(ctx, rec.ResetID); err != nil {
		return err
	}

	cred, err := s.credentials.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.credentials.Update(ctx, cred.CredentialID, map[string]interface{}{
		"password_hash": string(hash),
	}); err != nil {
		return err
	}

	// Existing sessions die with the old password.
	if err := s.sessions.DisableByCredential(ctx, cred.CredentialID); err != nil {
		s.logger.Warn("session disable after reset failed", zap.String("credential_id", cred.CredentialID), zap.Error(err))
	}

	s.logger.Info("password reset completed", zap.String("email", req.Email))
	return nil
}

// RequestEmailVerification issues a verification code for a shop account.
func (s *service) RequestEmailVerification(ctx context.Context, req domain.RequestEmailVerificationRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	code, err := token.NewNumericCode(codeDigits)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(domain.VerificationCodeTTL)
	rec := &domain.EmailVerificationRecord{
		VerificationID: id.New(),
		Email:          req.Email,
		Code:           code,
		ExpiresAt:      expiresAt.Unix(),
	}
	if err := s.verifications.Put(ctx, rec); err != nil {
		return err
	}

	res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailAddressVerification,
		CustomerInfo: domain.CustomerInfo{Email: req.Email},
		Code: &domain.CodePayload{
			Code:      code,
			ExpiresAt: expiresAt,
		},
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("verification email: %s", res.Error)
	}
	return nil
}

// ConfirmEmailVerification consumes a code and flips the customer's verified
// flag. Same single-use rules as password resets.
func (s *service) ConfirmEmailVerification(ctx context.Context, req domain.ConfirmEmailVerificationRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	rec, err := s.verifications.GetByEmailAndCode(ctx, req.Email, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("email verification: %w", domain.ErrUnauthorized)
		}
		return err
	}
	if rec.Verified {
		return fmt.Errorf("verification code already used: %w", domain.ErrUnauthorized)
	}
	if s.now().Unix() > rec.ExpiresAt {
		return fmt.Errorf("verification code expired: %w", domain.ErrUnauthorized)
	}

	if err := s.verifications.MarkVerified(ctx, rec.VerificationID); err != nil {
		return err
	}

	customer, err := s.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Verification can precede account creation in the shop signup flow.
			s.logger.Info("verified address without customer record", zap.String("email", req.Email))
			return nil
		}
		return err
	}
	if err := s.customers.Update(ctx, customer.CustomerID, map[string]interface{}{
		"email_verified": true,
	}); err != nil {
		return err
	}

	s.logger.Info("email address verified", zap.String("email", req.Email))
	return nil
}
