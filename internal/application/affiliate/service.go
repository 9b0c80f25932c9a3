package affiliate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/token"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// Default terms applied on approval when the admin doesn't override them.
const (
	DefaultCommissionRate   = 15.0
	DefaultCheckoutDiscount = 10.0
)

// Service runs the affiliate onboarding workflow: application intake, admin
// approval with credential provisioning, and status changes.
type Service interface {
	SubmitApplication(ctx context.Context, req domain.AffiliateApplicationRequest) (*domain.Affiliate, error)
	Approve(ctx context.Context, req domain.ApproveAffiliateRequest) (*domain.Affiliate, error)
	Deny(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	Suspend(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	Get(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	GetByCode(ctx context.Context, code string) (*domain.Affiliate, error)
	RecordClick(ctx context.Context, code string) error
	RecordConversion(ctx context.Context, code string, orderTotal float64) error
}

type affiliateStore interface {
	Put(ctx context.Context, a *domain.Affiliate) error
	Get(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	GetByEmail(ctx context.Context, email string) (*domain.Affiliate, error)
	GetByCode(ctx context.Context, code string) (*domain.Affiliate, error)
	Update(ctx context.Context, affiliateID string, updates map[string]interface{}) error
}

type credentialStore interface {
	Put(ctx context.Context, c *domain.Credential) error
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Update(ctx context.Context, credentialID string, updates map[string]interface{}) error
}

type emailer interface {
	Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error)
	SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult
}

type service struct {
	affiliates  affiliateStore
	credentials credentialStore
	emails      emailer
	cfg         *config.Config
	logger      *zap.Logger
}

func NewService(affiliates affiliateStore, credentials credentialStore, emails emailer, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		affiliates:  affiliates,
		credentials: credentials,
		emails:      emails,
		cfg:         cfg,
		logger:      logger,
	}
}

// SubmitApplication records a pending affiliate and notifies the applicant and
// the admin list. Duplicate applications by email are rejected.
func (s *service) SubmitApplication(ctx context.Context, req domain.AffiliateApplicationRequest) (*domain.Affiliate, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	if _, err := s.affiliates.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("affiliate application for %s: %w", req.Email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	lang := req.PreferredLang
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	now := time.Now().UTC()
	aff := &domain.Affiliate{
		AffiliateID:   id.New(),
		Email:         req.Email,
		Name:          req.Name,
		Status:        domain.AffiliatePending,
		PreferredLang: lang,
		Website:       req.Website,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.affiliates.Put(ctx, aff); err != nil {
		return nil, err
	}

	app := &domain.ApplicationPayload{
		ApplicantName: req.Name,
		Message:       req.Message,
		AppliedAt:     now,
	}
	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailAffiliateAppReceived,
		CustomerInfo: domain.CustomerInfo{Email: req.Email, Name: req.Name},
		Language:     lang,
		Application:  app,
	}); err != nil || !res.Success {
		s.logger.Warn("affiliate application confirmation not sent", zap.String("email", req.Email), zap.Error(err))
	}
	if len(s.cfg.AdminEmails) > 0 {
		s.emails.SendToMany(ctx, domain.EmailContext{
			EmailType:    domain.EmailAffiliateAppAdmin,
			CustomerInfo: domain.CustomerInfo{Name: req.Name, Email: req.Email},
			AdminEmail:   true,
			Application:  app,
		}, s.cfg.AdminEmails)
	}

	return aff, nil
}

// Approve activates a pending affiliate: assigns a referral code, provisions
// a credential (or resets the password on an existing one), and emails login
// details followed by the welcome mail. Email failures are logged, not fatal.
func (s *service) Approve(ctx context.Context, req domain.ApproveAffiliateRequest) (*domain.Affiliate, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	aff, err := s.affiliates.Get(ctx, req.AffiliateID)
	if err != nil {
		return nil, err
	}
	if aff.Status == domain.AffiliateActive {
		return nil, fmt.Errorf("affiliate %s already active: %w", aff.AffiliateID, domain.ErrConflict)
	}

	commission := req.CommissionRate
	if commission == 0 {
		commission = DefaultCommissionRate
	}
	discount := req.CheckoutDiscount
	if discount == 0 {
		discount = DefaultCheckoutDiscount
	}

	code := aff.Code
	if code == "" {
		code, err = generateCode(aff.Name)
		if err != nil {
			return nil, err
		}
	}

	password, err := token.NewPassword(12)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	credentialID, err := s.provisionCredential(ctx, aff.Email, password)
	if err != nil {
		return nil, err
	}

	if err := s.affiliates.Update(ctx, aff.AffiliateID, map[string]interface{}{
		"status":            domain.AffiliateActive,
		"affiliate_code":    code,
		"commission_rate":   commission,
		"checkout_discount": discount,
		"credential_id":     credentialID,
	}); err != nil {
		return nil, err
	}
	aff.Status = domain.AffiliateActive
	aff.Code = code
	aff.CommissionRate = commission
	aff.CheckoutDiscount = discount
	aff.CredentialID = credentialID

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailLoginCredentials,
		CustomerInfo: domain.CustomerInfo{Email: aff.Email, Name: aff.Name},
		Language:     aff.PreferredLang,
		Credentials: &domain.CredentialsPayload{
			Email:             aff.Email,
			TemporaryPassword: password,
			LoginURL:          s.cfg.PortalBaseURL,
		},
	}); err != nil || !res.Success {
		s.logger.Warn("affiliate credentials email not sent", zap.String("email", aff.Email), zap.Error(err))
	}

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailAffiliateWelcome,
		CustomerInfo: domain.CustomerInfo{Email: aff.Email, Name: aff.Name},
		Language:     aff.PreferredLang,
		Affiliate: &domain.AffiliatePayload{
			Name:             aff.Name,
			Code:             aff.Code,
			CommissionRate:   aff.CommissionRate,
			CheckoutDiscount: aff.CheckoutDiscount,
		},
	}); err != nil || !res.Success {
		s.logger.Warn("affiliate welcome email not sent", zap.String("email", aff.Email), zap.Error(err))
	}

	s.logger.Info("affiliate approved",
		zap.String("affiliate_id", aff.AffiliateID),
		zap.String("code", aff.Code))
	return aff, nil
}

// provisionCredential creates the affiliate's login, or resets the password on
// an existing credential for the same address.
func (s *service) provisionCredential(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.credentials.GetByEmail(ctx, email)
	if err == nil {
		if err := s.credentials.Update(ctx, existing.CredentialID, map[string]interface{}{
			"password_hash": string(hash),
			"disabled":      false,
		}); err != nil {
			return "", err
		}
		return existing.CredentialID, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return "", err
	}

	now := time.Now().UTC()
	cred := &domain.Credential{
		CredentialID: id.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.credentials.Put(ctx, cred); err != nil {
		return "", err
	}
	return cred.CredentialID, nil
}

func (s *service) Deny(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	return s.setStatus(ctx, affiliateID, domain.AffiliateDenied)
}

func (s *service) Suspend(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	return s.setStatus(ctx, affiliateID, domain.AffiliateSuspended)
}

func (s *service) setStatus(ctx context.Context, affiliateID, status string) (*domain.Affiliate, error) {
	aff, err := s.affiliates.Get(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	if err := s.affiliates.Update(ctx, affiliateID, map[string]interface{}{
		"status": status,
	}); err != nil {
		return nil, err
	}
	aff.Status = status
	return aff, nil
}

func (s *service) Get(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	return s.affiliates.Get(ctx, affiliateID)
}

func (s *service) GetByCode(ctx context.Context, code string) (*domain.Affiliate, error) {
	return s.affiliates.GetByCode(ctx, code)
}

// RecordClick bumps the click counter for a referral code. Unknown or
// inactive codes are ignored silently, tracking must not leak code validity.
func (s *service) RecordClick(ctx context.Context, code string) error {
	aff, err := s.affiliates.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if aff.Status != domain.AffiliateActive {
		return nil
	}
	return s.affiliates.Update(ctx, aff.AffiliateID, map[string]interface{}{
		"stats": domain.AffiliateStats{
			Clicks:        aff.Stats.Clicks + 1,
			Conversions:   aff.Stats.Conversions,
			TotalEarnings: aff.Stats.TotalEarnings,
		},
	})
}

// RecordConversion credits an order placed with a referral code: bumps the
// conversion count and adds the commission share of the order total. Unknown
// or inactive codes are ignored, same as clicks.
func (s *service) RecordConversion(ctx context.Context, code string, orderTotal float64) error {
	aff, err := s.affiliates.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if aff.Status != domain.AffiliateActive {
		return nil
	}
	earned := orderTotal * aff.CommissionRate / 100
	return s.affiliates.Update(ctx, aff.AffiliateID, map[string]interface{}{
		"stats": domain.AffiliateStats{
			Clicks:        aff.Stats.Clicks,
			Conversions:   aff.Stats.Conversions + 1,
			TotalEarnings: aff.Stats.TotalEarnings + earned,
		},
	})
}

// generateCode derives a referral code from the affiliate's first name plus a
// short random suffix, e.g. "ANNA-X7K2".
func generateCode(name string) (string, error) {
	first := strings.Fields(name)
	base := "B8S"
	if len(first) > 0 {
		base = sanitizeCodePart(first[0])
	}
	suffix, err := token.NewPassword(4)
	if err != nil {
		return "", fmt.Errorf("generate code suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s", strings.ToUpper(base), strings.ToUpper(suffix)), nil
}

func sanitizeCodePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "B8S"
	}
	return b.String()
}
