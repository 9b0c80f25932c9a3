package customer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// DefaultMarginPercent is applied to new reseller accounts until an admin
// adjusts it.
const DefaultMarginPercent = 40

// Service manages B2B customer accounts: admin provisioning, application
// intake, activation toggling and full account deletion.
type Service interface {
	CreateAdminUser(ctx context.Context, req domain.CreateAdminUserRequest) (*domain.User, error)
	SubmitApplication(ctx context.Context, req domain.B2BApplicationRequest) (*domain.User, error)
	ToggleActiveStatus(ctx context.Context, idOrEmail string, active bool) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID string) (*domain.DeletionResult, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
}

type credentialStore interface {
	Put(ctx context.Context, c *domain.Credential) error
	Get(ctx context.Context, credentialID string) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Update(ctx context.Context, credentialID string, updates map[string]interface{}) error
	Delete(ctx context.Context, credentialID string) error
}

type sessionStore interface {
	DisableByCredential(ctx context.Context, credentialID string) error
}

type orderStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type materialStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.MarketingMaterial, error)
	Delete(ctx context.Context, materialID string) error
}

type documentStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.AdminDocument, error)
	Delete(ctx context.Context, documentID string) error
}

type blobStore interface {
	Delete(ctx context.Context, key string) error
}

type emailer interface {
	Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error)
	SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult
}

type service struct {
	users       userStore
	credentials credentialStore
	sessions    sessionStore
	orders      orderStore
	materials   materialStore
	documents   documentStore
	blobs       blobStore
	emails      emailer
	cfg         *config.Config
	logger      *zap.Logger
}

func NewService(users userStore, credentials credentialStore, sessions sessionStore, orders orderStore, materials materialStore, documents documentStore, blobs blobStore, emails emailer, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		users:       users,
		credentials: credentials,
		sessions:    sessions,
		orders:      orders,
		materials:   materials,
		documents:   documents,
		blobs:       blobs,
		emails:      emails,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateAdminUser provisions an active admin account with its credential.
func (s *service) CreateAdminUser(ctx context.Context, req domain.CreateAdminUserRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	if _, err := s.credentials.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("create admin %s: %w", req.Email, domain.ErrEmailExists)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	cred := &domain.Credential{
		CredentialID: id.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.credentials.Put(ctx, cred); err != nil {
		return nil, err
	}

	lang := req.PreferredLang
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	user := &domain.User{
		UserID:        id.New(),
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Role:          domain.RoleAdmin,
		Active:        true,
		PreferredLang: lang,
		CredentialID:  cred.CredentialID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Put(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("admin user created", zap.String("user_id", user.UserID), zap.String("email", user.Email))
	return user, nil
}

// SubmitApplication records a reseller application as an inactive account and
// notifies both the applicant and the admin list. Email failures never fail
// the intake.
func (s *service) SubmitApplication(ctx context.Context, req domain.B2BApplicationRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("application for %s: %w", req.Email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	lang := req.PreferredLang
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	now := time.Now().UTC()
	user := &domain.User{
		UserID:        id.New(),
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Role:          domain.RoleUser,
		Active:        false,
		PreferredLang: lang,
		MarginPercent: DefaultMarginPercent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Put(ctx, user); err != nil {
		return nil, err
	}

	app := &domain.ApplicationPayload{
		ApplicantName: req.ContactPerson,
		CompanyName:   req.CompanyName,
		Message:       req.Message,
		AppliedAt:     now,
	}

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailB2BAppReceived,
		CustomerInfo: domain.CustomerInfo{Email: req.Email, Name: req.ContactPerson},
		Language:     lang,
		Application:  app,
	}); err != nil || !res.Success {
		s.logger.Warn("application confirmation email not sent", zap.String("email", req.Email), zap.Error(err))
	}

	if len(s.cfg.AdminEmails) > 0 {
		s.emails.SendToMany(ctx, domain.EmailContext{
			EmailType:    domain.EmailB2BAppAdmin,
			CustomerInfo: domain.CustomerInfo{Name: req.ContactPerson, Email: req.Email},
			AdminEmail:   true,
			Application:  app,
		}, s.cfg.AdminEmails)
	}

	return user, nil
}

// ToggleActiveStatus sets an account's active flag to the requested state.
// The argument is looked up as a user ID first and as an email when no record
// matches, so admin tooling can pass either. A request that matches the
// current state is a no-op, which keeps retries idempotent. Activation
// triggers a welcome email, best-effort.
func (s *service) ToggleActiveStatus(ctx context.Context, idOrEmail string, active bool) (*domain.User, error) {
	user, err := s.users.Get(ctx, idOrEmail)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.users.GetByEmail(ctx, idOrEmail)
	}
	if err != nil {
		return nil, err
	}
	if user.Active == active {
		return user, nil
	}

	user.Active = active
	if err := s.users.Update(ctx, user.UserID, map[string]interface{}{
		"active": user.Active,
	}); err != nil {
		return nil, err
	}

	s.syncCredentialDisabled(ctx, user)

	s.logger.Info("customer active status toggled",
		zap.String("user_id", user.UserID),
		zap.Bool("active", user.Active))

	if user.Active {
		if res, err := s.emails.Send(ctx, domain.EmailContext{
			EmailType:    domain.EmailWelcome,
			UserID:       user.UserID,
			CustomerInfo: domain.CustomerInfo{Email: user.Email, Name: user.ContactPerson},
			Language:     user.PreferredLang,
		}); err != nil || !res.Success {
			s.logger.Warn("welcome email not sent", zap.String("email", user.Email), zap.Error(err))
		}
	}

	return user, nil
}

// syncCredentialDisabled mirrors the account's active flag onto its
// credential, falling back to an email lookup when the referenced credential
// is gone. Best effort: a missing credential only logs.
func (s *service) syncCredentialDisabled(ctx context.Context, user *domain.User) {
	cred, err := s.credentials.Get(ctx, user.CredentialID)
	if err != nil {
		cred, err = s.credentials.GetByEmail(ctx, user.Email)
	}
	if err != nil {
		s.logger.Warn("no credential to sync for customer",
			zap.String("user_id", user.UserID), zap.Error(err))
		return
	}

	if err := s.credentials.Update(ctx, cred.CredentialID, map[string]interface{}{
		"disabled": !user.Active,
	}); err != nil {
		s.logger.Warn("credential disable sync failed",
			zap.String("credential_id", cred.CredentialID), zap.Error(err))
		return
	}
	if !user.Active {
		if err := s.sessions.DisableByCredential(ctx, cred.CredentialID); err != nil {
			s.logger.Warn("session revocation failed",
				zap.String("credential_id", cred.CredentialID), zap.Error(err))
		}
	}
}

// DeleteAccount removes a customer account completely. The credential goes
// first so the account can't log in mid-cleanup, then related collections are
// cleared in parallel, each step best-effort, and the user document is removed
// last. Per-collection counts and step outcomes come back in the result.
func (s *service) DeleteAccount(ctx context.Context, userID string) (*domain.DeletionResult, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &domain.DeletionResult{
		DeletionResults: map[string]int{},
	}
	result.AuthDeletionResult = s.deleteCredential(ctx, user)

	steps := make([]domain.CascadeStep, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		steps[0] = s.cascadeOrders(ctx, user.UserID)
	}()
	go func() {
		defer wg.Done()
		steps[1] = s.cascadeMaterials(ctx, user.UserID)
	}()
	go func() {
		defer wg.Done()
		steps[2] = s.cascadeDocuments(ctx, user.UserID)
	}()
	wg.Wait()

	for _, step := range steps {
		result.Steps = append(result.Steps, step)
		result.DeletionResults[step.Step] = step.Count
	}

	if err := s.users.Delete(ctx, user.UserID); err != nil {
		result.Steps = append(result.Steps, domain.CascadeStep{
			Step: "user", Succeeded: false, Error: err.Error(),
		})
		return result, err
	}
	result.Steps = append(result.Steps, domain.CascadeStep{Step: "user", Succeeded: true, Count: 1})

	result.Success = result.AuthDeletionResult != domain.AuthDeleteFailed
	s.logger.Info("customer account deleted",
		zap.String("user_id", user.UserID),
		zap.String("auth_result", result.AuthDeletionResult),
		zap.Any("deletion_results", result.DeletionResults))
	return result, nil
}

// deleteCredential removes the login identity, trying the stored credential ID
// first and falling back to an email lookup when the reference is missing or
// stale.
func (s *service) deleteCredential(ctx context.Context, user *domain.User) string {
	if user.CredentialID != "" {
		if err := s.credentials.Delete(ctx, user.CredentialID); err == nil {
			s.disableSessions(ctx, user.CredentialID)
			return domain.AuthDeletedByUID
		} else {
			s.logger.Warn("credential delete by id failed, trying email",
				zap.String("credential_id", user.CredentialID), zap.Error(err))
		}
	}

	cred, err := s.credentials.GetByEmail(ctx, user.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.AuthNotFound
	}
	if err != nil {
		s.logger.Error("credential lookup by email failed", zap.String("email", user.Email), zap.Error(err))
		return domain.AuthDeleteFailed
	}
	if err := s.credentials.Delete(ctx, cred.CredentialID); err != nil {
		s.logger.Error("credential delete by email failed", zap.String("email", user.Email), zap.Error(err))
		return domain.AuthDeleteFailed
	}
	s.disableSessions(ctx, cred.CredentialID)
	return domain.AuthDeletedByEmail
}

func (s *service) disableSessions(ctx context.Context, credentialID string) {
	if err := s.sessions.DisableByCredential(ctx, credentialID); err != nil {
		s.logger.Warn("session disable failed", zap.String("credential_id", credentialID), zap.Error(err))
	}
}

func (s *service) cascadeOrders(ctx context.Context, userID string) domain.CascadeStep {
	step := domain.CascadeStep{Step: "orders"}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		step.Error = err.Error()
		return step
	}
	for _, o := range orders {
		if err := s.orders.Delete(ctx, o.OrderID); err != nil {
			step.Error = err.Error()
			return step
		}
		step.Count++
	}
	step.Succeeded = true
	return step
}

func (s *service) cascadeMaterials(ctx context.Context, userID string) domain.CascadeStep {
	step := domain.CascadeStep{Step: "materials"}
	materials, err := s.materials.ListByCustomer(ctx, userID)
	if err != nil {
		step.Error = err.Error()
		return step
	}
	for _, m := range materials {
		if m.Key != "" {
			if err := s.blobs.Delete(ctx, m.Key); err != nil {
				s.logger.Warn("material blob delete failed", zap.String("key", m.Key), zap.Error(err))
			}
		}
		if err := s.materials.Delete(ctx, m.MaterialID); err != nil {
			step.Error = err.Error()
			return step
		}
		step.Count++
	}
	step.Succeeded = true
	return step
}

func (s *service) cascadeDocuments(ctx context.Context, userID string) domain.CascadeStep {
	step := domain.CascadeStep{Step: "adminDocuments"}
	docs, err := s.documents.ListByCustomer(ctx, userID)
	if err != nil {
		step.Error = err.Error()
		return step
	}
	for _, d := range docs {
		if err := s.documents.Delete(ctx, d.DocumentID); err != nil {
			step.Error = err.Error()
			return step
		}
		step.Count++
	}
	step.Succeeded = true
	return step
}
