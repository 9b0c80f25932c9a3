package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/smtp"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// Service dispatches transactional emails. Every call resolves to a
// SendResult; transport failures are reported in the result, not as errors.
type Service interface {
	Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error)
	SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult
	PreferredLanguage(ctx context.Context, email string) string
}

type affiliateStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Affiliate, error)
}

type b2cCustomerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.B2CCustomer, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type logStore interface {
	Put(ctx context.Context, entry *domain.EmailLogEntry) error
}

type service struct {
	mailer     smtp.Mailer
	affiliates affiliateStore
	customers  b2cCustomerStore
	users      userStore
	log        logStore
	cfg        *config.Config
	logger     *zap.Logger
}

func NewService(mailer smtp.Mailer, affiliates affiliateStore, customers b2cCustomerStore, users userStore, log logStore, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		mailer:     mailer,
		affiliates: affiliates,
		customers:  customers,
		users:      users,
		log:        log,
		cfg:        cfg,
		logger:     logger,
	}
}

// Send validates the context, resolves language and from-address, renders the
// template and delivers over SMTP. Validation and transport failures come back
// as {success:false} results; only template rendering faults return an error.
func (s *service) Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error) {
	if !ec.EmailType.Valid() {
		return domain.SendResult{Success: false, Error: fmt.Sprintf("unsupported email type: %s", ec.EmailType)}, nil
	}
	if err := validate.Email(ec.CustomerInfo.Email); err != nil {
		return domain.SendResult{Success: false, Error: "missing or invalid recipient email"}, nil
	}

	lang := ec.Language
	if lang == "" {
		lang = s.PreferredLanguage(ctx, ec.CustomerInfo.Email)
	}

	subject, html, err := render(ec.EmailType, lang, s.viewData(ec))
	if err != nil {
		return domain.SendResult{}, err
	}

	from := s.fromAddress(ec)

	if err := s.mailer.VerifyConnection(); err != nil {
		s.logger.Error("smtp verify failed", zap.String("email_type", string(ec.EmailType)), zap.Error(err))
		s.appendLog(ctx, ec, from, subject, lang, domain.EmailLogFailed, "SMTP connection failed")
		return domain.SendResult{Success: false, Error: "SMTP connection failed"}, nil
	}

	messageID, err := s.mailer.Send(smtp.Message{
		From:    from,
		To:      ec.CustomerInfo.Email,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		s.logger.Error("smtp send failed",
			zap.String("email_type", string(ec.EmailType)),
			zap.String("to", ec.CustomerInfo.Email),
			zap.Error(err))
		s.appendLog(ctx, ec, from, subject, lang, domain.EmailLogFailed, err.Error())
		return domain.SendResult{Success: false, Error: err.Error()}, nil
	}

	s.logger.Info("email sent",
		zap.String("email_type", string(ec.EmailType)),
		zap.String("to", ec.CustomerInfo.Email),
		zap.String("message_id", messageID),
		zap.String("language", lang))
	s.appendLog(ctx, ec, from, subject, lang, domain.EmailLogSent, "")
	return domain.SendResult{Success: true, MessageID: messageID}, nil
}

// SendToMany fans one context out to several recipients concurrently, one
// send per recipient. Each recipient gets its own result; one failure never
// cancels the others.
func (s *service) SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult {
	results := make([]domain.SendResult, len(recipients))
	var wg sync.WaitGroup
	for i, rcpt := range recipients {
		wg.Add(1)
		go func(i int, rcpt string) {
			defer wg.Done()
			rc := ec
			rc.CustomerInfo = domain.CustomerInfo{Email: rcpt, Name: ec.CustomerInfo.Name}
			res, err := s.Send(ctx, rc)
			if err != nil {
				res = domain.SendResult{Success: false, Error: err.Error()}
			}
			results[i] = res
		}(i, rcpt)
	}
	wg.Wait()
	return results
}

// PreferredLanguage resolves the stored language for an address, checking
// affiliates, then B2C customers, then B2B users. Unknown addresses get the
// configured default.
func (s *service) PreferredLanguage(ctx context.Context, email string) string {
	if aff, err := s.affiliates.GetByEmail(ctx, email); err == nil && aff.PreferredLang != "" {
		return aff.PreferredLang
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("affiliate language lookup failed", zap.String("email", email), zap.Error(err))
	}

	if c, err := s.customers.GetByEmail(ctx, email); err == nil && c.PreferredLang != "" {
		return c.PreferredLang
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("b2c customer language lookup failed", zap.String("email", email), zap.Error(err))
	}

	if u, err := s.users.GetByEmail(ctx, email); err == nil && u.PreferredLang != "" {
		return u.PreferredLang
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("user language lookup failed", zap.String("email", email), zap.Error(err))
	}

	return s.cfg.DefaultLanguage
}

// fromAddress picks the sender identity for the email type and channel.
func (s *service) fromAddress(ec domain.EmailContext) string {
	switch ec.EmailType {
	case domain.EmailAffiliateWelcome, domain.EmailAffiliateAppReceived, domain.EmailAffiliateAppAdmin:
		return s.cfg.SMTP.FromAffiliate
	case domain.EmailPasswordReset, domain.EmailVerification, domain.EmailAddressVerification:
		return s.cfg.SMTP.FromSupport
	case domain.EmailOrderConfirmation, domain.EmailOrderStatusUpdate:
		if ec.Order != nil && ec.Order.Source == domain.SourceB2C {
			return s.cfg.SMTP.FromB2C
		}
		return s.cfg.SMTP.FromB2B
	case domain.EmailB2BAppReceived, domain.EmailB2BAppAdmin:
		return s.cfg.SMTP.FromB2B
	}
	return s.cfg.SMTP.FromSystem
}

func (s *service) viewData(ec domain.EmailContext) *emailData {
	data := &emailData{
		Name:        ec.CustomerInfo.Name,
		Email:       ec.CustomerInfo.Email,
		Order:       ec.Order,
		Application: ec.Application,
		Affiliate:   ec.Affiliate,
	}
	if ec.Code != nil {
		data.Code = ec.Code.Code
		data.ExpiresAt = ec.Code.ExpiresAt
		data.ResetURL = ec.Code.ResetURL
	}
	if ec.Credentials != nil {
		data.Email = ec.Credentials.Email
		data.TemporaryPassword = ec.Credentials.TemporaryPassword
		data.LoginURL = ec.Credentials.LoginURL
	}
	if data.LoginURL == "" {
		data.LoginURL = s.cfg.PortalBaseURL
	}
	return data
}

// appendLog records the attempt in the email log. Failures are logged and
// swallowed so logging can never break a send.
func (s *service) appendLog(ctx context.Context, ec domain.EmailContext, from, subject, lang, status, sendErr string) {
	entry := &domain.EmailLogEntry{
		LogID:     id.New(),
		EmailType: string(ec.EmailType),
		To:        ec.CustomerInfo.Email,
		From:      from,
		Subject:   subject,
		Language:  lang,
		Status:    status,
		Error:     sendErr,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.log.Put(ctx, entry); err != nil {
		s.logger.Warn("email log append failed", zap.String("to", entry.To), zap.Error(err))
	}
}
