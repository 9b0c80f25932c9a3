package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// Service handles order intake and status changes, including the email
// notifications both trigger.
type Service interface {
	Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, req domain.UpdateOrderStatusRequest) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	SendConfirmation(ctx context.Context, orderID string) (domain.SendResult, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Update(ctx context.Context, orderID string, updates map[string]interface{}) error
}

type emailer interface {
	Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error)
	SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult
}

type conversionRecorder interface {
	RecordConversion(ctx context.Context, code string, orderTotal float64) error
}

type service struct {
	orders      orderStore
	emails      emailer
	conversions conversionRecorder
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(orders orderStore, emails emailer, conversions conversionRecorder, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		orders:      orders,
		emails:      emails,
		conversions: conversions,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Create persists the order, sends the customer confirmation, fans the admin
// notification out to the configured list and credits any referral code. The
// order stands even when every notification fails.
func (s *service) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	if req.Source == domain.SourceB2B && req.UserID == "" {
		return nil, fmt.Errorf("%w: b2b order requires user_id", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	o := &domain.Order{
		OrderID:       id.New(),
		OrderNumber:   s.orderNumber(now),
		UserID:        req.UserID,
		B2CCustomerID: req.B2CCustomerID,
		Source:        req.Source,
		Status:        domain.OrderPending,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Shipping:      req.Shipping,
		VAT:           req.VAT,
		Total:         req.Total,
		CustomerInfo:  req.CustomerInfo,
		AffiliateCode: req.AffiliateCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.Put(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", o.OrderID),
		zap.String("order_number", o.OrderNumber),
		zap.String("source", o.Source))

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailOrderConfirmation,
		OrderID:      o.OrderID,
		Order:        o,
		CustomerInfo: o.CustomerInfo,
	}); err != nil || !res.Success {
		s.logger.Warn("order confirmation not sent", zap.String("order_id", o.OrderID), zap.Error(err))
	}

	if len(s.cfg.AdminEmails) > 0 {
		results := s.emails.SendToMany(ctx, domain.EmailContext{
			EmailType:    domain.EmailOrderNotificationAdmin,
			OrderID:      o.OrderID,
			Order:        o,
			AdminEmail:   true,
			CustomerInfo: domain.CustomerInfo{Name: o.CustomerInfo.Name},
		}, s.cfg.AdminEmails)
		for i, res := range results {
			if !res.Success {
				s.logger.Warn("admin order notification not sent",
					zap.String("recipient", s.cfg.AdminEmails[i]),
					zap.String("error", res.Error))
			}
		}
	}

	if o.AffiliateCode != "" {
		if err := s.conversions.RecordConversion(ctx, o.AffiliateCode, o.Total); err != nil {
			s.logger.Warn("affiliate conversion not recorded",
				zap.String("code", o.AffiliateCode), zap.Error(err))
		}
	}

	return o, nil
}

// UpdateStatus moves an order through its lifecycle and tells the customer.
func (s *service) UpdateStatus(ctx context.Context, req domain.UpdateOrderStatusRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status == req.Status {
		return o, nil
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}
	if req.TrackingURL != nil {
		updates["tracking_url"] = *req.TrackingURL
	}
	if err := s.orders.Update(ctx, o.OrderID, updates); err != nil {
		return nil, err
	}
	o.Status = req.Status
	if req.TrackingURL != nil {
		o.TrackingURL = req.TrackingURL
	}

	s.logger.Info("order status updated",
		zap.String("order_id", o.OrderID),
		zap.String("status", o.Status))

	if res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailOrderStatusUpdate,
		OrderID:      o.OrderID,
		Order:        o,
		CustomerInfo: o.CustomerInfo,
	}); err != nil || !res.Success {
		s.logger.Warn("status update email not sent", zap.String("order_id", o.OrderID), zap.Error(err))
	}

	return o, nil
}

func (s *service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// SendConfirmation re-sends the confirmation email for an existing order.
// Unlike the send on Create, a failed dispatch here is surfaced to the caller.
func (s *service) SendConfirmation(ctx context.Context, orderID string) (domain.SendResult, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.SendResult{}, err
	}

	res, err := s.emails.Send(ctx, domain.EmailContext{
		EmailType:    domain.EmailOrderConfirmation,
		OrderID:      o.OrderID,
		Order:        o,
		CustomerInfo: o.CustomerInfo,
	})
	if err != nil {
		return domain.SendResult{}, err
	}
	if res.Success {
		s.logger.Info("order confirmation re-sent",
			zap.String("order_id", o.OrderID),
			zap.String("message_id", res.MessageID))
	}
	return res, nil
}

// orderNumber builds a human-readable number like B8S-240301-7F3K from the
// order date and the tail of a fresh ULID.
func (s *service) orderNumber(now time.Time) string {
	ulid := id.New()
	return fmt.Sprintf("B8S-%s-%s", now.Format("060102"), strings.ToUpper(ulid[len(ulid)-4:]))
}
