package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) Put(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderStore) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderStore) Update(ctx context.Context, orderID string, updates map[string]interface{}) error {
	return m.Called(ctx, orderID, updates).Error(0)
}

type mockEmailer struct{ mock.Mock }

func (m *mockEmailer) Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error) {
	args := m.Called(ctx, ec)
	return args.Get(0).(domain.SendResult), args.Error(1)
}

func (m *mockEmailer) SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult {
	args := m.Called(ctx, ec, recipients)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.SendResult)
}

type mockConversions struct{ mock.Mock }

func (m *mockConversions) RecordConversion(ctx context.Context, code string, orderTotal float64) error {
	return m.Called(ctx, code, orderTotal).Error(0)
}

type fixture struct {
	orders      *mockOrderStore
	emails      *mockEmailer
	conversions *mockConversions
	svc         *service
}

func newFixture() *fixture {
	f := &fixture{
		orders:      new(mockOrderStore),
		emails:      new(mockEmailer),
		conversions: new(mockConversions),
	}
	cfg := &config.Config{
		AdminEmails: []string{"info@b8shield.com", "micke@b8shield.com"},
	}
	f.svc = NewService(f.orders, f.emails, f.conversions, cfg, zap.NewNop()).(*service)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func validRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		UserID: "user-1",
		Source: domain.SourceB2B,
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "B8Shield 4-pack", Quantity: 2, Price: 89},
		},
		Subtotal:     178,
		VAT:          44.5,
		Total:        222.5,
		CustomerInfo: domain.CustomerInfo{Email: "kund@example.com", Name: "Kund AB"},
	}
}

func TestCreatePersistsAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Put", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.OrderPending &&
			strings.HasPrefix(o.OrderNumber, "B8S-240301-") &&
			o.OrderID != ""
	})).Return(nil)
	f.emails.On("Send", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailOrderConfirmation &&
			ec.CustomerInfo.Email == "kund@example.com"
	})).Return(domain.SendResult{Success: true}, nil)
	f.emails.On("SendToMany", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailOrderNotificationAdmin && ec.AdminEmail
	}), []string{"info@b8shield.com", "micke@b8shield.com"}).
		Return([]domain.SendResult{{Success: true}, {Success: true}})

	o, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	f.emails.AssertExpectations(t)
	f.conversions.AssertNotCalled(t, "RecordConversion", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRecordsAffiliateConversion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := validRequest()
	req.Source = domain.SourceB2C
	req.UserID = ""
	req.B2CCustomerID = "cust-1"
	req.AffiliateCode = "ANNA-X7K2"

	f.orders.On("Put", ctx, mock.Anything).Return(nil)
	f.emails.On("Send", ctx, mock.Anything).Return(domain.SendResult{Success: true}, nil)
	f.emails.On("SendToMany", ctx, mock.Anything, mock.Anything).Return(nil)
	f.conversions.On("RecordConversion", ctx, "ANNA-X7K2", 222.5).Return(nil)

	_, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	f.conversions.AssertExpectations(t)
}

func TestCreateSurvivesNotificationFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Put", ctx, mock.Anything).Return(nil)
	f.emails.On("Send", ctx, mock.Anything).
		Return(domain.SendResult{Success: false, Error: "SMTP connection failed"}, nil)
	f.emails.On("SendToMany", ctx, mock.Anything, mock.Anything).
		Return([]domain.SendResult{{Success: false, Error: "SMTP connection failed"}, {Success: false, Error: "SMTP connection failed"}})

	o, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderID)
}

func TestCreateRejectsB2BOrderWithoutUser(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.UserID = ""

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	f.orders.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestUpdateStatusSendsCustomerEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tracking := "https://track.example.com/abc"
	f.orders.On("Get", ctx, "order-1").Return(&domain.Order{
		OrderID:      "order-1",
		OrderNumber:  "B8S-240301-0001",
		Status:       domain.OrderProcessing,
		CustomerInfo: domain.CustomerInfo{Email: "kund@example.com", Name: "Kund AB"},
	}, nil)
	f.orders.On("Update", ctx, "order-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.OrderShipped && u["tracking_url"] == tracking
	})).Return(nil)
	f.emails.On("Send", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailOrderStatusUpdate &&
			ec.Order.Status == domain.OrderShipped
	})).Return(domain.SendResult{Success: true}, nil)

	o, err := f.svc.UpdateStatus(ctx, domain.UpdateOrderStatusRequest{
		OrderID:     "order-1",
		Status:      domain.OrderShipped,
		TrackingURL: &tracking,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, o.Status)
	f.emails.AssertExpectations(t)
}

func TestUpdateStatusNoopWhenUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Get", ctx, "order-1").Return(&domain.Order{
		OrderID: "order-1",
		Status:  domain.OrderShipped,
	}, nil)

	_, err := f.svc.UpdateStatus(ctx, domain.UpdateOrderStatusRequest{
		OrderID: "order-1",
		Status:  domain.OrderShipped,
	})
	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.emails.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Get", ctx, "missing").Return(nil, errors.New("order missing: not found"))

	_, err := f.svc.UpdateStatus(ctx, domain.UpdateOrderStatusRequest{
		OrderID: "missing",
		Status:  domain.OrderShipped,
	})
	assert.Error(t, err)
}

func TestSendConfirmationResendsEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Get", ctx, "order-1").Return(&domain.Order{
		OrderID:      "order-1",
		OrderNumber:  "B8S-240301-0001",
		CustomerInfo: domain.CustomerInfo{Email: "kund@example.com", Name: "Kund AB"},
	}, nil)
	f.emails.On("Send", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailOrderConfirmation &&
			ec.CustomerInfo.Email == "kund@example.com"
	})).Return(domain.SendResult{Success: true, MessageID: "<resend@smtp>"}, nil)

	res, err := f.svc.SendConfirmation(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "<resend@smtp>", res.MessageID)
}

func TestSendConfirmationSurfacesDispatchFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("Get", ctx, "order-1").Return(&domain.Order{
		OrderID:      "order-1",
		CustomerInfo: domain.CustomerInfo{Email: "kund@example.com"},
	}, nil)
	f.emails.On("Send", ctx, mock.Anything).
		Return(domain.SendResult{Success: false, Error: "smtp verify failed"}, nil)

	res, err := f.svc.SendConfirmation(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "smtp verify failed", res.Error)
}
