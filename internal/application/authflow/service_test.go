package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

type mockResetStore struct{ mock.Mock }

func (m *mockResetStore) Put(ctx context.Context, rec *domain.PasswordResetRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockResetStore) GetByEmailAndCode(ctx context.Context, email, code string) (*domain.PasswordResetRecord, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetRecord), args.Error(1)
}

func (m *mockResetStore) MarkUsed(ctx context.Context, resetID string) error {
	return m.Called(ctx, resetID).Error(0)
}

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, rec *domain.EmailVerificationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockVerificationStore) GetByEmailAndCode(ctx context.Context, email, code string) (*domain.EmailVerificationRecord, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailVerificationRecord), args.Error(1)
}

func (m *mockVerificationStore) MarkVerified(ctx context.Context, verificationID string) error {
	return m.Called(ctx, verificationID).Error(0)
}

type mockCredentialStore struct{ mock.Mock }

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

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) GetByEmail(ctx context.Context, email string) (*domain.B2CCustomer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.B2CCustomer), args.Error(1)
}

func (m *mockCustomerStore) Update(ctx context.Context, customerID string, updates map[string]interface{}) error {
	return m.Called(ctx, customerID, updates).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) DisableByCredential(ctx context.Context, credentialID string) error {
	return m.Called(ctx, credentialID).Error(0)
}

type mockEmailer struct{ mock.Mock }

func (m *mockEmailer) Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error) {
	args := m.Called(ctx, ec)
	return args.Get(0).(domain.SendResult), args.Error(1)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type fixture struct {
	resets        *mockResetStore
	verifications *mockVerificationStore
	credentials   *mockCredentialStore
	users         *mockUserStore
	customers     *mockCustomerStore
	sessions      *mockSessionStore
	emails        *mockEmailer
	sms           *mockSMS
	svc           *service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		resets:        new(mockResetStore),
		verifications: new(mockVerificationStore),
		credentials:   new(mockCredentialStore),
		users:         new(mockUserStore),
		customers:     new(mockCustomerStore),
		sessions:      new(mockSessionStore),
		emails:        new(mockEmailer),
		sms:           new(mockSMS),
	}
	cfg := &config.Config{DefaultLanguage: "sv-SE"}
	f.svc = NewService(f.resets, f.verifications, f.credentials, f.users, f.customers, f.sessions, f.emails, f.sms, cfg, zap.NewNop()).(*service)
	f.svc.now = func() time.Time { return now }
	return f
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRequestPasswordResetUnknownAddressSucceedsSilently(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.credentials.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrUserNotFound)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, domain.RequestPasswordResetRequest{
		Email: "nobody@example.com",
	}))
	f.resets.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	f.emails.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestPasswordResetIssuesCodeAndSMS(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	phone := "+46701234567"
	f.credentials.On("GetByEmail", ctx, "kund@example.com").
		Return(&domain.Credential{CredentialID: "cred-1"}, nil)
	f.resets.On("Put", ctx, mock.MatchedBy(func(rec *domain.PasswordResetRecord) bool {
		return rec.Email == "kund@example.com" &&
			len(rec.Code) == codeDigits &&
			!rec.Used &&
			rec.ExpiresAt == testNow.Add(domain.ResetCodeTTL).Unix()
	})).Return(nil)
	f.emails.On("Send", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailPasswordReset && ec.Code != nil && ec.Code.Code != ""
	})).Return(domain.SendResult{Success: true}, nil)
	f.users.On("GetByEmail", ctx, "kund@example.com").
		Return(&domain.User{UserID: "user-1", Phone: &phone}, nil)
	f.sms.On("SendSMS", ctx, phone, mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, domain.RequestPasswordResetRequest{
		Email: "kund@example.com",
	}))
	f.sms.AssertExpectations(t)
}

func TestRequestPasswordResetWithoutSMSSender(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()
	f.svc.sms = nil

	f.credentials.On("GetByEmail", ctx, "kund@example.com").
		Return(&domain.Credential{CredentialID: "cred-1"}, nil)
	f.resets.On("Put", ctx, mock.Anything).Return(nil)
	f.emails.On("Send", ctx, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailPasswordReset
	})).Return(domain.SendResult{Success: true}, nil)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, domain.RequestPasswordResetRequest{
		Email: "kund@example.com",
	}))
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestConfirmPasswordResetHappyPath(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.resets.On("GetByEmailAndCode", ctx, "kund@example.com", "123456").
		Return(&domain.PasswordResetRecord{
			ResetID:   "reset-1",
			Email:     "kund@example.com",
			Code:      "123456",
			ExpiresAt: testNow.Add(time.Minute).Unix(),
		}, nil)
	f.resets.On("MarkUsed", ctx, "reset-1").Return(nil)
	f.credentials.On("GetByEmail", ctx, "kund@example.com").
		Return(&domain.Credential{CredentialID: "cred-1"}, nil)
	f.credentials.On("Update", ctx, "cred-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		hash, _ := u["password_hash"].(string)
		return hash != "" && hash != "new-password-123"
	})).Return(nil)
	f.sessions.On("DisableByCredential", ctx, "cred-1").Return(nil)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, domain.ConfirmPasswordResetRequest{
		Email:       "kund@example.com",
		Code:        "123456",
		NewPassword: "new-password-123",
	}))
	f.resets.AssertExpectations(t)
}

func TestConfirmPasswordResetRejectsUsedCode(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.resets.On("GetByEmailAndCode", ctx, "kund@example.com", "123456").
		Return(&domain.PasswordResetRecord{
			ResetID:   "reset-1",
			Used:      true,
			ExpiresAt: testNow.Add(time.Hour).Unix(),
		}, nil)

	err := f.svc.ConfirmPasswordReset(ctx, domain.ConfirmPasswordResetRequest{
		Email:       "kund@example.com",
		Code:        "123456",
		NewPassword: "new-password-123",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.credentials.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPasswordResetRejectsExpiredCode(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.resets.On("GetByEmailAndCode", ctx, "kund@example.com", "123456").
		Return(&domain.PasswordResetRecord{
			ResetID:   "reset-1",
			ExpiresAt: testNow.Add(-time.Second).Unix(),
		}, nil)

	err := f.svc.ConfirmPasswordReset(ctx, domain.ConfirmPasswordResetRequest{
		Email:       "kund@example.com",
		Code:        "123456",
		NewPassword: "new-password-123",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.resets.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
}

func TestConfirmPasswordResetRejectsUnknownCode(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.resets.On("GetByEmailAndCode", ctx, "kund@example.com", "000000").
		Return(nil, domain.ErrNotFound)

	err := f.svc.ConfirmPasswordReset(ctx, domain.ConfirmPasswordResetRequest{
		Email:       "kund@example.com",
		Code:        "000000",
		NewPassword: "new-password-123",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestConfirmEmailVerificationMarksCustomerVerified(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.verifications.On("GetByEmailAndCode", ctx, "shop@example.com", "654321").
		Return(&domain.EmailVerificationRecord{
			VerificationID: "ver-1",
			Email:          "shop@example.com",
			ExpiresAt:      testNow.Add(time.Hour).Unix(),
		}, nil)
	f.verifications.On("MarkVerified", ctx, "ver-1").Return(nil)
	f.customers.On("GetByEmail", ctx, "shop@example.com").
		Return(&domain.B2CCustomer{CustomerID: "cust-1"}, nil)
	f.customers.On("Update", ctx, "cust-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["email_verified"] == true
	})).Return(nil)

	require.NoError(t, f.svc.ConfirmEmailVerification(ctx, domain.ConfirmEmailVerificationRequest{
		Email: "shop@example.com",
		Code:  "654321",
	}))
	f.customers.AssertExpectations(t)
}

func TestConfirmEmailVerificationRejectsConsumedCode(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.verifications.On("GetByEmailAndCode", ctx, "shop@example.com", "654321").
		Return(&domain.EmailVerificationRecord{
			VerificationID: "ver-1",
			Verified:       true,
			ExpiresAt:      testNow.Add(time.Hour).Unix(),
		}, nil)

	err := f.svc.ConfirmEmailVerification(ctx, domain.ConfirmEmailVerificationRequest{
		Email: "shop@example.com",
		Code:  "654321",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.verifications.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestConfirmEmailVerificationWithoutCustomerRecordSucceeds(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	f.verifications.On("GetByEmailAndCode", ctx, "new@example.com", "654321").
		Return(&domain.EmailVerificationRecord{
			VerificationID: "ver-1",
			ExpiresAt:      testNow.Add(time.Hour).Unix(),
		}, nil)
	f.verifications.On("MarkVerified", ctx, "ver-1").Return(nil)
	f.customers.On("GetByEmail", ctx, "new@example.com").Return(nil, domain.ErrNotFound)

	require.NoError(t, f.svc.ConfirmEmailVerification(ctx, domain.ConfirmEmailVerificationRequest{
		Email: "new@example.com",
		Code:  "654321",
	}))
}
