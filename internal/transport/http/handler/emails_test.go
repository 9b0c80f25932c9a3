package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

type mockEmailSvc struct{ mock.Mock }

func (m *mockEmailSvc) Send(ctx context.Context, ec domain.EmailContext) (domain.SendResult, error) {
	args := m.Called(ctx, ec)
	return args.Get(0).(domain.SendResult), args.Error(1)
}

func (m *mockEmailSvc) SendToMany(ctx context.Context, ec domain.EmailContext, recipients []string) []domain.SendResult {
	return m.Called(ctx, ec, recipients).Get(0).([]domain.SendResult)
}

func (m *mockEmailSvc) PreferredLanguage(ctx context.Context, email string) string {
	return m.Called(ctx, email).String(0)
}

type mockLogLister struct{ mock.Mock }

func (m *mockLogLister) ListByRecipient(ctx context.Context, to string) ([]domain.EmailLogEntry, error) {
	args := m.Called(ctx, to)
	return args.Get(0).([]domain.EmailLogEntry), args.Error(1)
}

func TestSendEmail_UnknownTypeComesBackInEnvelope(t *testing.T) {
	svc := &mockEmailSvc{}
	svc.On("Send", mock.Anything, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailType("NOT_A_TYPE")
	})).Return(domain.SendResult{Success: false, Error: "unsupported email type: NOT_A_TYPE"}, nil)
	h := NewEmailHandler(svc, &mockLogLister{})

	body, _ := json.Marshal(SendEmailRequest{EmailType: "NOT_A_TYPE"})
	r := httptest.NewRequest(http.MethodPost, "/v1/emails", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Send(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.SendResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unsupported email type")
	svc.AssertExpectations(t)
}

func TestSendEmail_HappyPath(t *testing.T) {
	svc := &mockEmailSvc{}
	svc.On("Send", mock.Anything, mock.MatchedBy(func(ec domain.EmailContext) bool {
		return ec.EmailType == domain.EmailWelcome && ec.CustomerInfo.Email == "kund@example.com"
	})).Return(domain.SendResult{Success: true, MessageID: "msg-1"}, nil)
	h := NewEmailHandler(svc, &mockLogLister{})

	body, _ := json.Marshal(SendEmailRequest{
		EmailType:    string(domain.EmailWelcome),
		CustomerInfo: domain.CustomerInfo{Email: "kund@example.com", Name: "Kund"},
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/emails", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Send(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.SendResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "msg-1", resp.MessageID)
	svc.AssertExpectations(t)
}

func TestSendEmail_InvalidBody(t *testing.T) {
	h := NewEmailHandler(&mockEmailSvc{}, &mockLogLister{})
	r := httptest.NewRequest(http.MethodPost, "/v1/emails", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	h.Send(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEmailLog_RequiresRecipient(t *testing.T) {
	h := NewEmailHandler(&mockEmailSvc{}, &mockLogLister{})
	r := httptest.NewRequest(http.MethodGet, "/v1/emails/log", nil)
	rr := httptest.NewRecorder()
	h.Log(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEmailLog_ListsByRecipient(t *testing.T) {
	logs := &mockLogLister{}
	logs.On("ListByRecipient", mock.Anything, "kund@example.com").Return([]domain.EmailLogEntry{
		{LogID: "log-1", To: "kund@example.com", Status: domain.EmailLogSent},
	}, nil)
	h := NewEmailHandler(&mockEmailSvc{}, logs)

	r := httptest.NewRequest(http.MethodGet, "/v1/emails/log?to=kund@example.com", nil)
	rr := httptest.NewRecorder()
	h.Log(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []domain.EmailLogEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "log-1", resp[0].LogID)
	logs.AssertExpectations(t)
}
