package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/session"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	jwtinfra "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/jwt"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

// --- mock ---

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) Login(ctx context.Context, req domain.LoginRequest) (*session.TokenPair, error) {
	args := m.Called(ctx, req)
	if p, _ := args.Get(0).(*session.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*session.TokenPair, error) {
	args := m.Called(ctx, req)
	if p, _ := args.Get(0).(*session.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Refresh(ctx context.Context, req domain.RefreshRequest) (*session.TokenPair, error) {
	args := m.Called(ctx, req)
	if p, _ := args.Get(0).(*session.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given credential and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, credentialID, email, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(credentialID, email, role, "sess-1")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiParam injects an arbitrary chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

// --- tests ---

func TestLogin_InvalidBody(t *testing.T) {
	h := NewSessionHandler(&mockSessionSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Login(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_ValidationFailure(t *testing.T) {
	h := NewSessionHandler(&mockSessionSvc{})
	body, _ := json.Marshal(domain.LoginRequest{Email: "not-an-email", Password: "x"})
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)
	h := NewSessionHandler(svc)
	body, _ := json.Marshal(domain.LoginRequest{Email: "kund@example.com", Password: "wrong"})
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertExpectations(t)
}

func TestLogin_HappyPath(t *testing.T) {
	svc := &mockSessionSvc{}
	pair := &session.TokenPair{AccessToken: "access", RefreshToken: "refresh", Role: domain.RoleUser}
	svc.On("Login", mock.Anything, mock.Anything).Return(pair, nil)
	h := NewSessionHandler(svc)
	body, _ := json.Marshal(domain.LoginRequest{Email: "kund@example.com", Password: "secret123"})
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	svc.AssertExpectations(t)
}

func TestLogout_UsesSessionFromClaims(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockSessionSvc{}
	svc.On("Logout", mock.Anything, "sess-1").Return(nil)
	h := NewSessionHandler(svc)

	r := bearerReq(t, p, http.MethodDelete, "/v1/sessions", "cred-1", "kund@example.com", domain.RoleUser, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Logout), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLogout_MissingClaims(t *testing.T) {
	h := NewSessionHandler(&mockSessionSvc{})
	r := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
