package domain

import "time"

// Credential is the identity record behind a user, B2C customer or affiliate
// account. Login, password changes and account disabling go through it; the
// owning document keeps a CredentialID reference.
type Credential struct {
	CredentialID string    `json:"id" dynamodbav:"credential_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Disabled     bool      `json:"disabled" dynamodbav:"disabled"`
	GoogleSub    string    `json:"-" dynamodbav:"google_sub"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Session is an issued login session with a rotating refresh token.
type Session struct {
	SessionID        string    `json:"id" dynamodbav:"session_id"`
	CredentialID     string    `json:"credential_id" dynamodbav:"credential_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	RefreshToken     string    `json:"-" dynamodbav:"refresh_token"`
	RefreshExpiresAt int64     `json:"refresh_expires_at" dynamodbav:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
