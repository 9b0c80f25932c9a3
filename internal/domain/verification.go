package domain

import "time"

// PasswordResetRecord is a single-use reset code. A consumed code must never
// authorize a second reset, even with a valid ExpiresAt. Expiry is enforced
// at consumption time; there is no background sweep.
type PasswordResetRecord struct {
	ResetID   string `json:"id" dynamodbav:"reset_id"`
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	Used      bool   `json:"used" dynamodbav:"used"`
}

// EmailVerificationRecord is a single-use email verification code with the
// same consumption rules as password resets.
type EmailVerificationRecord struct {
	VerificationID string `json:"id" dynamodbav:"verification_id"`
	Email          string `json:"email" dynamodbav:"email"`
	Code           string `json:"code" dynamodbav:"code"`
	ExpiresAt      int64  `json:"expires_at" dynamodbav:"expires_at"`
	Verified       bool   `json:"verified" dynamodbav:"verified"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmPasswordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type RequestEmailVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmEmailVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// ResetCodeTTL is how long a password reset code stays valid.
const ResetCodeTTL = 1 * time.Hour

// VerificationCodeTTL is how long an email verification code stays valid.
const VerificationCodeTTL = 24 * time.Hour
