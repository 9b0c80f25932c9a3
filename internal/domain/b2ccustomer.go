package domain

import "time"

// B2CCustomer is a consumer-shop account.
type B2CCustomer struct {
	CustomerID    string    `json:"id" dynamodbav:"customer_id"`
	Email         string    `json:"email" dynamodbav:"email"`
	FirstName     string    `json:"first_name" dynamodbav:"first_name"`
	LastName      string    `json:"last_name" dynamodbav:"last_name"`
	PreferredLang string    `json:"preferred_lang" dynamodbav:"preferred_lang"`
	Marketing     bool      `json:"marketing_consent" dynamodbav:"marketing_consent"`
	Active        bool      `json:"active" dynamodbav:"active"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	CredentialID  string    `json:"credential_id,omitempty" dynamodbav:"credential_id"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}
