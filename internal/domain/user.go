package domain

import "time"

// Account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a B2B customer account (resellers and admins share this table).
type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Email         string    `json:"email" dynamodbav:"email"`
	CompanyName   string    `json:"company_name" dynamodbav:"company_name"`
	ContactPerson string    `json:"contact_person" dynamodbav:"contact_person"`
	Phone         *string   `json:"phone" dynamodbav:"phone"`
	Role          string    `json:"role" dynamodbav:"role"`
	Active        bool      `json:"active" dynamodbav:"active"`
	PreferredLang string    `json:"preferred_lang" dynamodbav:"preferred_lang"`
	MarginPercent int       `json:"margin_percent" dynamodbav:"margin_percent"`
	CredentialID  string    `json:"credential_id,omitempty" dynamodbav:"credential_id"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateAdminUserRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person" validate:"required"`
	PreferredLang string `json:"preferred_lang"`
}

type B2BApplicationRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	CompanyName   string  `json:"company_name" validate:"required"`
	ContactPerson string  `json:"contact_person" validate:"required"`
	Phone         *string `json:"phone"`
	OrgNumber     string  `json:"org_number"`
	Message       string  `json:"message"`
	PreferredLang string  `json:"preferred_lang"`
}
