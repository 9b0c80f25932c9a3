package domain

import "time"

// EmailType tags every outbound email with the template and from-address
// rules that apply to it.
type EmailType string

const (
	EmailOrderConfirmation      EmailType = "ORDER_CONFIRMATION"
	EmailOrderStatusUpdate      EmailType = "ORDER_STATUS_UPDATE"
	EmailOrderNotificationAdmin EmailType = "ORDER_NOTIFICATION_ADMIN"
	EmailWelcome                EmailType = "WELCOME"
	EmailPasswordReset          EmailType = "PASSWORD_RESET"
	EmailAffiliateWelcome       EmailType = "AFFILIATE_WELCOME"
	EmailVerification           EmailType = "VERIFICATION"
	EmailAddressVerification    EmailType = "EMAIL_VERIFICATION"
	EmailLoginCredentials       EmailType = "LOGIN_CREDENTIALS"
	EmailAffiliateAppReceived   EmailType = "AFFILIATE_APPLICATION_RECEIVED"
	EmailAffiliateAppAdmin      EmailType = "AFFILIATE_APPLICATION_NOTIFICATION_ADMIN"
	EmailB2BAppReceived         EmailType = "B2B_APPLICATION_RECEIVED"
	EmailB2BAppAdmin            EmailType = "B2B_APPLICATION_NOTIFICATION_ADMIN"
)

// Valid reports whether t is a recognized member of the enumeration.
// Dispatch fails closed on anything else.
func (t EmailType) Valid() bool {
	switch t {
	case EmailOrderConfirmation, EmailOrderStatusUpdate, EmailOrderNotificationAdmin,
		EmailWelcome, EmailPasswordReset, EmailAffiliateWelcome,
		EmailVerification, EmailAddressVerification, EmailLoginCredentials,
		EmailAffiliateAppReceived, EmailAffiliateAppAdmin,
		EmailB2BAppReceived, EmailB2BAppAdmin:
		return true
	}
	return false
}

// EmailContext is the transient value object handed to the email dispatcher.
// Exactly one of the typed payload pointers is set, matching EmailType.
type EmailContext struct {
	EmailType     EmailType
	UserID        string
	B2CCustomerID string
	CustomerInfo  CustomerInfo
	OrderID       string
	Order         *Order
	Language      string
	AdminEmail    bool

	// Per-type payloads (the old loosely-shaped additionalData, split by type).
	Code        *CodePayload
	Credentials *CredentialsPayload
	Application *ApplicationPayload
	Affiliate   *AffiliatePayload
}

// CodePayload carries a one-time code for password reset / verification mails.
type CodePayload struct {
	Code      string
	ExpiresAt time.Time
	ResetURL  string
}

// CredentialsPayload carries provisioned login details.
type CredentialsPayload struct {
	Email             string
	TemporaryPassword string
	LoginURL          string
}

// ApplicationPayload carries B2B/affiliate application details for the
// received/admin-notification mails.
type ApplicationPayload struct {
	ApplicantName string
	CompanyName   string
	Message       string
	AppliedAt     time.Time
}

// AffiliatePayload carries activation details for affiliate mails.
type AffiliatePayload struct {
	Name             string
	Code             string
	CommissionRate   float64
	CheckoutDiscount float64
}

// SendResult is the envelope every email send resolves to.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Email log statuses.
const (
	EmailLogSent   = "sent"
	EmailLogFailed = "failed"
)

// EmailLogEntry records one send attempt, success or not.
type EmailLogEntry struct {
	LogID     string    `json:"id" dynamodbav:"log_id"`
	EmailType string    `json:"email_type" dynamodbav:"email_type"`
	To        string    `json:"to" dynamodbav:"to"`
	From      string    `json:"from" dynamodbav:"from"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Language  string    `json:"language" dynamodbav:"language"`
	Status    string    `json:"status" dynamodbav:"status"`
	Error     string    `json:"error,omitempty" dynamodbav:"error"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
