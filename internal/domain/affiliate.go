package domain

import "time"

// Affiliate lifecycle statuses.
const (
	AffiliatePending   = "pending"
	AffiliateActive    = "active"
	AffiliateSuspended = "suspended"
	AffiliateDenied    = "denied"
)

// Affiliate is a referral partner with a commission rate and a discount code,
// onboarded via an approval workflow that provisions a credential and sends
// login details by email.
type Affiliate struct {
	AffiliateID      string         `json:"id" dynamodbav:"affiliate_id"`
	Email            string         `json:"email" dynamodbav:"email"`
	Name             string         `json:"name" dynamodbav:"name"`
	Status           string         `json:"status" dynamodbav:"status"`
	Code             string         `json:"affiliate_code,omitempty" dynamodbav:"affiliate_code"`
	CommissionRate   float64        `json:"commission_rate" dynamodbav:"commission_rate"`
	CheckoutDiscount float64        `json:"checkout_discount" dynamodbav:"checkout_discount"`
	PreferredLang    string         `json:"preferred_lang" dynamodbav:"preferred_lang"`
	CredentialID     string         `json:"credential_id,omitempty" dynamodbav:"credential_id"`
	Website          *string        `json:"website" dynamodbav:"website"`
	Stats            AffiliateStats `json:"stats" dynamodbav:"stats"`
	CreatedAt        time.Time      `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time      `json:"updated" dynamodbav:"updated_at"`
}

type AffiliateStats struct {
	Clicks        int     `json:"clicks" dynamodbav:"clicks"`
	Conversions   int     `json:"conversions" dynamodbav:"conversions"`
	TotalEarnings float64 `json:"total_earnings" dynamodbav:"total_earnings"`
}

type AffiliateApplicationRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Name          string  `json:"name" validate:"required"`
	Website       *string `json:"website"`
	Message       string  `json:"message"`
	PreferredLang string  `json:"preferred_lang"`
}

type ApproveAffiliateRequest struct {
	AffiliateID      string  `json:"affiliate_id" validate:"required"`
	CommissionRate   float64 `json:"commission_rate"`
	CheckoutDiscount float64 `json:"checkout_discount"`
}
