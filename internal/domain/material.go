package domain

import "time"

// MarketingMaterial is the metadata record for a file stored in S3. Generic
// materials have no CustomerID; customer-specific ones are removed as part of
// the account deletion cascade.
type MarketingMaterial struct {
	MaterialID  string    `json:"id" dynamodbav:"material_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Key         string    `json:"key" dynamodbav:"key"`
	Size        int64     `json:"size" dynamodbav:"size"`
	ContentType string    `json:"content_type" dynamodbav:"content_type"`
	CustomerID  string    `json:"customer_id,omitempty" dynamodbav:"customer_id"`
	UploadedBy  string    `json:"uploaded_by" dynamodbav:"uploaded_by"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

// AdminDocument is an internal note or document an admin attached to a
// customer account. Removed by the account deletion cascade.
type AdminDocument struct {
	DocumentID string    `json:"id" dynamodbav:"document_id"`
	CustomerID string    `json:"customer_id" dynamodbav:"customer_id"`
	Title      string    `json:"title" dynamodbav:"title"`
	Content    string    `json:"content" dynamodbav:"content"`
	CreatedBy  string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
