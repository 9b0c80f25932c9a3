package domain

// Credential deletion outcomes reported by the account-deletion cascade.
const (
	AuthDeletedByUID   = "deleted_by_uid"
	AuthDeletedByEmail = "deleted_by_email"
	AuthNotFound       = "not_found"
	AuthDeleteFailed   = "failed"
)

// CascadeStep captures one best-effort step of a multi-collection cleanup.
// A failed step is recorded and never aborts the remaining steps.
type CascadeStep struct {
	Step      string `json:"step"`
	Succeeded bool   `json:"succeeded"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
}

// DeletionResult is the envelope returned by customer account deletion.
type DeletionResult struct {
	Success            bool          `json:"success"`
	AuthDeletionResult string        `json:"authDeletionResult"`
	DeletionResults    map[string]int `json:"deletionResults"`
	Steps              []CascadeStep `json:"steps"`
}
