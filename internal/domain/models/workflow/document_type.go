package workflow

import "time"

// DocumentType defines a numbering prefix for a class of documents
// (e.g. FORM, SOP, DWG). The prefix is stable and unique within a tenant;
// next_number is the monotonic counter the numbering authority hands out.
// Types are never deleted once documents reference them - deactivation
// hides them from creation flows while existing documents remain valid.
type DocumentType struct {
	ID         string    `json:"id" db:"id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	Prefix     string    `json:"prefix" db:"prefix"` // uppercase token, unique per tenant
	Name       string    `json:"name" db:"name"`
	NextNumber int       `json:"next_number" db:"next_number"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
