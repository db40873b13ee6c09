package workflow

// Actor is the authenticated principal performing an engine operation.
// It is passed explicitly into every engine call; the engine never reads
// identity from ambient state. The identity provider is trusted to have
// verified these values.
type Actor struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
	IsAdmin  bool   `json:"is_admin"`
}
