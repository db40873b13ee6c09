package models

import (
	"github.com/golang-jwt/jwt/v5"

	workflow "docflow/internal/domain/models/workflow"
)

// AccessClaims is the JWT claims structure issued by the identity
// provider. Tenant membership and the admin flag ride in app_metadata
// so users cannot self-assign them.
type AccessClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	AppMetadata          struct {
		TenantID string `json:"tenant_id"`
		IsAdmin  bool   `json:"is_admin"`
	} `json:"app_metadata"`
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}

// Actor converts verified claims into the identity the engine passes
// through every service call.
func (c *AccessClaims) Actor() workflow.Actor {
	return workflow.Actor{
		UserID:   c.Subject,
		Email:    c.Email,
		TenantID: c.AppMetadata.TenantID,
		IsAdmin:  c.AppMetadata.IsAdmin,
	}
}
