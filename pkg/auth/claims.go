package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	BrandID *uuid.UUID
	Role    enums.MemberRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID        `json:"user_id"`
	BrandID *uuid.UUID       `json:"brand_id,omitempty"`
	Role    enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated principal attached to request contexts after
// the auth middleware has validated the token.
type Actor struct {
	UserID  uuid.UUID
	BrandID *uuid.UUID
	Role    enums.MemberRole
}

// OwnsBrand reports whether the actor operates the given brand wallet.
// Operators pass regardless of brand binding.
func (a Actor) OwnsBrand(brandID uuid.UUID) bool {
	if a.Role.IsOperator() {
		return true
	}
	return a.BrandID != nil && *a.BrandID == brandID
}
