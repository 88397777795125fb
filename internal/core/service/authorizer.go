package service

import (
	"strings"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyInsufficientRole
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyInsufficientRole:
		return "insufficient_role"
	default:
		return "unknown"
	}
}

// Err maps a denial onto the matching domain error; Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrForbidden
	}
}

// Policy is the access rule attached to one route or GraphQL operation.
type Policy struct {
	// MinRole is the role floor.
	MinRole domain.Role
	// Identified requires a valid identity even when MinRole is ANONYMOUS.
	Identified bool
	// Owned applies the ownership rule against the target owner id.
	Owned bool
	// OwnerParam names the path parameter or argument holding the owner id.
	// When it is empty or absent the caller's own id is the target.
	OwnerParam string
}

// Public is the policy of routes anyone may call.
var Public = Policy{MinRole: domain.RoleAnonymous}

// Authorizer turns bearer headers into claims and evaluates policies.
type Authorizer struct {
	tokens ports.TokenService
}

func NewAuthorizer(tokens ports.TokenService) *Authorizer {
	return &Authorizer{tokens: tokens}
}

// Authenticate extracts the claims from an Authorization header value.
// Anything other than "Bearer <valid token>" yields nil, meaning anonymous.
func (a *Authorizer) Authenticate(header string) *domain.Claims {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[0] != "Bearer" {
		return nil
	}
	claims, err := a.tokens.Verify(parts[1])
	if err != nil {
		return nil
	}
	return &claims
}

// Authorize checks the caller against a role floor.
func Authorize(claims *domain.Claims, required domain.Role) Decision {
	if required == domain.RoleAnonymous {
		return Allow
	}
	if claims == nil {
		return DenyUnauthenticated
	}
	if claims.Role.Satisfies(required) {
		return Allow
	}
	return DenyInsufficientRole
}

// CanAct reports whether the caller may act on a resource owned by ownerID.
func CanAct(claims *domain.Claims, ownerID int64) bool {
	if claims == nil {
		return false
	}
	return claims.Role == domain.RoleAdmin || claims.ID == ownerID
}

// Check evaluates a full policy. ownerID is only consulted when the policy
// is Owned.
func (a *Authorizer) Check(claims *domain.Claims, p Policy, ownerID int64) Decision {
	if d := Authorize(claims, p.MinRole); d != Allow {
		return d
	}
	if (p.Identified || p.Owned) && claims == nil {
		return DenyUnauthenticated
	}
	if p.Owned && !CanAct(claims, ownerID) {
		return DenyInsufficientRole
	}
	return Allow
}
