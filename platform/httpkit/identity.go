// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	// ContextIdentityKey is the gin context key for the resolved caller identity.
	ContextIdentityKey = "identity"

	// AnonymousUserID is the identity assigned to callers without a cookie.
	AnonymousUserID = "anonymous"

	// RoleAdmin bypasses record ownership checks. It is carried as an
	// explicit role on the user record, never inferred from the user ID.
	RoleAdmin = "admin"

	// HeaderUserID is the fallback header when no identity cookie is present.
	HeaderUserID = "x-user-id"
)

// Identity represents the caller's identity for the duration of a request.
// This interface abstracts identity extraction from the web framework,
// allowing services to check ownership without depending on Gin.
type Identity interface {
	// UserID returns the caller's opaque identifier, or AnonymousUserID.
	UserID() string
	// Roles returns the caller's assigned roles.
	Roles() []string
	// HasRole checks if the caller has a specific role.
	HasRole(role string) bool
	// IsAnonymous reports whether no identity cookie or header was present.
	IsAnonymous() bool
}

// RoleResolver looks up the roles attached to a known user identifier.
// Unknown identifiers resolve to no roles.
type RoleResolver interface {
	ResolveRoles(ctx context.Context, userID string) []string
}

type identity struct {
	userID    string
	roles     []string
	anonymous bool
}

func (i *identity) UserID() string {
	return i.userID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAnonymous() bool {
	return i.anonymous
}

// NewIdentity builds a concrete identity. Exposed for tests and for the
// identity middleware.
func NewIdentity(userID string, roles []string) Identity {
	if userID == "" {
		return Anonymous()
	}
	return &identity{userID: userID, roles: roles}
}

// Anonymous returns the identity used when no cookie or header is present.
func Anonymous() Identity {
	return &identity{userID: AnonymousUserID, anonymous: true}
}

// ResolveIdentity returns middleware that extracts the caller identity from
// the identity cookie (fallback: HeaderUserID header) and resolves its roles.
// Absent identity defaults to AnonymousUserID; requests are never rejected
// here, ownership checks happen in the services.
func ResolveIdentity(cookieName string, resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := c.Cookie(cookieName)
		if err != nil || userID == "" {
			userID = c.GetHeader(HeaderUserID)
		}

		if userID == "" {
			c.Set(ContextIdentityKey, Anonymous())
			c.Next()
			return
		}

		var roles []string
		if resolver != nil {
			roles = resolver.ResolveRoles(c.Request.Context(), userID)
		}
		c.Set(ContextIdentityKey, NewIdentity(userID, roles))
		c.Next()
	}
}

// GetIdentity extracts the Identity from a Gin context.
// Returns the anonymous identity if the middleware did not run.
func GetIdentity(c *gin.Context) Identity {
	value, ok := c.Get(ContextIdentityKey)
	if !ok {
		return Anonymous()
	}
	id, ok := value.(Identity)
	if !ok {
		return Anonymous()
	}
	return id
}
