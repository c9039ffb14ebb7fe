// Package auth establishes the caller identity for each request.
// Authentication itself happens upstream; the gateway forwards the
// verified subject as trusted headers.
package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util"
)

const principalKey = "auth_principal"

// Headers carrying the gateway-verified identity.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

// Principal represents the caller of the current request.
type Principal struct {
	SubjectID string
	Role      domain.Role
}

// Actor maps the principal onto the audit actor vocabulary.
func (p *Principal) Actor() domain.AuditActor {
	return domain.AuditActorForRole(p.Role)
}

// Middleware loads the principal from trusted headers.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID := c.Get(HeaderUserID)
		if subjectID == "" {
			return apperrors.NewUnauthorized("missing identity headers")
		}
		role := domain.Role(c.Get(HeaderRole, string(domain.RoleUser)))
		if !domain.ValidRole(role) {
			return apperrors.NewUnauthorized("unknown role")
		}
		c.Locals(principalKey, &Principal{SubjectID: subjectID, Role: role})
		return c.Next()
	}
}

// PrincipalFromContext retrieves the caller identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
