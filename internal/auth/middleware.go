package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

const claimsKey = "reviewer_claims"

// Middleware guards the admin review surface with reviewer JWTs.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the guard.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle extracts and verifies the bearer token.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return util.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ReviewerFromContext returns the authenticated reviewer claims, if any.
func ReviewerFromContext(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsKey).(*Claims)
	return claims
}
