package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/api/dto"
	"github.com/spec-kit/enterprise-onboarding/internal/auth"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/service"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// ReviewHandler exposes the admin decision surface.
type ReviewHandler struct {
	review *service.ReviewService
	codes  *service.CodeService
}

// NewReviewHandler constructs handler.
func NewReviewHandler(review *service.ReviewService, codes *service.CodeService) *ReviewHandler {
	return &ReviewHandler{review: review, codes: codes}
}

// ApplyDecision handles POST /admin/enterprise/requests/:id/decision.
func (h *ReviewHandler) ApplyDecision(c *fiber.Ctx) error {
	var payload dto.ReviewDecisionPayload
	if err := c.BodyParser(&payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	decision := domain.ReviewDecision{
		Action: domain.ReviewAction(payload.Action),
		Reason: payload.Reason,
	}
	if err := h.review.ApplyDecision(c.UserContext(), c.Params("id"), decision, reviewerName(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RevokeCode handles POST /admin/enterprise/requests/:id/code/revoke.
func (h *ReviewHandler) RevokeCode(c *fiber.Ctx) error {
	if err := h.codes.Revoke(c.UserContext(), c.Params("id"), reviewerName(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ResendCode handles POST /admin/enterprise/requests/:id/code/resend.
func (h *ReviewHandler) ResendCode(c *fiber.Ctx) error {
	if err := h.codes.IssueForRequest(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func reviewerName(c *fiber.Ctx) string {
	if claims := auth.ReviewerFromContext(c); claims != nil && claims.Name != "" {
		return claims.Name
	}
	return "admin"
}
