package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/api/dto"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	"github.com/spec-kit/enterprise-onboarding/internal/service"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// RequestsHandler exposes submission and the admin registry surface.
type RequestsHandler struct {
	registry *service.RegistryService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(registry *service.RegistryService) *RequestsHandler {
	return &RequestsHandler{registry: registry}
}

// Submit handles POST /enterprise/requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	var payload dto.SubmitRequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	request, err := h.registry.Submit(c.UserContext(), service.SubmitInput{
		CompanyName: payload.CompanyName,
		Industry:    payload.Industry,
		CompanySize: payload.CompanySize,
		Website:     payload.Website,
		AdminName:   payload.AdminName,
		AdminEmail:  payload.AdminEmail,
		AdminPhone:  payload.AdminPhone,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": toRequestView(*request),
	})
}

// List handles GET /admin/enterprise/requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	requests, err := h.registry.List(c.UserContext())
	if err != nil {
		return err
	}

	views := make([]dto.RequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, toRequestView(request))
	}
	return c.JSON(fiber.Map{"data": views})
}

// UpdateReview handles PATCH /admin/enterprise/requests/:id/review.
func (h *RequestsHandler) UpdateReview(c *fiber.Ctx) error {
	var payload dto.ReviewUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	err := h.registry.UpdateReview(c.UserContext(), c.Params("id"), repository.ReviewPatch{
		AdminNotes: payload.AdminNotes,
		Checklist:  payload.Checklist,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Overview handles GET /admin/enterprise/access-codes.
func (h *RequestsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.registry.AccessCodesOverview(c.UserContext())
	if err != nil {
		return err
	}

	codes := make([]dto.AccessCodeView, 0, len(overview.Codes))
	for _, row := range overview.Codes {
		codes = append(codes, dto.AccessCodeView{
			ID:          row.Code.ID,
			RequestID:   row.Code.RequestID,
			Status:      string(row.EffectiveStatus),
			ExpiresAt:   row.Code.ExpiresAt,
			UsedCount:   row.Code.UsedCount,
			CompanyName: row.CompanyName,
			AdminEmail:  row.AdminEmail,
			CreatedAt:   row.Code.CreatedAt,
		})
	}

	activity := make([]fiber.Map, 0, len(overview.Activity))
	for _, entry := range overview.Activity {
		activity = append(activity, fiber.Map{
			"level":       entry.Level,
			"action_code": entry.ActionCode,
			"actor":       entry.Actor,
			"message":     entry.Message,
			"created_at":  entry.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"codes": codes,
			"stats": fiber.Map{
				"active_count":        overview.Stats.ActiveCount,
				"expiring_soon_count": overview.Stats.ExpiringSoonCount,
				"total_redemptions":   overview.Stats.TotalRedemptions,
			},
			"activity": activity,
		},
	})
}

func toRequestView(request domain.EnterpriseRequest) dto.RequestView {
	events := make([]dto.ReviewEventView, 0, len(request.ReviewEvents))
	for _, event := range request.ReviewEvents {
		events = append(events, dto.ReviewEventView{
			Event:     event.Event,
			Kind:      string(event.Kind),
			Actor:     event.Actor,
			CreatedAt: event.CreatedAt,
		})
	}
	return dto.RequestView{
		ID:           request.ID,
		CompanyName:  request.CompanyName,
		Domain:       request.Domain,
		Industry:     request.Industry,
		CompanySize:  request.CompanySize,
		Website:      request.Website,
		AdminName:    request.AdminName,
		AdminEmail:   request.AdminEmail,
		Status:       string(request.Status),
		AdminNotes:   request.AdminNotes,
		Checklist:    request.Checklist,
		ReviewEvents: events,
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}
