package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/api/dto"
	"github.com/spec-kit/enterprise-onboarding/internal/service"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// SetupHandler exposes the applicant-facing redemption surface. These routes
// are public; the access code itself is the credential.
type SetupHandler struct {
	validator    *service.ValidationService
	provisioning *service.ProvisioningService
}

// NewSetupHandler constructs handler.
func NewSetupHandler(validator *service.ValidationService, provisioning *service.ProvisioningService) *SetupHandler {
	return &SetupHandler{validator: validator, provisioning: provisioning}
}

// ValidateCode handles POST /enterprise/setup/validate.
func (h *SetupHandler) ValidateCode(c *fiber.Ctx) error {
	var payload dto.ValidateCodePayload
	if err := c.BodyParser(&payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	result, err := h.validator.Validate(c.UserContext(), payload.Code, payload.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.ValidateCodeResponse{
			RequestID:   result.RequestID,
			CompanyName: result.CompanyName,
			AdminEmail:  result.AdminEmail,
			AdminName:   result.AdminName,
			Industry:    result.Industry,
			CompanySize: result.CompanySize,
			Website:     result.Website,
			OrgExists:   result.OrgExists,
			UserExists:  result.UserExists,
		},
	})
}

// CompleteSetup handles POST /enterprise/setup/complete.
func (h *SetupHandler) CompleteSetup(c *fiber.Ctx) error {
	var payload dto.CompleteSetupPayload
	if err := c.BodyParser(&payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	result, err := h.provisioning.CompleteSetup(c.UserContext(), service.SetupInput{
		Code:        payload.Code,
		Email:       payload.Email,
		Password:    payload.Password,
		FullName:    payload.FullName,
		Phone:       payload.Phone,
		OrgName:     payload.OrgName,
		Industry:    payload.Industry,
		CompanySize: payload.CompanySize,
		Website:     payload.Website,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.CompleteSetupResponse{
			OrgID:  result.OrgID,
			UserID: result.UserID,
		},
	})
}
