package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

func TestValidateIssuedCodeRoundTrip(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))

	svc := env.validationService()
	result, err := svc.Validate(context.Background(), plaintext, "jane@acme.com")
	require.NoError(t, err)

	assert.Equal(t, request.ID, result.RequestID)
	assert.Equal(t, "Acme Corp", result.CompanyName)
	assert.Equal(t, "jane@acme.com", result.AdminEmail)
	assert.False(t, result.OrgExists)
	assert.False(t, result.UserExists)
}

func TestValidateIsCaseAndWhitespaceInsensitive(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))

	svc := env.validationService()
	submitted := "  " + strings.ToLower(plaintext) + "  "
	result, err := svc.Validate(context.Background(), submitted, "")
	require.NoError(t, err)
	assert.Equal(t, request.ID, result.RequestID)
}

func TestValidateEmptyCode(t *testing.T) {
	env := newTestEnv()
	_, err := env.validationService().Validate(context.Background(), "   ", "")
	assert.True(t, util.HasCode(err, "VALIDATION_FAILED"))
}

func TestValidateUnknownCode(t *testing.T) {
	env := newTestEnv()
	_, err := env.validationService().Validate(context.Background(), "ZZZ-ZZZ-ZZZ", "")
	assert.True(t, util.HasCode(err, "INVALID_CODE"))
	assert.Equal(t, 1, env.limiter.failures[HashCode("ZZZ-ZZZ-ZZZ")])
}

func TestValidateUsedCodeBeatsExpiry(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	// expired AND used: the used status must win
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(-time.Hour))
	env.codes.codes[0].Status = domain.AccessCodeStatusUsed

	_, err := env.validationService().Validate(context.Background(), plaintext, "")
	require.True(t, util.HasCode(err, "INVALID_STATUS"))

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.AccessCodeStatusUsed, domain.AccessCodeStatus(domainErr.Details["status"].(string)))
}

func TestValidateExpiredCode(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(-time.Minute))

	_, err := env.validationService().Validate(context.Background(), plaintext, "jane@acme.com")
	assert.True(t, util.HasCode(err, "EXPIRED"))
}

func TestValidateRevokedCode(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))
	env.codes.codes[0].Status = domain.AccessCodeStatusRevoked

	_, err := env.validationService().Validate(context.Background(), plaintext, "")
	assert.True(t, util.HasCode(err, "INVALID_STATUS"))
}

func TestValidateDomainLock(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))
	svc := env.validationService()

	// same domain, different mailbox: allowed
	_, err := svc.Validate(context.Background(), plaintext, "ops@ACME.com")
	require.NoError(t, err)

	// foreign domain: refused and counted as a failed attempt
	_, err = svc.Validate(context.Background(), plaintext, "jane@other.com")
	assert.True(t, util.HasCode(err, "PERMISSION_DENIED"))
	assert.Equal(t, 1, env.limiter.failures[HashCode(plaintext)])
}

func TestValidateThrottled(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))
	env.limiter.blocked[HashCode(plaintext)] = true

	_, err := env.validationService().Validate(context.Background(), plaintext, "jane@acme.com")
	assert.True(t, util.HasCode(err, "PERMISSION_DENIED"))
}

func TestValidateReportsExistingOrgAndUser(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusApproved, "jane@acme.com")
	plaintext := env.seedActiveCode(request.ID, time.Now().Add(time.Hour))

	require.NoError(t, env.orgs.UpsertByRequest(context.Background(), &domain.Organization{
		RequestID: request.ID,
		Name:      "Acme Corp",
		Status:    domain.OrganizationStatusActive,
	}))
	require.NoError(t, env.profiles.Upsert(context.Background(), &domain.Profile{
		UserID: "user-1",
		Email:  "jane@acme.com",
	}))

	result, err := env.validationService().Validate(context.Background(), plaintext, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, result.OrgExists)
	assert.True(t, result.UserExists)
}

func TestSameEmailDomain(t *testing.T) {
	assert.True(t, SameEmailDomain("a@acme.com", "b@ACME.COM"))
	assert.False(t, SameEmailDomain("a@acme.com", "a@other.com"))
	assert.False(t, SameEmailDomain("not-an-email", "a@acme.com"))
	assert.False(t, SameEmailDomain("trailing@", "x@"))
}
