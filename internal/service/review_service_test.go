package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

func TestApplyDecisionApprove(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")
	svc := env.reviewService()

	decision := domain.ReviewDecision{Action: domain.ReviewActionApprove}
	require.NoError(t, svc.ApplyDecision(context.Background(), request.ID, decision, "reviewer-1"))

	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)

	// approval issues the access code and emails the applicant
	require.Len(t, env.codes.codes, 1)
	assert.Equal(t, domain.AccessCodeStatusActive, env.codes.codes[0].Status)
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "access_code", env.mail.sent[0].kind)

	trail, err := env.trail.ListByRequest(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "Approved by reviewer-1", trail[0].Event)
	assert.Equal(t, domain.ReviewEventSuccess, trail[0].Kind)
}

func TestApplyDecisionReject(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")
	svc := env.reviewService()

	decision := domain.ReviewDecision{Action: domain.ReviewActionReject, Reason: "incomplete registration papers"}
	require.NoError(t, svc.ApplyDecision(context.Background(), request.ID, decision, "reviewer-1"))

	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, stored.Status)
	assert.Equal(t, "incomplete registration papers", stored.AdminNotes)

	assert.Empty(t, env.codes.codes)
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "status_update", env.mail.sent[0].kind)
	assert.Equal(t, domain.ReviewActionReject, env.mail.sent[0].action)
}

func TestApplyDecisionReasonRequired(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")
	svc := env.reviewService()

	for _, action := range []domain.ReviewAction{domain.ReviewActionReject, domain.ReviewActionClarify} {
		err := svc.ApplyDecision(context.Background(), request.ID, domain.ReviewDecision{Action: action, Reason: "  "}, "reviewer-1")
		assert.True(t, util.HasCode(err, "VALIDATION_FAILED"), "action %s", action)
	}

	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, stored.Status)
}

func TestApplyDecisionUnknownAction(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")

	err := env.reviewService().ApplyDecision(context.Background(), request.ID,
		domain.ReviewDecision{Action: "escalate"}, "reviewer-1")
	assert.True(t, util.HasCode(err, "VALIDATION_FAILED"))
}

func TestApplyDecisionUnknownRequest(t *testing.T) {
	env := newTestEnv()
	err := env.reviewService().ApplyDecision(context.Background(), "missing",
		domain.ReviewDecision{Action: domain.ReviewActionApprove}, "reviewer-1")
	assert.True(t, util.HasCode(err, "NOT_FOUND"))
}

func TestApplyDecisionTerminalStatuses(t *testing.T) {
	env := newTestEnv()
	svc := env.reviewService()

	for _, status := range []domain.RequestStatus{
		domain.RequestStatusApproved,
		domain.RequestStatusRejected,
		domain.RequestStatusCompleted,
	} {
		request := env.seedRequest(status, "jane@acme.com")
		err := svc.ApplyDecision(context.Background(), request.ID,
			domain.ReviewDecision{Action: domain.ReviewActionApprove}, "reviewer-1")
		assert.True(t, util.HasCode(err, "VALIDATION_FAILED"), "status %s", status)
	}
}

func TestClarificationLoop(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")
	svc := env.reviewService()

	clarify := domain.ReviewDecision{Action: domain.ReviewActionClarify, Reason: "need a registration number"}
	require.NoError(t, svc.ApplyDecision(context.Background(), request.ID, clarify, "reviewer-1"))

	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusClarification, stored.Status)

	// a clarified request stays reviewable
	approve := domain.ReviewDecision{Action: domain.ReviewActionApprove}
	require.NoError(t, svc.ApplyDecision(context.Background(), request.ID, approve, "reviewer-2"))

	stored, err = env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)

	trail, err := env.trail.ListByRequest(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "Clarification Requested by reviewer-1", trail[0].Event)
	assert.Equal(t, domain.ReviewEventWarning, trail[0].Kind)
	assert.Equal(t, "Approved by reviewer-2", trail[1].Event)
}

func TestApplyDecisionMailFailureDoesNotFailDecision(t *testing.T) {
	env := newTestEnv()
	request := env.seedRequest(domain.RequestStatusPending, "jane@acme.com")
	env.mail.failAll = assert.AnError
	svc := env.reviewService()

	decision := domain.ReviewDecision{Action: domain.ReviewActionReject, Reason: "duplicate application"}
	require.NoError(t, svc.ApplyDecision(context.Background(), request.ID, decision, "reviewer-1"))

	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, stored.Status)
}
