package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/audit"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/events"
	"github.com/spec-kit/enterprise-onboarding/internal/mailer"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// ReviewService applies admin decisions over partnership requests.
type ReviewService struct {
	requests     repository.RequestRepository
	reviewEvents repository.ReviewEventRepository
	issuer       *CodeService
	mail         mailer.Mailer
	dispatcher   events.Dispatcher
	auditor      *audit.Recorder
	logger       *zap.Logger
}

// ReviewDependencies bundles collaborators for the review workflow.
type ReviewDependencies struct {
	RequestRepo     repository.RequestRepository
	ReviewEventRepo repository.ReviewEventRepository
	Issuer          *CodeService
	Mailer          mailer.Mailer
	Dispatcher      events.Dispatcher
	Auditor         *audit.Recorder
	Logger          *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		requests:     deps.RequestRepo,
		reviewEvents: deps.ReviewEventRepo,
		issuer:       deps.Issuer,
		mail:         deps.Mailer,
		dispatcher:   deps.Dispatcher,
		auditor:      deps.Auditor,
		logger:       deps.Logger,
	}
}

var decisionStatus = map[domain.ReviewAction]domain.RequestStatus{
	domain.ReviewActionApprove: domain.RequestStatusApproved,
	domain.ReviewActionReject:  domain.RequestStatusRejected,
	domain.ReviewActionClarify: domain.RequestStatusClarification,
}

// Reviewers can only act on pending requests and on clarification loops.
// approved moves to completed only through provisioning; rejected and
// completed are terminal.
var reviewableStatuses = map[domain.RequestStatus]bool{
	domain.RequestStatusPending:       true,
	domain.RequestStatusClarification: true,
}

// ApplyDecision transitions a request according to the reviewer's decision,
// appends to the review trail and notifies the applicant. Notification
// failures never fail the decision.
func (s *ReviewService) ApplyDecision(ctx context.Context, requestID string, decision domain.ReviewDecision, actor string) error {
	newStatus, ok := decisionStatus[decision.Action]
	if !ok {
		return util.NewValidationError("unknown review action", map[string]any{"action": decision.Action})
	}
	if decision.Action != domain.ReviewActionApprove && strings.TrimSpace(decision.Reason) == "" {
		return util.NewValidationError("reason required", map[string]any{"action": decision.Action})
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return err
	}
	if !reviewableStatuses[request.Status] {
		return util.NewValidationError("request cannot be reviewed in its current status",
			map[string]any{"status": request.Status})
	}

	patch := repository.ReviewPatch{Status: &newStatus}
	if decision.Action != domain.ReviewActionApprove {
		reason := decision.Reason
		patch.AdminNotes = &reason
	}
	if err := s.requests.UpdateReview(ctx, requestID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return err
	}

	if err := s.appendTrail(ctx, requestID, decision.Action, actor); err != nil {
		return err
	}

	switch decision.Action {
	case domain.ReviewActionApprove:
		if err := s.issuer.IssueForRequest(ctx, requestID); err != nil {
			return err
		}
	default:
		if err := s.mail.SendStatusUpdate(ctx, request.AdminEmail, request.CompanyName, decision.Action, decision.Reason); err != nil {
			s.logger.Warn("status update email failed",
				zap.String("request_id", requestID),
				zap.Error(err))
		}
	}

	s.auditor.Record(ctx, domain.AuditLevelInfo, "request.reviewed", actor, nil,
		fmt.Sprintf("request %s %s", requestID, newStatus),
		map[string]any{"request_id": requestID, "action": decision.Action})
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: requestID,
		Actor:     actor,
		Payload: events.RequestStatusChangedPayload{
			OldStatus:  request.Status,
			NewStatus:  newStatus,
			Reason:     decision.Reason,
			AdminEmail: request.AdminEmail,
			Company:    request.CompanyName,
		},
	})
	return nil
}

func (s *ReviewService) appendTrail(ctx context.Context, requestID string, action domain.ReviewAction, actor string) error {
	var text string
	kind := domain.ReviewEventSuccess
	switch action {
	case domain.ReviewActionApprove:
		text = fmt.Sprintf("Approved by %s", actor)
	case domain.ReviewActionReject:
		text = fmt.Sprintf("Rejected by %s", actor)
	case domain.ReviewActionClarify:
		text = fmt.Sprintf("Clarification Requested by %s", actor)
		kind = domain.ReviewEventWarning
	}
	entry := &domain.ReviewEvent{
		RequestID: requestID,
		Event:     text,
		Kind:      kind,
		Actor:     actor,
	}
	return s.reviewEvents.Append(ctx, entry)
}
