package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/audit"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/events"
	"github.com/spec-kit/enterprise-onboarding/internal/mailer"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a 9-character access code drawn from [A-Z0-9],
// grouped in dash-separated triplets (e.g. AB3-K9Q-7ZT). The code is a bearer
// credential, so bytes come from a cryptographically secure source.
func GenerateCode() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	chars := make([]byte, 0, 11)
	for i, b := range buf {
		if i > 0 && i%3 == 0 {
			chars = append(chars, '-')
		}
		chars = append(chars, codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return string(chars), nil
}

// NormalizeCode trims surrounding whitespace and upper-cases a submitted code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HashCode returns the SHA-256 hex digest of the normalized code. The digest
// is the equality lookup key in the store.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(NormalizeCode(code)))
	return hex.EncodeToString(sum[:])
}

// CodeService issues and redispatches access codes for approved requests.
type CodeService struct {
	codes      repository.AccessCodeRepository
	requests   repository.RequestRepository
	mail       mailer.Mailer
	dispatcher events.Dispatcher
	auditor    *audit.Recorder
	logger     *zap.Logger
	codeTTL    time.Duration
}

// CodeDependencies bundles collaborators for the code service.
type CodeDependencies struct {
	CodeRepo    repository.AccessCodeRepository
	RequestRepo repository.RequestRepository
	Mailer      mailer.Mailer
	Dispatcher  events.Dispatcher
	Auditor     *audit.Recorder
	Logger      *zap.Logger
	CodeTTL     time.Duration
}

// NewCodeService constructs the service.
func NewCodeService(deps CodeDependencies) *CodeService {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &CodeService{
		codes:      deps.CodeRepo,
		requests:   deps.RequestRepo,
		mail:       deps.Mailer,
		dispatcher: deps.Dispatcher,
		auditor:    deps.Auditor,
		logger:     deps.Logger,
		codeTTL:    ttl,
	}
}

// IssueForRequest mints an access code for an approved request, or resends
// the existing active one. At most one active code exists per request, so
// calling this twice is safe.
func (s *CodeService) IssueForRequest(ctx context.Context, requestID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return err
	}

	existing, err := s.codes.GetActiveByRequest(ctx, requestID)
	if err == nil {
		s.sendCodeEmail(ctx, request, existing.Code)
		s.publish(ctx, events.Event{
			Type:      events.EventAccessCodeIssued,
			RequestID: requestID,
			Payload: events.AccessCodeIssuedPayload{
				CodeID:    existing.ID,
				Resent:    true,
				ExpiresAt: existing.ExpiresAt,
			},
		})
		s.auditor.Record(ctx, domain.AuditLevelInfo, "access_code.resent", "", nil,
			fmt.Sprintf("resent access code for %s", request.CompanyName),
			map[string]any{"request_id": requestID})
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	plaintext, err := GenerateCode()
	if err != nil {
		return err
	}
	code := &domain.AccessCode{
		RequestID: requestID,
		Code:      plaintext,
		CodeHash:  HashCode(plaintext),
		Status:    domain.AccessCodeStatusActive,
		ExpiresAt: time.Now().Add(s.codeTTL),
	}
	if err := s.codes.Create(ctx, code); err != nil {
		return err
	}

	s.sendCodeEmail(ctx, request, plaintext)
	s.publish(ctx, events.Event{
		Type:      events.EventAccessCodeIssued,
		RequestID: requestID,
		Payload: events.AccessCodeIssuedPayload{
			CodeID:    code.ID,
			Resent:    false,
			ExpiresAt: code.ExpiresAt,
		},
	})
	s.auditor.Record(ctx, domain.AuditLevelInfo, "access_code.issued", "", nil,
		fmt.Sprintf("issued access code for %s", request.CompanyName),
		map[string]any{"request_id": requestID, "expires_at": code.ExpiresAt})
	return nil
}

// Revoke manually invalidates the active code for a request.
func (s *CodeService) Revoke(ctx context.Context, requestID, actor string) error {
	code, err := s.codes.GetActiveByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("active access code", map[string]any{"request_id": requestID})
		}
		return err
	}
	revoked, err := s.codes.Revoke(ctx, code.ID)
	if err != nil {
		return err
	}
	if !revoked {
		return util.NewInvalidStatus(string(code.Status))
	}
	s.auditor.Record(ctx, domain.AuditLevelWarning, "access_code.revoked", actor, nil,
		"access code revoked", map[string]any{"request_id": requestID})
	return nil
}

func (s *CodeService) sendCodeEmail(ctx context.Context, request *domain.EnterpriseRequest, code string) {
	if err := s.mail.SendAccessCode(ctx, request.AdminName, request.CompanyName, request.AdminEmail, code); err != nil {
		s.logger.Warn("access code email failed",
			zap.String("request_id", request.ID),
			zap.Error(err))
	}
}

func (s *CodeService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}
