package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/audit"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/identity"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
)

type testEnv struct {
	requests    *fakeRequestRepo
	codes       *fakeCodeRepo
	orgs        *fakeOrgRepo
	profiles    *fakeProfileRepo
	memberships *fakeMembershipRepo
	trail       *fakeReviewEventRepo
	auditLogs   *fakeAuditRepo
	identities  *fakeIdentityProvider
	mail        *fakeMailer
	limiter     *blockingLimiter
	auditor     *audit.Recorder
}

func newTestEnv() *testEnv {
	requests := newFakeRequestRepo()
	auditLogs := &fakeAuditRepo{}
	return &testEnv{
		requests:    requests,
		codes:       newFakeCodeRepo(requests),
		orgs:        newFakeOrgRepo(),
		profiles:    newFakeProfileRepo(),
		memberships: newFakeMembershipRepo(),
		trail:       &fakeReviewEventRepo{},
		auditLogs:   auditLogs,
		identities:  newFakeIdentityProvider(),
		mail:        &fakeMailer{},
		limiter:     newBlockingLimiter(),
		auditor:     audit.NewRecorder(auditLogs, zap.NewNop()),
	}
}

func (e *testEnv) codeService(ttl time.Duration) *CodeService {
	return NewCodeService(CodeDependencies{
		CodeRepo:    e.codes,
		RequestRepo: e.requests,
		Mailer:      e.mail,
		Auditor:     e.auditor,
		Logger:      zap.NewNop(),
		CodeTTL:     ttl,
	})
}

func (e *testEnv) validationService() *ValidationService {
	return NewValidationService(ValidationDependencies{
		CodeRepo:    e.codes,
		OrgRepo:     e.orgs,
		ProfileRepo: e.profiles,
		Limiter:     e.limiter,
		Logger:      zap.NewNop(),
	})
}

func (e *testEnv) provisioningService() *ProvisioningService {
	return NewProvisioningService(ProvisioningDependencies{
		CodeRepo:       e.codes,
		RequestRepo:    e.requests,
		OrgRepo:        e.orgs,
		ProfileRepo:    e.profiles,
		MembershipRepo: e.memberships,
		Identities:     e.identities,
		Auditor:        e.auditor,
		Logger:         zap.NewNop(),
	})
}

func (e *testEnv) reviewService() *ReviewService {
	return NewReviewService(ReviewDependencies{
		RequestRepo:     e.requests,
		ReviewEventRepo: e.trail,
		Issuer:          e.codeService(0),
		Mailer:          e.mail,
		Auditor:         e.auditor,
		Logger:          zap.NewNop(),
	})
}

func (e *testEnv) registryService() *RegistryService {
	return NewRegistryService(RegistryDependencies{
		RequestRepo:     e.requests,
		ReviewEventRepo: e.trail,
		CodeRepo:        e.codes,
		Auditor:         e.auditor,
		Logger:          zap.NewNop(),
	})
}

// seedRequest inserts a request directly through the fake repo.
func (e *testEnv) seedRequest(status domain.RequestStatus, adminEmail string) *domain.EnterpriseRequest {
	request := &domain.EnterpriseRequest{
		CompanyName: "Acme Corp",
		Domain:      emailDomain(adminEmail),
		Industry:    "manufacturing",
		CompanySize: "51-200",
		Website:     "https://acme.example",
		AdminName:   "Jane Doe",
		AdminEmail:  adminEmail,
		Status:      status,
	}
	_ = e.requests.Create(context.Background(), request)
	return request
}

// seedActiveCode mints and stores a code for the request, returning the plaintext.
func (e *testEnv) seedActiveCode(requestID string, expiresAt time.Time) string {
	plaintext, err := GenerateCode()
	if err != nil {
		panic(err)
	}
	code := &domain.AccessCode{
		RequestID: requestID,
		Code:      plaintext,
		CodeHash:  HashCode(plaintext),
		Status:    domain.AccessCodeStatusActive,
		ExpiresAt: expiresAt,
	}
	_ = e.codes.Create(context.Background(), code)
	return plaintext
}

type fakeRequestRepo struct {
	seq      int
	requests map[string]*domain.EnterpriseRequest
	order    []string
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*domain.EnterpriseRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, request *domain.EnterpriseRequest) error {
	f.seq++
	request.ID = fmt.Sprintf("req-%d", f.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	stored := *request
	f.requests[request.ID] = &stored
	f.order = append(f.order, request.ID)
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.EnterpriseRequest, error) {
	stored, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRequestRepo) UpdateReview(_ context.Context, id string, patch repository.ReviewPatch) error {
	stored, ok := f.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if patch.AdminNotes != nil {
		stored.AdminNotes = *patch.AdminNotes
	}
	if patch.Checklist != nil {
		stored.Checklist = patch.Checklist
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRequestRepo) SetProvisioningRefs(_ context.Context, id string, orgID, adminUserID string) error {
	stored, ok := f.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.OrgID = &orgID
	stored.AdminUserID = &adminUserID
	return nil
}

func (f *fakeRequestRepo) List(_ context.Context) ([]domain.EnterpriseRequest, error) {
	result := make([]domain.EnterpriseRequest, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		result = append(result, *f.requests[f.order[i]])
	}
	return result, nil
}

type fakeCodeRepo struct {
	seq      int
	codes    []*domain.AccessCode
	requests *fakeRequestRepo
}

func newFakeCodeRepo(requests *fakeRequestRepo) *fakeCodeRepo {
	return &fakeCodeRepo{requests: requests}
}

func (f *fakeCodeRepo) Create(_ context.Context, code *domain.AccessCode) error {
	f.seq++
	code.ID = fmt.Sprintf("code-%d", f.seq)
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt
	stored := *code
	f.codes = append(f.codes, &stored)
	return nil
}

func (f *fakeCodeRepo) GetActiveByRequest(_ context.Context, requestID string) (*domain.AccessCode, error) {
	for _, code := range f.codes {
		if code.RequestID == requestID && code.Status == domain.AccessCodeStatusActive {
			copied := *code
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCodeRepo) GetByHash(_ context.Context, hash string) (*repository.CodeWithRequest, error) {
	for _, code := range f.codes {
		if code.CodeHash == hash {
			return f.join(code), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCodeRepo) Consume(_ context.Context, id string) (bool, error) {
	for _, code := range f.codes {
		if code.ID == id {
			if code.Status != domain.AccessCodeStatusActive {
				return false, nil
			}
			code.Status = domain.AccessCodeStatusUsed
			code.UsedCount = 1
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCodeRepo) Revoke(_ context.Context, id string) (bool, error) {
	for _, code := range f.codes {
		if code.ID == id {
			if code.Status != domain.AccessCodeStatusActive {
				return false, nil
			}
			code.Status = domain.AccessCodeStatusRevoked
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCodeRepo) ListWithRequests(_ context.Context) ([]repository.CodeWithRequest, error) {
	result := make([]repository.CodeWithRequest, 0, len(f.codes))
	for i := len(f.codes) - 1; i >= 0; i-- {
		result = append(result, *f.join(f.codes[i]))
	}
	return result, nil
}

func (f *fakeCodeRepo) join(code *domain.AccessCode) *repository.CodeWithRequest {
	row := &repository.CodeWithRequest{Code: *code}
	if request, ok := f.requests.requests[code.RequestID]; ok {
		row.CompanyName = request.CompanyName
		row.AdminName = request.AdminName
		row.AdminEmail = request.AdminEmail
		row.Industry = request.Industry
		row.CompanySize = request.CompanySize
		row.Website = request.Website
	}
	return row
}

func (f *fakeCodeRepo) byID(id string) *domain.AccessCode {
	for _, code := range f.codes {
		if code.ID == id {
			return code
		}
	}
	return nil
}

type fakeOrgRepo struct {
	seq  int
	orgs map[string]*domain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[string]*domain.Organization{}}
}

func (f *fakeOrgRepo) UpsertByRequest(_ context.Context, org *domain.Organization) error {
	if existing, ok := f.orgs[org.RequestID]; ok {
		existing.Name = org.Name
		existing.Industry = org.Industry
		existing.CompanySize = org.CompanySize
		existing.Website = org.Website
		org.ID = existing.ID
		org.CreatedAt = existing.CreatedAt
		return nil
	}
	f.seq++
	org.ID = fmt.Sprintf("org-%d", f.seq)
	org.CreatedAt = time.Now()
	stored := *org
	f.orgs[org.RequestID] = &stored
	return nil
}

func (f *fakeOrgRepo) GetByRequest(_ context.Context, requestID string) (*domain.Organization, error) {
	org, ok := f.orgs[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *org
	return &copied, nil
}

func (f *fakeOrgRepo) ExistsForRequest(_ context.Context, requestID string) (bool, error) {
	_, ok := f.orgs[requestID]
	return ok, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.Profile{}}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile *domain.Profile) error {
	stored := *profile
	f.profiles[profile.UserID] = &stored
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, profile := range f.profiles {
		if strings.EqualFold(profile.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type fakeMembershipRepo struct {
	seq     int
	members map[string]*domain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: map[string]*domain.Membership{}}
}

func (f *fakeMembershipRepo) Upsert(_ context.Context, membership *domain.Membership) error {
	key := membership.OrgID + "|" + membership.UserID
	if existing, ok := f.members[key]; ok {
		existing.Role = membership.Role
		membership.ID = existing.ID
		return nil
	}
	f.seq++
	membership.ID = fmt.Sprintf("member-%d", f.seq)
	membership.CreatedAt = time.Now()
	stored := *membership
	f.members[key] = &stored
	return nil
}

func (f *fakeMembershipRepo) CountByOrg(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, member := range f.members {
		if member.OrgID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeAuditRepo struct {
	seq     int
	entries []domain.AuditEntry
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	f.seq++
	entry.ID = fmt.Sprintf("audit-%d", f.seq)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	result := []domain.AuditEntry{}
	for i := len(f.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, f.entries[i])
	}
	return result, nil
}

type fakeReviewEventRepo struct {
	seq    int
	events []domain.ReviewEvent
}

func (f *fakeReviewEventRepo) Append(_ context.Context, event *domain.ReviewEvent) error {
	f.seq++
	event.ID = fmt.Sprintf("event-%d", f.seq)
	event.CreatedAt = time.Now()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeReviewEventRepo) ListByRequest(_ context.Context, requestID string) ([]domain.ReviewEvent, error) {
	var result []domain.ReviewEvent
	for _, event := range f.events {
		if event.RequestID == requestID {
			result = append(result, event)
		}
	}
	return result, nil
}

type fakeIdentityProvider struct {
	seq        int
	identities map[string]*identity.Identity
	updates    int
	failLookup error
	failCreate error
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{identities: map[string]*identity.Identity{}}
}

func (f *fakeIdentityProvider) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	if f.failLookup != nil {
		return nil, f.failLookup
	}
	for _, account := range f.identities {
		if strings.EqualFold(account.Email, email) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (f *fakeIdentityProvider) CreateIdentity(_ context.Context, email, _ string, metadata map[string]string) (*identity.Identity, error) {
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.seq++
	account := &identity.Identity{
		ID:       fmt.Sprintf("user-%d", f.seq),
		Email:    email,
		Metadata: metadata,
	}
	f.identities[account.ID] = account
	copied := *account
	return &copied, nil
}

func (f *fakeIdentityProvider) UpdateIdentity(_ context.Context, id string, _ string, metadata map[string]string) (*identity.Identity, error) {
	account, ok := f.identities[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	f.updates++
	account.Metadata = metadata
	copied := *account
	return &copied, nil
}

type sentMail struct {
	kind    string
	email   string
	company string
	code    string
	action  domain.ReviewAction
	reason  string
}

type fakeMailer struct {
	sent    []sentMail
	failAll error
}

func (f *fakeMailer) SendAccessCode(_ context.Context, adminName, companyName, email, code string) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.sent = append(f.sent, sentMail{kind: "access_code", email: email, company: companyName, code: code})
	return nil
}

func (f *fakeMailer) SendStatusUpdate(_ context.Context, email, companyName string, action domain.ReviewAction, reason string) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.sent = append(f.sent, sentMail{kind: "status_update", email: email, company: companyName, action: action, reason: reason})
	return nil
}

type blockingLimiter struct {
	blocked  map[string]bool
	failures map[string]int
}

func newBlockingLimiter() *blockingLimiter {
	return &blockingLimiter{blocked: map[string]bool{}, failures: map[string]int{}}
}

func (l *blockingLimiter) Allowed(_ context.Context, key string) bool {
	return !l.blocked[key]
}

func (l *blockingLimiter) RecordFailure(_ context.Context, key string) {
	l.failures[key]++
}
