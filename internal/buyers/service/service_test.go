package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"buyer_portal_backend/internal/buyers/domain"
	"buyer_portal_backend/internal/buyers/repository"
	"buyer_portal_backend/internal/buyers/transport"
	"buyer_portal_backend/platform/apperr"
	"buyer_portal_backend/platform/httpkit"
	"buyer_portal_backend/platform/logger"
	"buyer_portal_backend/platform/ratelimit"
	"buyer_portal_backend/platform/validator"
)

// fakeRepo is an in-memory Repository that records call order so tests can
// assert on sequencing and on what reached the persistence layer.
type fakeRepo struct {
	buyers map[uuid.UUID]repository.Buyer

	calls        []string
	lastCreate   repository.CreateBuyerParams
	lastUpdate   repository.UpdateBuyerParams
	history      []repository.AppendHistoryParams
	appendErr    error
	updateErr    error
	createMany   int
	createManyOK bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{buyers: make(map[uuid.UUID]repository.Buyer), createManyOK: true}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateBuyerParams) (repository.Buyer, error) {
	f.calls = append(f.calls, "create")
	f.lastCreate = params

	status := params.Status
	if status == "" {
		status = "New"
	}
	buyer := repository.Buyer{
		ID:           uuid.New(),
		FullName:     params.FullName,
		Email:        params.Email,
		Phone:        params.Phone,
		City:         params.City,
		PropertyType: params.PropertyType,
		BHK:          params.BHK,
		Purpose:      params.Purpose,
		BudgetMin:    params.BudgetMin,
		BudgetMax:    params.BudgetMax,
		Timeline:     params.Timeline,
		Source:       params.Source,
		Status:       status,
		Notes:        params.Notes,
		Tags:         params.Tags,
		OwnerID:      params.OwnerID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.buyers[buyer.ID] = buyer
	return buyer, nil
}

func (f *fakeRepo) CreateMany(_ context.Context, params []repository.CreateBuyerParams) (int, error) {
	f.calls = append(f.calls, "createMany")
	f.createMany = len(params)
	if !f.createManyOK {
		return 0, errors.New("copy failed")
	}
	return len(params), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Buyer, error) {
	f.calls = append(f.calls, "get")
	buyer, ok := f.buyers[id]
	if !ok {
		return repository.Buyer{}, repository.ErrNotFound
	}
	return buyer, nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListBuyersParams) ([]repository.Buyer, int, error) {
	f.calls = append(f.calls, "list")
	out := make([]repository.Buyer, 0, len(f.buyers))
	for _, buyer := range f.buyers {
		out = append(out, buyer)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListAll(_ context.Context, _ repository.ListBuyersParams) ([]repository.Buyer, error) {
	f.calls = append(f.calls, "listAll")
	out := make([]repository.Buyer, 0, len(f.buyers))
	for _, buyer := range f.buyers {
		out = append(out, buyer)
	}
	return out, nil
}

func (f *fakeRepo) UpdateIfUnchanged(_ context.Context, id uuid.UUID, params repository.UpdateBuyerParams) (repository.Buyer, error) {
	f.calls = append(f.calls, "update")
	f.lastUpdate = params
	if f.updateErr != nil {
		return repository.Buyer{}, f.updateErr
	}

	buyer, ok := f.buyers[id]
	if !ok {
		return repository.Buyer{}, repository.ErrNotFound
	}
	if !buyer.UpdatedAt.Equal(params.Token) {
		return repository.Buyer{}, repository.ErrStaleToken
	}
	if params.FullName != nil {
		buyer.FullName = *params.FullName
	}
	if params.Status != nil {
		buyer.Status = *params.Status
	}
	if params.TagsSet {
		buyer.Tags = params.Tags
	}
	buyer.UpdatedAt = buyer.UpdatedAt.Add(time.Second)
	f.buyers[id] = buyer
	return buyer, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, "delete")
	if _, ok := f.buyers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.buyers, id)
	return nil
}

func (f *fakeRepo) AppendHistory(_ context.Context, params repository.AppendHistoryParams) error {
	f.calls = append(f.calls, "appendHistory")
	if f.appendErr != nil {
		return f.appendErr
	}
	f.history = append(f.history, params)
	return nil
}

func (f *fakeRepo) ListHistory(_ context.Context, buyerID uuid.UUID, _ int) ([]repository.HistoryEntry, error) {
	f.calls = append(f.calls, "listHistory")
	out := make([]repository.HistoryEntry, 0)
	for _, entry := range f.history {
		if entry.BuyerID == buyerID {
			out = append(out, repository.HistoryEntry{
				ID:        uuid.New(),
				BuyerID:   entry.BuyerID,
				ChangedBy: entry.ChangedBy,
				Diff:      entry.Diff,
				ChangedAt: time.Now().UTC(),
			})
		}
	}
	return out, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

func newTestService(t *testing.T, repo repository.Repository, limit int) *Service {
	t.Helper()
	val := validator.New()
	if err := domain.RegisterRules(val); err != nil {
		t.Fatalf("register rules: %v", err)
	}
	return New(repo, ratelimit.NewWindowLimiter(limit, time.Hour), val, logger.New("test"))
}

func validCreate() transport.CreateBuyerRequest {
	return transport.CreateBuyerRequest{
		FullName:     "Ravi Kumar",
		Phone:        "9876543210",
		City:         transport.CityMohali,
		PropertyType: transport.PropertyTypePlot,
		Purpose:      transport.PurposeBuy,
		Timeline:     transport.TimelineExploring,
		Source:       transport.SourceWebsite,
	}
}

func ownerIdentity() httpkit.Identity {
	return httpkit.NewIdentity("owner-1", nil)
}

func TestCreateSetsOwnerAndAppendsCreationHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 10)

	got, err := svc.Create(context.Background(), validCreate(), ownerIdentity(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want owner-1", got.OwnerID)
	}
	if got.Status != "New" {
		t.Errorf("status = %q, want New", got.Status)
	}

	if len(repo.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(repo.history))
	}
	diff := repo.history[0].Diff
	if created, _ := diff["created"].(bool); !created {
		t.Errorf("creation diff missing created flag: %v", diff)
	}
	if _, ok := diff["data"]; !ok {
		t.Errorf("creation diff missing data snapshot: %v", diff)
	}
}

func TestCreateRejectsInvalidPayloadWithoutPersisting(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 10)

	req := validCreate()
	req.PropertyType = transport.PropertyTypeVilla // bhk missing

	_, err := svc.Create(context.Background(), req, ownerIdentity(), "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, call := range repo.calls {
		if call == "create" {
			t.Fatal("repository create was called for an invalid payload")
		}
	}
}

func TestCreateRateLimitCarriesRetryAfter(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 1)

	if _, err := svc.Create(context.Background(), validCreate(), ownerIdentity(), ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req := validCreate()
	req.Email = "second@example.com"
	_, err := svc.Create(context.Background(), req, ownerIdentity(), "")
	if !apperr.Is(err, apperr.KindTooManyRequests) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	appErr := err.(*apperr.Error)
	details, ok := appErr.Details.(httpkit.RetryAfterDetails)
	if !ok {
		t.Fatalf("details = %T, want RetryAfterDetails", appErr.Details)
	}
	if details.RetryAfterSeconds < 1 {
		t.Errorf("retryAfter = %d, want >= 1", details.RetryAfterSeconds)
	}
}

func TestCreateLimitsAnonymousCallersByClientIP(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 1)

	if _, err := svc.Create(context.Background(), validCreate(), httpkit.Anonymous(), "10.0.0.1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), validCreate(), httpkit.Anonymous(), "10.0.0.1"); !apperr.Is(err, apperr.KindTooManyRequests) {
		t.Fatalf("expected rate limit for same IP, got %v", err)
	}
	if _, err := svc.Create(context.Background(), validCreate(), httpkit.Anonymous(), "10.0.0.2"); err != nil {
		t.Fatalf("different IP should have its own window, got %v", err)
	}
}

func TestCreateSucceedsWhenHistoryWriteFails(t *testing.T) {
	repo := newFakeRepo()
	repo.appendErr = errors.New("history table unavailable")
	svc := newTestService(t, repo, 10)

	if _, err := svc.Create(context.Background(), validCreate(), ownerIdentity(), ""); err != nil {
		t.Fatalf("create should survive a history failure, got %v", err)
	}
}

func TestCreateRoundTripsTags(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 10)

	req := validCreate()
	req.Tags = transport.TagList{Values: []string{"vip", "follow-up"}, Set: true}

	got, err := svc.Create(context.Background(), req, ownerIdentity(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if repo.lastCreate.Tags == nil || *repo.lastCreate.Tags != "vip,follow-up" {
		t.Errorf("stored tags = %v, want vip,follow-up", repo.lastCreate.Tags)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "vip" || got.Tags[1] != "follow-up" {
		t.Errorf("response tags = %v, want [vip follow-up]", got.Tags)
	}
}

func seedBuyer(t *testing.T, repo *fakeRepo, svc *Service, owner string) transport.BuyerResponse {
	t.Helper()
	created, err := svc.Create(context.Background(), validCreate(), httpkit.NewIdentity(owner, nil), "")
	if err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	repo.calls = nil
	repo.history = nil
	return created
}

func TestUpdateForbiddenLeavesRecordAndHistoryUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	name := "Changed Name"
	req := transport.UpdateBuyerRequest{FullName: &name, UpdatedAt: created.UpdatedAt}

	_, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, httpkit.NewIdentity("intruder", nil))
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	for _, call := range repo.calls {
		if call == "update" || call == "appendHistory" {
			t.Fatalf("unexpected %s call after authorization failure", call)
		}
	}
	stored := repo.buyers[uuid.MustParse(created.ID)]
	if stored.FullName != created.FullName {
		t.Errorf("record mutated despite forbidden: %q", stored.FullName)
	}
}

func TestUpdateAdminMayEditAnyRecord(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	status := transport.StatusQualified
	req := transport.UpdateBuyerRequest{Status: &status, UpdatedAt: created.UpdatedAt}

	got, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, httpkit.NewIdentity("other-admin", []string{httpkit.RoleAdmin}))
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if got.Status != "Qualified" {
		t.Errorf("status = %q, want Qualified", got.Status)
	}
}

func TestUpdateStaleTokenIsConflictBeforeAnyWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	name := "Changed Name"
	req := transport.UpdateBuyerRequest{
		FullName:  &name,
		UpdatedAt: created.UpdatedAt.Add(-time.Minute),
	}

	_, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, ownerIdentity())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	for _, call := range repo.calls {
		if call == "update" {
			t.Fatal("conditional write attempted with a stale token")
		}
	}
}

func TestUpdateMissingTokenIsConflictNotValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	// Payload without updatedAt decodes to a zero token.
	name := "Someone Else"
	req := transport.UpdateBuyerRequest{FullName: &name}

	_, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, ownerIdentity())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for missing token, got %v", err)
	}
	for _, call := range repo.calls {
		if call == "update" {
			t.Fatal("conditional write attempted without a token")
		}
	}
}

func TestUpdateMapsRepositoryStaleTokenToConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")
	repo.updateErr = repository.ErrStaleToken

	name := "Changed Name"
	req := transport.UpdateBuyerRequest{FullName: &name, UpdatedAt: created.UpdatedAt}

	_, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, ownerIdentity())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateAppendsFromToHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	status := transport.StatusContacted
	req := transport.UpdateBuyerRequest{Status: &status, UpdatedAt: created.UpdatedAt}

	if _, err := svc.Update(context.Background(), uuid.MustParse(created.ID), req, ownerIdentity()); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(repo.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(repo.history))
	}
	diff := repo.history[0].Diff
	from, fromOK := diff["from"].(map[string]any)
	to, toOK := diff["to"].(map[string]any)
	if !fromOK || !toOK {
		t.Fatalf("diff missing from/to snapshots: %v", diff)
	}
	if from["status"] != "New" || to["status"] != "Contacted" {
		t.Errorf("status transition = %v -> %v, want New -> Contacted", from["status"], to["status"])
	}
}

func TestDeleteWritesTerminalHistoryBeforeRemoval(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")

	if err := svc.Delete(context.Background(), uuid.MustParse(created.ID), ownerIdentity()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var historyIdx, deleteIdx int
	for i, call := range repo.calls {
		switch call {
		case "appendHistory":
			historyIdx = i
		case "delete":
			deleteIdx = i
		}
	}
	if historyIdx >= deleteIdx {
		t.Fatalf("history written at %d, delete at %d; want history first", historyIdx, deleteIdx)
	}

	if len(repo.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(repo.history))
	}
	if deleted, _ := repo.history[0].Diff["deleted"].(bool); !deleted {
		t.Errorf("terminal diff = %v, want deleted:true", repo.history[0].Diff)
	}
}

func TestDeleteFailedHistoryWriteAbortsRemoval(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	created := seedBuyer(t, repo, svc, "owner-1")
	repo.appendErr = errors.New("history table unavailable")

	if err := svc.Delete(context.Background(), uuid.MustParse(created.ID), ownerIdentity()); err == nil {
		t.Fatal("expected delete to fail when the terminal history write fails")
	}
	if _, ok := repo.buyers[uuid.MustParse(created.ID)]; !ok {
		t.Fatal("record removed despite failed history write")
	}
}

func TestImportCSVSkipsBlankRowsAndNormalizesPhones(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)

	csv := strings.Join([]string{
		"fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status",
		"Ravi Kumar,ravi@example.com,+91 98765 43210,Mohali,Plot,,Buy,1000000,2000000,0-3m,Website,,vip,New",
		",,,,,,,,,,,,,",
		"Meena Shah,,9876500000,Chandigarh,Apartment,2,Rent,,,Exploring,Referral,,,New",
	}, "\n")

	count, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), ownerIdentity())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Errorf("imported = %d, want 2", count)
	}
	if repo.createMany != 2 {
		t.Errorf("rows passed to CreateMany = %d, want 2", repo.createMany)
	}
}

func TestImportCSVRejectsMalformedFile(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(`"unterminated`), ownerIdentity())
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestListClampsPageAndReportsFixedPageSize(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, 100)
	seedBuyer(t, repo, svc, "owner-1")

	got, err := svc.List(context.Background(), transport.ListBuyersRequest{Page: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Page != 1 {
		t.Errorf("page = %d, want 1", got.Page)
	}
	if got.PageSize != PageSize {
		t.Errorf("pageSize = %d, want %d", got.PageSize, PageSize)
	}
}
