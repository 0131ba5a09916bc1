// Package service implements the buyer lead workflows: rate-limited create,
// the validated update with optimistic concurrency and audit trail, delete,
// listing, and CSV import/export.
package service

import (
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"buyer_portal_backend/internal/buyers/domain"
	"buyer_portal_backend/internal/buyers/repository"
	"buyer_portal_backend/internal/buyers/transport"
	"buyer_portal_backend/platform/apperr"
	"buyer_portal_backend/platform/httpkit"
	"buyer_portal_backend/platform/logger"
	"buyer_portal_backend/platform/phone"
	"buyer_portal_backend/platform/ratelimit"
	"buyer_portal_backend/platform/validator"
)

// PageSize is the fixed page size for buyer listings.
const PageSize = 10

const historyLimit = 10

const (
	msgNotFound       = "buyer not found"
	msgForbidden      = "you do not own this buyer lead"
	msgStale          = "Record changed, please refresh"
	msgDuplicateEmail = "A buyer with this email already exists."
	msgRateLimited    = "Rate limit exceeded"
	msgValidation     = "validation failed"
)

// ValidationDetails is the details payload on 422 responses.
type ValidationDetails struct {
	FieldErrors validator.FieldErrors `json:"fieldErrors"`
}

type Service struct {
	repo    repository.Repository
	limiter *ratelimit.WindowLimiter
	val     *validator.Validator
	log     *logger.Logger
	now     func() time.Time
}

func New(repo repository.Repository, limiter *ratelimit.WindowLimiter, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		limiter: limiter,
		val:     val,
		log:     log,
		now:     time.Now,
	}
}

// Create admits the caller through the rate limiter, validates the payload,
// persists the lead (owner = caller, status New) and appends the creation
// audit entry.
func (s *Service) Create(ctx context.Context, req transport.CreateBuyerRequest, ident httpkit.Identity, clientIP string) (transport.BuyerResponse, error) {
	key := ident.UserID()
	if ident.IsAnonymous() && clientIP != "" {
		key = clientIP
	}
	if decision := s.limiter.Admit(key, s.now()); !decision.Allowed {
		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		return transport.BuyerResponse{}, apperr.TooManyRequests(msgRateLimited).
			WithDetails(httpkit.RetryAfterDetails{RetryAfterSeconds: retryAfter})
	}

	if fields := domain.ValidateCreate(s.val, req); fields != nil {
		return transport.BuyerResponse{}, apperr.Validation(msgValidation).
			WithDetails(ValidationDetails{FieldErrors: fields})
	}

	created, err := s.repo.Create(ctx, createParams(req, ident.UserID()))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.BuyerResponse{}, apperr.Conflict(msgDuplicateEmail)
		}
		return transport.BuyerResponse{}, err
	}

	s.appendAudit(ctx, created.ID, ident.UserID(), map[string]any{
		"created": true,
		"data":    snapshot(created),
	})

	return toBuyerResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.BuyerResponse, error) {
	buyer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.BuyerResponse{}, apperr.NotFound(msgNotFound)
		}
		return transport.BuyerResponse{}, err
	}
	return toBuyerResponse(buyer), nil
}

func (s *Service) List(ctx context.Context, req transport.ListBuyersRequest) (transport.BuyerListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := listParams(req)
	params.Offset = (page - 1) * PageSize
	params.Limit = PageSize

	buyers, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.BuyerListResponse{}, err
	}

	data := make([]transport.BuyerResponse, 0, len(buyers))
	for _, buyer := range buyers {
		data = append(data, toBuyerResponse(buyer))
	}

	return transport.BuyerListResponse{
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: PageSize,
	}, nil
}

// Update is the core workflow: fetch, authorize, validate, check the
// concurrency token, write conditionally, audit. Validation and
// authorization failures return before any mutation is attempted.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateBuyerRequest, ident httpkit.Identity) (transport.BuyerResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.BuyerResponse{}, apperr.NotFound(msgNotFound)
		}
		return transport.BuyerResponse{}, err
	}

	if err := authorize(current, ident); err != nil {
		return transport.BuyerResponse{}, err
	}

	if fields := domain.ValidateUpdate(s.val, req); fields != nil {
		return transport.BuyerResponse{}, apperr.Validation(msgValidation).
			WithDetails(ValidationDetails{FieldErrors: fields})
	}

	// Fast-path token check; the write below re-checks atomically so two
	// racing updates against the same observed version cannot both land.
	if !tokenMatches(current.UpdatedAt, req.UpdatedAt) {
		return transport.BuyerResponse{}, apperr.Conflict(msgStale)
	}

	updated, err := s.repo.UpdateIfUnchanged(ctx, id, updateParams(req, current.UpdatedAt))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.BuyerResponse{}, apperr.NotFound(msgNotFound)
		case errors.Is(err, repository.ErrStaleToken):
			return transport.BuyerResponse{}, apperr.Conflict(msgStale)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return transport.BuyerResponse{}, apperr.Conflict(msgDuplicateEmail)
		default:
			return transport.BuyerResponse{}, err
		}
	}

	s.appendAudit(ctx, id, ident.UserID(), map[string]any{
		"from": snapshot(current),
		"to":   snapshot(updated),
	})

	return toBuyerResponse(updated), nil
}

// Delete removes an owned lead. The terminal audit entry is written before
// the row removal; if the removal then fails, an orphaned "deleted" entry
// remains for a still-present row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, ident httpkit.Identity) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return err
	}

	if err := authorize(current, ident); err != nil {
		return err
	}

	if err := s.repo.AppendHistory(ctx, repository.AppendHistoryParams{
		BuyerID:   id,
		ChangedBy: ident.UserID(),
		Diff:      map[string]any{"deleted": true},
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return err
	}
	return nil
}

// History lists the audit entries for a lead, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]transport.HistoryEntryResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, err
	}

	entries, err := s.repo.ListHistory(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}

	out := make([]transport.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, transport.HistoryEntryResponse{
			ID:        entry.ID.String(),
			BuyerID:   entry.BuyerID.String(),
			ChangedBy: entry.ChangedBy,
			Diff:      entry.Diff,
			ChangedAt: entry.ChangedAt,
		})
	}
	return out, nil
}

// ImportCSV bulk-inserts rows from a headered CSV file. Weaker than the
// single-record create path by contract: no per-row validation feedback and
// no rate limiting; the batch lands or fails as a whole.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, ident httpkit.Identity) (int, error) {
	rows, err := transport.ParseCSV(r)
	if err != nil {
		return 0, apperr.BadRequest("could not parse CSV file").WithOp("buyers.import")
	}

	params := make([]repository.CreateBuyerParams, 0, len(rows))
	for _, row := range rows {
		if row.FullName == "" && row.Phone == "" {
			continue
		}
		params = append(params, importParams(row, ident.UserID()))
	}

	inserted, err := s.repo.CreateMany(ctx, params)
	if err != nil {
		s.log.DatabaseError("buyers.import", err)
		return 0, apperr.Internal("failed to import buyers")
	}

	s.log.ImportResult(ident.UserID(), len(rows), inserted)
	return inserted, nil
}

// ExportCSV streams every lead matching the filters as CSV, newest update
// first, without pagination.
func (s *Service) ExportCSV(ctx context.Context, req transport.ListBuyersRequest, w io.Writer) error {
	buyers, err := s.repo.ListAll(ctx, listParams(req))
	if err != nil {
		return err
	}

	data := make([]transport.BuyerResponse, 0, len(buyers))
	for _, buyer := range buyers {
		data = append(data, toBuyerResponse(buyer))
	}
	return transport.WriteCSV(w, data)
}

// authorize enforces record ownership: the caller must own the lead or carry
// the admin role.
func authorize(buyer repository.Buyer, ident httpkit.Identity) error {
	if ident.UserID() == buyer.OwnerID || ident.HasRole(httpkit.RoleAdmin) {
		return nil
	}
	return apperr.Forbidden(msgForbidden)
}

// tokenMatches compares concurrency tokens at microsecond precision, the
// resolution the database stores. Client tokens round-trip through JSON and
// must land on the exact stored instant.
func tokenMatches(stored, client time.Time) bool {
	return stored.UTC().Truncate(time.Microsecond).Equal(client.UTC().Truncate(time.Microsecond))
}

// appendAudit records a history entry after a successful mutation.
// Best-effort: a failure is logged, never propagated. The primary write
// already happened and stands.
func (s *Service) appendAudit(ctx context.Context, buyerID uuid.UUID, changedBy string, diff map[string]any) {
	err := s.repo.AppendHistory(ctx, repository.AppendHistoryParams{
		BuyerID:   buyerID,
		ChangedBy: changedBy,
		Diff:      diff,
	})
	if err != nil {
		s.log.AuditFailure(buyerID.String(), changedBy, err)
	}
}

func importParams(row transport.CSVBuyerRow, ownerID string) repository.CreateBuyerParams {
	return repository.CreateBuyerParams{
		FullName:     row.FullName,
		Email:        nilIfEmpty(row.Email),
		Phone:        phone.NormalizeDigits(row.Phone),
		City:         row.City,
		PropertyType: row.PropertyType,
		BHK:          nilIfEmpty(row.BHK),
		Purpose:      row.Purpose,
		BudgetMin:    parseBudget(row.BudgetMin),
		BudgetMax:    parseBudget(row.BudgetMax),
		Timeline:     row.Timeline,
		Source:       row.Source,
		Status:       row.Status,
		Notes:        nilIfEmpty(row.Notes),
		Tags:         transport.JoinTags(transport.SplitTags(row.Tags)),
		OwnerID:      ownerID,
	}
}

func parseBudget(value string) *int64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed < 0 {
		return nil
	}
	return &parsed
}

func nilIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
