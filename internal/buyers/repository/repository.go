package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound = errors.New("buyer not found")
	// ErrStaleToken means the stored row no longer carries the concurrency
	// token the caller observed; the update was not applied.
	ErrStaleToken = errors.New("buyer changed since last read")
	// ErrDuplicateEmail surfaces the unique constraint on non-null emails.
	ErrDuplicateEmail = errors.New("buyer email already exists")
)

const uniqueViolationCode = "23505"

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type Buyer struct {
	ID           uuid.UUID
	FullName     string
	Email        *string
	Phone        string
	City         string
	PropertyType string
	BHK          *string
	Purpose      string
	BudgetMin    *int64
	BudgetMax    *int64
	Timeline     string
	Source       string
	Status       string
	Notes        *string
	Tags         *string // comma-delimited; decoded to a list at the boundary
	OwnerID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateBuyerParams struct {
	FullName     string
	Email        *string
	Phone        string
	City         string
	PropertyType string
	BHK          *string
	Purpose      string
	BudgetMin    *int64
	BudgetMax    *int64
	Timeline     string
	Source       string
	Status       string
	Notes        *string
	Tags         *string
	OwnerID      string
}

// UpdateBuyerParams carries partial field changes for the conditional write.
// Nil pointer = leave unchanged; the Set flags distinguish "clear this
// column" from "not provided" for the nullable fields.
type UpdateBuyerParams struct {
	Token        time.Time
	FullName     *string
	Email        *string
	EmailSet     bool
	Phone        *string
	City         *string
	PropertyType *string
	BHK          *string
	BHKSet       bool
	Purpose      *string
	BudgetMin    *int64
	BudgetMinSet bool
	BudgetMax    *int64
	BudgetMaxSet bool
	Timeline     *string
	Source       *string
	Status       *string
	Notes        *string
	Tags         *string
	TagsSet      bool
}

type ListBuyersParams struct {
	City         *string
	PropertyType *string
	Status       *string
	Timeline     *string
	Query        string
	Offset       int
	Limit        int
}

const buyerColumns = `id, full_name, email, phone, city, property_type, bhk, purpose,
		budget_min, budget_max, timeline, source, status, notes, tags, owner_id, created_at, updated_at`

// buyerRowScanner is satisfied by pgx.Rows and pgx.Row so scanBuyer can be
// shared between single-row and multi-row queries.
type buyerRowScanner interface {
	Scan(dest ...any) error
}

// scanBuyer populates a Buyer from a standard SELECT row.
// Column order must match buyerColumns.
func scanBuyer(s buyerRowScanner) (Buyer, error) {
	var b Buyer
	err := s.Scan(
		&b.ID, &b.FullName, &b.Email, &b.Phone, &b.City, &b.PropertyType, &b.BHK, &b.Purpose,
		&b.BudgetMin, &b.BudgetMax, &b.Timeline, &b.Source, &b.Status, &b.Notes, &b.Tags,
		&b.OwnerID, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *Repo) Create(ctx context.Context, params CreateBuyerParams) (Buyer, error) {
	status := params.Status
	if status == "" {
		status = "New"
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO buyers (
			full_name, email, phone, city, property_type, bhk, purpose,
			budget_min, budget_max, timeline, source, status, notes, tags, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+buyerColumns,
		params.FullName, params.Email, params.Phone, params.City, params.PropertyType,
		params.BHK, params.Purpose, params.BudgetMin, params.BudgetMax,
		params.Timeline, params.Source, status, params.Notes, params.Tags, params.OwnerID,
	)

	buyer, err := scanBuyer(row)
	if err != nil {
		if isEmailUniqueViolation(err) {
			return Buyer{}, ErrDuplicateEmail
		}
		return Buyer{}, fmt.Errorf("create buyer: %w", err)
	}
	return buyer, nil
}

// CreateMany bulk-inserts import rows via the COPY protocol. Best-effort by
// contract: the batch either lands whole or fails whole, with no per-row
// validation feedback.
func (r *Repo) CreateMany(ctx context.Context, params []CreateBuyerParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(params))
	for _, p := range params {
		status := p.Status
		if status == "" {
			status = "New"
		}
		rows = append(rows, []any{
			p.FullName, p.Email, p.Phone, p.City, p.PropertyType, p.BHK, p.Purpose,
			p.BudgetMin, p.BudgetMax, p.Timeline, p.Source, status, p.Notes, p.Tags, p.OwnerID,
		})
	}

	copied, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"buyers"},
		[]string{
			"full_name", "email", "phone", "city", "property_type", "bhk", "purpose",
			"budget_min", "budget_max", "timeline", "source", "status", "notes", "tags", "owner_id",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert buyers: %w", err)
	}
	return int(copied), nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Buyer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+buyerColumns+`
		FROM buyers WHERE id = $1
	`, id)

	buyer, err := scanBuyer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Buyer{}, ErrNotFound
	}
	if err != nil {
		return Buyer{}, fmt.Errorf("get buyer: %w", err)
	}
	return buyer, nil
}

// List returns one page of buyers matching the filters, newest update first,
// plus the total match count. The count and page queries run concurrently
// against the pool.
func (r *Repo) List(ctx context.Context, params ListBuyersParams) ([]Buyer, int, error) {
	where, args := buildFilter(params)

	var (
		buyers []Buyer
		total  int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.pool.QueryRow(gctx, `SELECT COUNT(*) FROM buyers`+where, args...).Scan(&total)
	})

	g.Go(func() error {
		pageArgs := append(append([]any{}, args...), params.Limit, params.Offset)
		query := fmt.Sprintf(`
			SELECT `+buyerColumns+`
			FROM buyers%s
			ORDER BY updated_at DESC
			LIMIT $%d OFFSET $%d
		`, where, len(args)+1, len(args)+2)

		rows, err := r.pool.Query(gctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		buyers = make([]Buyer, 0, params.Limit)
		for rows.Next() {
			buyer, err := scanBuyer(rows)
			if err != nil {
				return err
			}
			buyers = append(buyers, buyer)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list buyers: %w", err)
	}

	return buyers, total, nil
}

// ListAll returns every buyer matching the filters, for CSV export.
func (r *Repo) ListAll(ctx context.Context, params ListBuyersParams) ([]Buyer, error) {
	where, args := buildFilter(params)

	rows, err := r.pool.Query(ctx, `
		SELECT `+buyerColumns+`
		FROM buyers`+where+`
		ORDER BY updated_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list buyers for export: %w", err)
	}
	defer rows.Close()

	buyers := make([]Buyer, 0)
	for rows.Next() {
		buyer, err := scanBuyer(rows)
		if err != nil {
			return nil, err
		}
		buyers = append(buyers, buyer)
	}
	return buyers, rows.Err()
}

func buildFilter(params ListBuyersParams) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)

	addEq := func(column string, value *string) {
		if value == nil || *value == "" {
			return
		}
		args = append(args, *value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	addEq("city", params.City)
	addEq("property_type", params.PropertyType)
	addEq("status", params.Status)
	addEq("timeline", params.Timeline)

	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(full_name ILIKE $%d OR email ILIKE $%d OR phone LIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateIfUnchanged performs the optimistic-concurrency write: the row is
// touched only when its updated_at still equals the caller's token, which
// guarantees at most one successful update per observed version even under
// concurrent requests. A successful write advances updated_at to now().
func (r *Repo) UpdateIfUnchanged(ctx context.Context, id uuid.UUID, params UpdateBuyerParams) (Buyer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE buyers SET
			full_name     = COALESCE($3, full_name),
			email         = CASE WHEN $4::boolean THEN $5 ELSE email END,
			phone         = COALESCE($6, phone),
			city          = COALESCE($7, city),
			property_type = COALESCE($8, property_type),
			bhk           = CASE WHEN $9::boolean THEN $10 ELSE bhk END,
			purpose       = COALESCE($11, purpose),
			budget_min    = CASE WHEN $12::boolean THEN $13 ELSE budget_min END,
			budget_max    = CASE WHEN $14::boolean THEN $15 ELSE budget_max END,
			timeline      = COALESCE($16, timeline),
			source        = COALESCE($17, source),
			status        = COALESCE($18, status),
			notes         = COALESCE($19, notes),
			tags          = CASE WHEN $20::boolean THEN $21 ELSE tags END,
			updated_at    = now()
		WHERE id = $1 AND updated_at = $2
		RETURNING `+buyerColumns,
		id, params.Token,
		params.FullName,
		params.EmailSet, params.Email,
		params.Phone,
		params.City,
		params.PropertyType,
		params.BHKSet, params.BHK,
		params.Purpose,
		params.BudgetMinSet, params.BudgetMin,
		params.BudgetMaxSet, params.BudgetMax,
		params.Timeline,
		params.Source,
		params.Status,
		params.Notes,
		params.TagsSet, params.Tags,
	)

	buyer, err := scanBuyer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row is gone or the token is stale; tell them apart.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM buyers WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return Buyer{}, fmt.Errorf("update buyer: %w", checkErr)
		}
		if !exists {
			return Buyer{}, ErrNotFound
		}
		return Buyer{}, ErrStaleToken
	}
	if err != nil {
		if isEmailUniqueViolation(err) {
			return Buyer{}, ErrDuplicateEmail
		}
		return Buyer{}, fmt.Errorf("update buyer: %w", err)
	}
	return buyer, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete buyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode && strings.Contains(pgErr.ConstraintName, "email")
}
