package discount

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB captures the pgx methods the store relies on, satisfied by *pgxpool.Pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store abstracts discount code persistence.
type Store interface {
	GetByCode(ctx context.Context, code string) (Code, error)
	Create(ctx context.Context, code Code) (Code, error)
	Update(ctx context.Context, code Code) (Code, error)
}

// PGStore persists discount codes in postgres.
type PGStore struct {
	DB DB
}

const codeColumns = `code, kind, value_pence, percent_bps, min_spend_pence, categories, first_order_only, starts_at, expires_at`

// GetByCode loads a code by its canonical value. Matching is case-insensitive.
func (s PGStore) GetByCode(ctx context.Context, code string) (Code, error) {
	if s.DB == nil {
		return Code{}, errors.New("discount store not configured")
	}
	row := s.DB.QueryRow(ctx,
		`SELECT `+codeColumns+` FROM discount_codes WHERE code = $1`,
		Canonical(code),
	)
	return scanCode(row)
}

// Create inserts a new code. Duplicate codes surface the underlying pg error
// so handlers can map unique violations to a conflict response.
func (s PGStore) Create(ctx context.Context, code Code) (Code, error) {
	if s.DB == nil {
		return Code{}, errors.New("discount store not configured")
	}
	row := s.DB.QueryRow(ctx,
		`INSERT INTO discount_codes (`+codeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+codeColumns,
		Canonical(code.Code), string(code.Kind), code.Value, code.PercentBps,
		code.MinSpend, code.Categories, code.FirstOrderOnly, code.StartsAt, code.ExpiresAt,
	)
	return scanCode(row)
}

// Update replaces the rule fields of an existing code.
func (s PGStore) Update(ctx context.Context, code Code) (Code, error) {
	if s.DB == nil {
		return Code{}, errors.New("discount store not configured")
	}
	row := s.DB.QueryRow(ctx,
		`UPDATE discount_codes
		 SET kind = $2, value_pence = $3, percent_bps = $4, min_spend_pence = $5,
		     categories = $6, first_order_only = $7, starts_at = $8, expires_at = $9
		 WHERE code = $1
		 RETURNING `+codeColumns,
		Canonical(code.Code), string(code.Kind), code.Value, code.PercentBps,
		code.MinSpend, code.Categories, code.FirstOrderOnly, code.StartsAt, code.ExpiresAt,
	)
	return scanCode(row)
}

func scanCode(row pgx.Row) (Code, error) {
	var (
		c    Code
		kind string
	)
	err := row.Scan(&c.Code, &kind, &c.Value, &c.PercentBps, &c.MinSpend,
		&c.Categories, &c.FirstOrderOnly, &c.StartsAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Code{}, ErrCodeNotFound
		}
		return Code{}, err
	}
	c.Kind = Kind(kind)
	return c, nil
}

// IsUniqueViolation reports whether the error is a postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
