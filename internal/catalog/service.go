package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is the catalog view the pricing core consumes.
type Product struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Stock     int32         `json:"stock"`
}

// DB captures the pgx methods the service relies on, satisfied by *pgxpool.Pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Service loads products from postgres with a small Redis read-through cache.
type Service struct {
	DB       DB
	Cache    *redis.Client
	CacheTTL time.Duration
}

// GetProduct resolves a single product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	if s == nil || s.DB == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if p, ok := s.cacheGet(ctx, id); ok {
		return p, nil
	}
	row := s.DB.QueryRow(ctx,
		`SELECT id, name, category, unit_price_pence, stock FROM products WHERE id = $1`, id)
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

// List returns a page of the product range ordered by name.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Product, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("catalog service not configured")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	rows, err := s.DB.Query(ctx,
		`SELECT id, name, category, unit_price_pence, stock FROM products ORDER BY name LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Service) cacheGet(ctx context.Context, id string) (Product, bool) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return Product{}, false
	}
	data, err := s.Cache.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return Product{}, false
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, false
	}
	return p, true
}

func (s *Service) cacheSet(ctx context.Context, p Product) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = s.Cache.Set(ctx, cacheKey(p.ID), data, s.CacheTTL).Err()
}

func cacheKey(id string) string {
	return "catalog:product:" + id
}
