package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
)

// ListingRepository persists the shared product collection. There are no
// UPDATE or DELETE statements here on purpose: listings are immutable after
// creation.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, seller_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, l.Name, l.Description, l.Price, l.ImageURL, l.SellerID)

	return row.Scan(&l.ID, &l.CreatedAt)
}

func (r *ListingRepository) List(ctx context.Context) ([]entity.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, price, image_url, seller_id, created_at
		FROM products
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, price, image_url, seller_id, created_at
		FROM products
		WHERE seller_id = $1
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]entity.Listing, error) {
	out := make([]entity.Listing, 0)
	for rows.Next() {
		var l entity.Listing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Price,
			&l.ImageURL, &l.SellerID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
