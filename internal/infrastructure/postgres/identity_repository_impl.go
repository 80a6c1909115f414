package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
)

// IdentityRepository persists identities. Email is nullable so anonymous
// identities do not collide on the unique constraint.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, id *entity.Identity) error {
	var email any
	if id.Email != "" {
		email = id.Email
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, anonymous)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, id.PasswordHash, id.Anonymous)

	return row.Scan(&id.ID, &id.CreatedAt)
}

func (r *IdentityRepository) GetByID(ctx context.Context, idStr string) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(email, ''), password_hash, anonymous, created_at
		FROM identities
		WHERE id = $1
	`, idStr)
	return scanIdentity(row)
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(email, ''), password_hash, anonymous, created_at
		FROM identities
		WHERE email = $1
	`, email)
	return scanIdentity(row)
}

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	id := &entity.Identity{}
	if err := row.Scan(&id.ID, &id.Email, &id.PasswordHash, &id.Anonymous, &id.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return id, nil
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
