package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
)

// ProfileRepository persists per-user profile documents. Profiles are
// created once at sign-up and never updated or deleted.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, email, created_at)
		VALUES ($1, $2, $3)
	`, p.UserID, p.Email, p.CreatedAt)
	return err
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	p := &entity.Profile{}

	row := r.pool.QueryRow(ctx, `
		SELECT user_id, email, created_at
		FROM profiles
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&p.UserID, &p.Email, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
