package repository

import (
	"context"
	"errors"

	"github.com/emarket/emarket/internal/domain/entity"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// ListingRepository defines database operations for the shared product
// listing collection. Listings are insert-only.
type ListingRepository interface {
	// Create inserts the listing and fills the store-assigned ID and
	// CreatedAt on the passed value.
	Create(ctx context.Context, l *entity.Listing) error
	List(ctx context.Context) ([]entity.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error)
}

// ProfileRepository defines database operations for per-user profile
// documents.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// Get returns ErrNotFound when no profile document exists for userID.
	Get(ctx context.Context, userID string) (*entity.Profile, error)
}

// IdentityRepository defines database operations for identities.
type IdentityRepository interface {
	// Create inserts the identity and fills the assigned ID and CreatedAt.
	Create(ctx context.Context, id *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
}
