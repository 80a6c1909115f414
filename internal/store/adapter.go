// Package store adapts the external document store behind create, read and
// subscribe operations for the two collections the application uses: the
// per-user profile documents and the shared product-listing collection.
// Documents live in Postgres; change notifications travel over Redis
// pub/sub channels named after the logical document paths.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
)

// ErrStoreWrite wraps any failed remote write so callers can distinguish
// write failures from validation problems.
var ErrStoreWrite = errors.New("store write failed")

// ListingFields carries caller-validated fields for a new listing. The id
// and createdAt are always assigned server-side and cannot be supplied.
type ListingFields struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
	SellerID    string
}

// ListingsSnapshot is a full current view of the listing collection, never a
// diff. Err is set instead of Listings when the live-update channel failed;
// the adapter does not retry on its own.
type ListingsSnapshot struct {
	Listings []entity.Listing
	Err      error
}

// ProfileSnapshot is the current profile document. Profile is nil when the
// document does not exist, which is a valid steady state.
type ProfileSnapshot struct {
	Profile *entity.Profile
	Err     error
}

type Adapter struct {
	Listings  repository.ListingRepository
	Profiles  repository.ProfileRepository
	Redis     *redis.Client
	Logger    *logrus.Logger
	AppID     string
	ES        *elasticsearch.Client
	ESIndex   string
	GCS       *storage.Client
	GCSBucket string
}

func NewAdapter(listings repository.ListingRepository, profiles repository.ProfileRepository, rdb *redis.Client, logger *logrus.Logger, appID string) *Adapter {
	return &Adapter{
		Listings: listings,
		Profiles: profiles,
		Redis:    rdb,
		Logger:   logger,
		AppID:    appID,
	}
}

// CreateListing persists a new listing and returns the store-assigned id.
// Field-level validation is the caller's responsibility; the adapter only
// reports whether the remote write succeeded.
func (a *Adapter) CreateListing(ctx context.Context, fields ListingFields) (string, error) {
	l := entity.Listing{
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		ImageURL:    fields.ImageURL,
		SellerID:    fields.SellerID,
	}
	if err := a.Listings.Create(ctx, &l); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	a.notify(ctx, productsChannel(a.AppID))
	_ = a.indexListing(ctx, l)
	return l.ID, nil
}

// CreateProfile creates the profile document for userID with the creation
// moment set once.
func (a *Adapter) CreateProfile(ctx context.Context, userID, email string) (*entity.Profile, error) {
	p := entity.Profile{UserID: userID, Email: email, CreatedAt: time.Now().UTC()}
	if err := a.Profiles.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	a.notify(ctx, profileChannel(a.AppID, userID))
	return &p, nil
}

// GetListingsBySeller is a one-shot query used by the read API.
func (a *Adapter) GetListingsBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error) {
	return a.Listings.ListBySeller(ctx, sellerID)
}

// notify publishes a change notification. Best effort: a lost notification
// only delays the next snapshot, it does not lose data.
func (a *Adapter) notify(ctx context.Context, channel string) {
	if a.Redis == nil {
		return
	}
	if err := a.Redis.Publish(ctx, channel, "changed").Err(); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithField("channel", channel).Warn("change notification publish failed")
	}
}
