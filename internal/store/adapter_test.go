package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarket/emarket/internal/domain/entity"
)

type stubListingRepo struct {
	createFn       func(ctx context.Context, l *entity.Listing) error
	listBySellerFn func(ctx context.Context, sellerID string) ([]entity.Listing, error)
}

func (s *stubListingRepo) Create(ctx context.Context, l *entity.Listing) error {
	return s.createFn(ctx, l)
}

func (s *stubListingRepo) List(ctx context.Context) ([]entity.Listing, error) { return nil, nil }

func (s *stubListingRepo) ListBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error) {
	if s.listBySellerFn != nil {
		return s.listBySellerFn(ctx, sellerID)
	}
	return nil, nil
}

type stubProfileRepo struct {
	createFn func(ctx context.Context, p *entity.Profile) error
}

func (s *stubProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	return s.createFn(ctx, p)
}

func (s *stubProfileRepo) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	return nil, nil
}

func TestCreateListingReturnsStoreAssignedID(t *testing.T) {
	repo := &stubListingRepo{createFn: func(ctx context.Context, l *entity.Listing) error {
		l.ID = "assigned-id"
		l.CreatedAt = time.Now().UTC()
		return nil
	}}
	a := NewAdapter(repo, nil, nil, nil, "default-app-id")

	id, err := a.CreateListing(context.Background(), ListingFields{
		Name: "Lamp", Description: "d", Price: 19.99, SellerID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "assigned-id", id)
}

func TestCreateListingWrapsWriteFailure(t *testing.T) {
	repo := &stubListingRepo{createFn: func(ctx context.Context, l *entity.Listing) error {
		return errors.New("insert failed")
	}}
	a := NewAdapter(repo, nil, nil, nil, "default-app-id")

	_, err := a.CreateListing(context.Background(), ListingFields{Name: "Lamp", Price: 1, SellerID: "s1"})

	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestCreateProfileSetsCreationTime(t *testing.T) {
	var saved entity.Profile
	repo := &stubProfileRepo{createFn: func(ctx context.Context, p *entity.Profile) error {
		saved = *p
		return nil
	}}
	a := NewAdapter(nil, repo, nil, nil, "default-app-id")

	p, err := a.CreateProfile(context.Background(), "u1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "a@b.com", p.Email)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, saved, *p)
}

func TestGetListingsBySellerPassesThrough(t *testing.T) {
	repo := &stubListingRepo{listBySellerFn: func(ctx context.Context, sellerID string) ([]entity.Listing, error) {
		assert.Equal(t, "s1", sellerID)
		return []entity.Listing{{ID: "a", SellerID: sellerID}}, nil
	}}
	a := NewAdapter(repo, nil, nil, nil, "default-app-id")

	ls, err := a.GetListingsBySeller(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "a", ls[0].ID)
}

func TestUploadListingImageWithoutGCS(t *testing.T) {
	a := NewAdapter(&stubListingRepo{}, &stubProfileRepo{}, nil, nil, "default-app-id")

	_, err := a.UploadListingImage(context.Background(), "s1", strings.NewReader("img"), "lamp.jpg", "image/jpeg")
	assert.Error(t, err)

	a.GCSBucket = "listing-images"
	_, err = a.UploadListingImage(context.Background(), "s1", strings.NewReader("img"), "lamp.jpg", "image/jpeg")
	assert.Error(t, err, "bucket without a client must still refuse")
}

func TestSubscribeWithoutRedis(t *testing.T) {
	a := NewAdapter(&stubListingRepo{}, &stubProfileRepo{}, nil, nil, "default-app-id")

	_, err := a.SubscribeListings(func(ListingsSnapshot) {})
	assert.Error(t, err)

	_, err = a.SubscribeProfile("u1", func(ProfileSnapshot) {})
	assert.Error(t, err)
}

func TestChannelNamesFollowDocumentPaths(t *testing.T) {
	assert.Equal(t, "default-app-id/public/data/products", productsChannel("default-app-id"))
	assert.Equal(t, "default-app-id/users/u1/profile/data", profileChannel("default-app-id", "u1"))
}
