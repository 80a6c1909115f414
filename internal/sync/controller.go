// Package sync maintains a locally cached, ordered view of the shared
// listing collection and the current user's profile, kept live via store
// subscriptions, and mediates validated listing creation.
package sync

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/store"
	"github.com/emarket/emarket/pkg/validation"
)

// LoadState tracks whether a cached collection has loaded yet. An empty
// loaded collection is a valid state, distinct from still-loading.
type LoadState int

const (
	Loading LoadState = iota
	Loaded
	Errored
)

// Store is the slice of the listing store the controller consumes.
type Store interface {
	CreateListing(ctx context.Context, fields store.ListingFields) (string, error)
	SubscribeListings(cb func(store.ListingsSnapshot)) (func(), error)
	SubscribeProfile(userID string, cb func(store.ProfileSnapshot)) (func(), error)
}

// Session supplies the identity used to tag new listings.
type Session interface {
	CurrentIdentity() *entity.Identity
}

// View is a copy of the controller's cached state, safe for a renderer to
// walk without holding any lock.
type View struct {
	Profile      *entity.Profile
	ProfileLoad  LoadState
	Listings     []entity.Listing
	ListingsLoad LoadState
}

// ListingInput carries raw form fields for a new listing. Price arrives as
// the user typed it and is parsed during validation.
type ListingInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"imageUrl"`
}

type Controller struct {
	store    Store
	session  Session
	validate *validator.Validate
	logger   *logrus.Logger

	mu         sync.Mutex
	generation int
	userID     string
	unsubs     []func()
	view       View
}

func NewController(st Store, sess Session, logger *logrus.Logger) *Controller {
	return &Controller{
		store:    st,
		session:  sess,
		validate: validation.New(),
		logger:   logger,
		view:     View{ProfileLoad: Loading, ListingsLoad: Loading},
	}
}

// Start opens the listings and profile subscriptions for userID. Calling it
// again with the same id while running is a no-op; a different id tears the
// previous subscriptions down first. Callbacks are tagged with a generation
// so nothing from a torn-down subscription can touch later state.
func (c *Controller) Start(userID string) error {
	c.mu.Lock()
	if c.userID == userID && len(c.unsubs) > 0 {
		c.mu.Unlock()
		return nil
	}
	old := c.unsubs
	c.unsubs = nil
	c.generation++
	gen := c.generation
	c.userID = userID
	c.view = View{ProfileLoad: Loading, ListingsLoad: Loading}
	c.mu.Unlock()

	// Old subscriptions are closed outside the lock: closing waits for any
	// in-flight delivery, and a delivery may be blocked on the same lock.
	for _, unsub := range old {
		unsub()
	}

	unsubListings, err := c.store.SubscribeListings(func(snap store.ListingsSnapshot) {
		c.applyListings(gen, snap)
	})
	if err != nil {
		return err
	}
	unsubProfile, err := c.store.SubscribeProfile(userID, func(snap store.ProfileSnapshot) {
		c.applyProfile(gen, snap)
	})
	if err != nil {
		unsubListings()
		return err
	}

	c.mu.Lock()
	if c.generation != gen {
		// Stop (or a newer Start) raced us; roll the fresh subscriptions back.
		c.mu.Unlock()
		unsubListings()
		unsubProfile()
		return nil
	}
	c.unsubs = []func(){unsubListings, unsubProfile}
	c.mu.Unlock()
	return nil
}

// Stop tears down both subscriptions. Safe to call repeatedly; once it
// returns, no callback from the torn-down subscriptions mutates state.
func (c *Controller) Stop() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.userID = ""
	c.generation++
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// View returns a copy of the current cached state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	v.Listings = append([]entity.Listing(nil), c.view.Listings...)
	return v
}

// SubmitNewListing validates the input and writes the listing tagged with
// the caller's current identity. The local cache is deliberately not
// touched: the new listing becomes visible only when a later subscription
// snapshot carries it back, so it may briefly sort at the bottom until the
// server timestamp resolves. On error the caller keeps the form input and
// may retry.
func (c *Controller) SubmitNewListing(ctx context.Context, in ListingInput) (string, error) {
	price, err := c.validateInput(in)
	if err != nil {
		return "", err
	}

	ident := c.session.CurrentIdentity()
	if ident == nil {
		return "", &SubmissionError{Err: errors.New("no active identity")}
	}

	id, err := c.store.CreateListing(ctx, store.ListingFields{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		SellerID:    ident.ID,
	})
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	return id, nil
}

func (c *Controller) validateInput(in ListingInput) (float64, error) {
	if err := c.validate.Struct(in); err != nil {
		return 0, &ValidationError{Reason: validation.Reason(err)}
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price <= 0 {
		return 0, &ValidationError{Reason: "price must be a positive number"}
	}
	return price, nil
}

// applyListings replaces the cached sequence from a full snapshot. The
// mutex serializes overlapping deliveries; the generation tag discards
// callbacks from subscriptions that have since been torn down.
func (c *Controller) applyListings(gen int, snap store.ListingsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if snap.Err != nil {
		c.view.ListingsLoad = Errored
		if c.logger != nil {
			c.logger.WithError(snap.Err).Error("listings subscription failed")
		}
		return
	}
	listings := make([]entity.Listing, len(snap.Listings))
	copy(listings, snap.Listings)
	entity.SortListingsDesc(listings)
	c.view.Listings = listings
	c.view.ListingsLoad = Loaded
}

// applyProfile replaces the cached profile. A missing document is a valid
// steady state, not an error.
func (c *Controller) applyProfile(gen int, snap store.ProfileSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if snap.Err != nil {
		c.view.ProfileLoad = Errored
		if c.logger != nil {
			c.logger.WithError(snap.Err).Error("profile subscription failed")
		}
		return
	}
	c.view.Profile = snap.Profile
	c.view.ProfileLoad = Loaded
}
