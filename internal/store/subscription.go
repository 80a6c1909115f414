package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/emarket/emarket/internal/domain/repository"
)

// SubscribeListings opens a live subscription to the full listing
// collection. The callback receives the complete current snapshot once
// immediately and again after every remote change; no ordering is applied,
// that is the subscriber's job. The returned function closes the
// subscription and waits for the delivery goroutine to drain, so no callback
// runs after it returns.
//
// On a transport failure the callback receives a snapshot with Err set and
// the subscription stops; there is no automatic retry.
func (a *Adapter) SubscribeListings(cb func(ListingsSnapshot)) (func(), error) {
	return a.subscribe(productsChannel(a.AppID), func(ctx context.Context) error {
		ls, err := a.Listings.List(ctx)
		if err != nil {
			return err
		}
		cb(ListingsSnapshot{Listings: ls})
		return nil
	}, func(err error) {
		cb(ListingsSnapshot{Err: err})
	})
}

// SubscribeProfile opens a live subscription to one profile document. A
// missing document is delivered as a nil Profile, not an error.
func (a *Adapter) SubscribeProfile(userID string, cb func(ProfileSnapshot)) (func(), error) {
	return a.subscribe(profileChannel(a.AppID, userID), func(ctx context.Context) error {
		p, err := a.Profiles.Get(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		cb(ProfileSnapshot{Profile: p})
		return nil
	}, func(err error) {
		cb(ProfileSnapshot{Err: err})
	})
}

// subscribe pumps change notifications from a Redis channel into deliver.
// All deliveries happen on one goroutine, so callbacks never overlap.
func (a *Adapter) subscribe(channel string, deliver func(context.Context) error, fail func(error)) (func(), error) {
	if a.Redis == nil {
		return nil, errors.New("store: redis not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := a.Redis.Subscribe(ctx, channel)
	done := make(chan struct{})

	go func() {
		defer close(done)

		refresh := func() bool {
			if err := deliver(ctx); err != nil {
				// Suppress errors caused by our own teardown.
				if ctx.Err() == nil {
					fail(fmt.Errorf("snapshot fetch for %s: %w", channel, err))
				}
				return false
			}
			return true
		}

		if !refresh() {
			return
		}
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					if ctx.Err() == nil {
						fail(fmt.Errorf("change channel %s closed", channel))
					}
					return
				}
				if !refresh() {
					return
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			<-done
		})
	}
	return unsubscribe, nil
}
