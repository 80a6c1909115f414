package application

import (
	"github.com/emarket/emarket/internal/container"
	pginfra "github.com/emarket/emarket/internal/infrastructure/postgres"
	"github.com/emarket/emarket/internal/session"
	"github.com/emarket/emarket/internal/store"
	"github.com/emarket/emarket/internal/sync"
)

// Marketplace bundles the embeddable client-side components: the identity
// session, the store adapter and the synchronization controller. The read
// API does not use it; an embedding client calls BuildMarketplace after the
// container singletons are set, then drives Session and Controller directly.
type Marketplace struct {
	Session    *session.Service
	Store      *store.Adapter
	Controller *sync.Controller
}

func BuildMarketplace() *Marketplace {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	adapter := store.NewAdapter(
		pginfra.NewListingRepository(pool),
		pginfra.NewProfileRepository(pool),
		container.GetRedis(),
		logger,
		cfg.AppID,
	)
	adapter.ES = container.GetES()
	adapter.ESIndex = cfg.ESListingsIndex
	adapter.GCS = container.GetGCS()
	adapter.GCSBucket = cfg.GCSBucket

	sess := session.NewService(
		pginfra.NewIdentityRepository(pool),
		adapter,
		container.GetJWT(),
		container.GetRedis(),
		container.GetRabbitPub(),
		logger,
		cfg.AppName,
		cfg.InitialAuthToken,
	)

	return &Marketplace{
		Session:    sess,
		Store:      adapter,
		Controller: sync.NewController(adapter, sess, logger),
	}
}
