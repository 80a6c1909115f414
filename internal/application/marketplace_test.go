package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarket/emarket/config"
	"github.com/emarket/emarket/internal/container"
	"github.com/emarket/emarket/pkg/helpers"
)

func TestBuildMarketplaceComposesFromContainer(t *testing.T) {
	cfg := config.Load()
	container.SetConfig(cfg)
	container.SetLogger(helpers.NewLogger(cfg.AppName, "test"))
	container.SetJWT(helpers.NewJWTManager("a", "r", cfg.AccessTTL, cfg.RefreshTTL))

	m := BuildMarketplace()

	require.NotNil(t, m.Session)
	require.NotNil(t, m.Store)
	require.NotNil(t, m.Controller)

	assert.Equal(t, cfg.AppID, m.Store.AppID)
	assert.Equal(t, cfg.ESListingsIndex, m.Store.ESIndex)
	assert.Equal(t, cfg.GCSBucket, m.Store.GCSBucket)
	assert.Equal(t, cfg.AppName, m.Session.AppName)
	assert.Same(t, m.Store, m.Session.Store)
}
