package router

import (
	"github.com/emarket/emarket/internal/application"
	"github.com/emarket/emarket/internal/container"
	pginfra "github.com/emarket/emarket/internal/infrastructure/postgres"
	handlers "github.com/emarket/emarket/internal/interface/http"
	"github.com/emarket/emarket/internal/router/modules"
)

func buildCatalogModule() *modules.CatalogModule {
	repo := pginfra.NewListingRepository(container.GetPGPool())

	catalog := application.NewCatalogService(
		repo,
		container.GetES(),
		container.GetConfig().ESListingsIndex,
		container.GetLogger(),
	)

	return modules.NewCatalogModule(handlers.NewProductHandler(catalog))
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildCatalogModule())

	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
