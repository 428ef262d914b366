//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"

	"github.com/stoktakip/catalog-view/internal/catalog/delivery/http"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/command"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/query"
	"github.com/stoktakip/catalog-view/kafka"
)

// Wire sets
var SessionSet = wire.NewSet(
	session.NewRegistry,
)

var CommandSet = wire.NewSet(
	command.NewToggleFavoriteHandler,
	command.NewUpdateThresholdHandler,
	command.NewChangeSortHandler,
	command.NewSetFiltersHandler,
)

var QuerySet = wire.NewSet(
	query.NewGetViewHandler,
	query.NewListFacetsHandler,
	query.NewExportViewHandler,
)

// InitializeCatalogHandler initializes the HTTP handler with all dependencies
func InitializeCatalogHandler(api session.InventoryAPI, cfg session.Config, events *kafka.Publisher) (*http.CatalogHandler, error) {
	wire.Build(
		SessionSet,
		CommandSet,
		QuerySet,
		http.NewCatalogHandler,
	)
	return nil, nil
}
