// Package app contains the application setup.
package app

import (
	"log/slog"
	"path/filepath"

	cservice "github.com/velmoro/tienda/internal/catalog/service"
	cstore "github.com/velmoro/tienda/internal/catalog/store"
	"github.com/velmoro/tienda/internal/config"
	sservice "github.com/velmoro/tienda/internal/sales/service"
	sstore "github.com/velmoro/tienda/internal/sales/store"
)

type Dependencies struct {
	Catalog cservice.CatalogService
	Sales   sservice.SalesService
	Logger  *slog.Logger
}

// SetupDependencies builds the two CSV stores from the storage config and
// wires the catalog and sales services on top of them. The sales service
// shares the product store so stock checks and decrements go through the
// catalog's single writer.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	productStore := cstore.NewCSVStore(filepath.Join(cfg.Storage.Dir, cfg.Storage.ProductsFile), logger)
	saleStore := sstore.NewCSVStore(filepath.Join(cfg.Storage.Dir, cfg.Storage.SalesFile), logger)

	return &Dependencies{
		Catalog: cservice.NewService(productStore),
		Sales:   sservice.NewService(saleStore, productStore, logger),
		Logger:  logger,
	}
}
