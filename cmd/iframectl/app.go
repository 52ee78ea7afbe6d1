package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/backup"
	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository/memory"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository/postgres"
	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
)

var (
	useDB   bool
	verbose bool
)

// app holds the services one command invocation needs.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	metafields *service.MetafieldService
	products   *service.ProductService
	theme      *service.ThemeService
	access     *service.AccessService

	db    *sql.DB
	index *backup.Index
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = config.NewLogger(cfg)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	a := &app{cfg: cfg, logger: logger}

	var repos *repository.Repositories
	if useDB {
		a.db, err = postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		repos = postgres.NewRepositories(a.db, logger)
	} else {
		repos = memory.NewRepositories()
	}

	a.index, err = backup.OpenIndex(cfg.Backup.IndexPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open backup index: %w", err)
	}
	backups := backup.NewStore(cfg.Backup.Dir, a.index, logger)

	client := shopify.NewClient(cfg.Shopify, logger)
	a.metafields = service.NewMetafieldService(client, repos, logger)
	a.products = service.NewProductService(client, repos, logger)
	a.theme = service.NewThemeService(cfg, client, backups, logger)
	a.access = service.NewAccessService(cfg.App, client, repos, logger)
	return a, nil
}

func (a *app) close() {
	if a.index != nil {
		a.index.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Sync()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
