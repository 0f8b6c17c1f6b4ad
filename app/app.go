package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"origen-dotacion/app/controller"
	"origen-dotacion/app/router"
	"origen-dotacion/config"
	"origen-dotacion/db"
	"origen-dotacion/repository"
	"origen-dotacion/service"

	"go.uber.org/zap"
)

// App holds the wired HTTP handler and the resources to release on shutdown
type App struct {
	Handler http.Handler
	Catalog *service.CatalogStore
	conn    *sql.DB
	file    *service.FileCatalogSource
	logger  *zap.SugaredLogger
}

// StartBackground revalidates the catalog every interval and, for a local
// catalog file, on every change of the file. Goroutines stop with ctx.
func (a *App) StartBackground(ctx context.Context, interval time.Duration) {
	go a.Catalog.Watch(ctx, interval)

	if a.file != nil {
		go func() {
			if err := a.file.Watch(ctx, a.Catalog.Refresh); err != nil {
				a.logger.Warnf("⚠️  StartBackground: %v", err)
			}
		}()
	}
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	storage, conn, err := OpenCartStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	source, err := catalogSource(ctx, cfg, logger)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}

	// Initial catalog: remote document or the bundled one
	loadCtx := ctx
	if cfg.CatalogFetchTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, cfg.CatalogFetchTimeout)
		defer cancel()
	}
	loader := service.NewCatalogLoader(source, logger)
	catalogStore := service.NewCatalogStore(loader.Load(loadCtx), source, logger)

	sessions := service.NewCartSessions(storage, logger)

	optimizer := service.NewImageOptimizer(cfg.ImageCacheDir, cfg.BaseURL, nil, logger)
	if err := optimizer.EnsureCacheDir(); err != nil {
		logger.Warnf("⚠️  Initialize: %v", err)
	}

	brochure := service.NewBrochureService(catalogStore, cfg.BaseURL, cfg.ChromePath, cfg.WhatsAppNumber, cfg.QuoteEmail, logger)

	// Create controllers
	controllers := &router.Controllers{
		Catalog:  controller.NewCatalogController(catalogStore, cfg.CatalogFetchTimeout, logger),
		Image:    controller.NewImageController(catalogStore, optimizer, logger),
		Warmup:   controller.NewImageWarmupController(service.NewImageWarmupService(catalogStore, optimizer, logger), logger),
		Brochure: controller.NewBrochureController(brochure, logger),
		Cart:     controller.NewCartController(sessions, catalogStore, logger),
		Quote:    controller.NewQuoteController(sessions, cfg.WhatsAppNumber, cfg.QuoteEmail, logger),
	}

	application := &App{
		Handler: router.SetupRoutes(controllers, cfg.StaticDir, logger),
		Catalog: catalogStore,
		conn:    conn,
		logger:  logger,
	}
	if file, ok := source.(*service.FileCatalogSource); ok {
		application.file = file
	}
	return application, nil
}

// OpenCartStorage selects the cart backend from CART_STORAGE
func OpenCartStorage(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (repository.CartStorageInterface, *sql.DB, error) {
	switch cfg.CartStorage {
	case config.StorageMemory:
		logger.Infof("🛒 Cart storage: memory (carts are lost on restart)")
		return repository.NewMemoryStorage(), nil, nil

	case config.StoragePostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		conn, err := db.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureCartSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Infof("✅ Cart storage: postgres")
		return repository.NewCartStorageRepository(conn, db.DriverPostgres, logger), conn, nil

	default:
		conn, err := db.OpenSQLite(ctx, cfg.CartSQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureCartSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Infof("✅ Cart storage: sqlite at %s", cfg.CartSQLitePath)
		return repository.NewCartStorageRepository(conn, db.DriverSQLite, logger), conn, nil
	}
}

// catalogSource picks the catalog document: CATALOG_URL, then CATALOG_FILE, then Drive, then none
func catalogSource(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (service.CatalogSource, error) {
	switch {
	case cfg.CatalogURL != "":
		logger.Infof("📦 Catalog source: %s", cfg.CatalogURL)
		client := &http.Client{Timeout: cfg.CatalogFetchTimeout}
		return service.NewHTTPCatalogSource(cfg.CatalogURL, client), nil

	case cfg.CatalogFile != "":
		src := service.NewFileCatalogSource(cfg.CatalogFile, logger)
		logger.Infof("📦 Catalog source: %s", src)
		return src, nil

	case cfg.CatalogDriveFileID != "":
		src, err := service.NewDriveCatalogSource(ctx, cfg.GoogleCredentials, cfg.CatalogDriveFileID, logger)
		if err != nil {
			return nil, err
		}
		logger.Infof("📦 Catalog source: %s", src)
		return src, nil

	default:
		return nil, nil
	}
}
