package container

import (
	"context"
	"fmt"
	"time"

	"pricebook-backend/internal/config"
	catalogRepo "pricebook-backend/internal/domains/catalog/repository"
	importHandler "pricebook-backend/internal/domains/priceimport/handler"
	importService "pricebook-backend/internal/domains/priceimport/service"
	"pricebook-backend/internal/domains/priceimport/source"
	infraCache "pricebook-backend/internal/infrastructure/cache"
	"pricebook-backend/internal/infrastructure/database"
	"pricebook-backend/internal/infrastructure/storage"
	"pricebook-backend/pkg/cache"
	"pricebook-backend/pkg/jwt"

	"github.com/rs/zerolog/log"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của application.
// Thứ tự khởi tạo: Config -> Infrastructure -> Repositories -> Services -> Handlers
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config *config.Config
	// nil khi STORE_DRIVER=memory
	DB *database.PostgresDB
	// Redis, fallback in-memory
	Cache cache.Cache
	// nil khi MINIO_ENABLED=false
	Storage    *storage.MinIOStorage
	JWTManager *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CatalogStore catalogRepo.Store

	// ========================================
	// SERVICE LAYER
	// ========================================
	SourceReader  source.Reader
	ImportService importService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	ImportHandler *importHandler.ImportHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph
func NewContainer() (*Container, error) {
	log.Info().Msg("Initializing DI container")
	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Str("store", cfg.App.StoreDriver).Msg("Config loaded")

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initCache()
	if err := c.initStorage(); err != nil {
		return nil, err
	}
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	// ========================================
	// STEP 3-5: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("DI container initialized")
	return c, nil
}

// initDatabase kết nối PostgreSQL và đảm bảo schema; bỏ qua với memory store
func (c *Container) initDatabase() error {
	if c.Config.App.StoreDriver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: catalog is not persisted")
		return nil
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	c.DB = db
	log.Info().Msg("Database connected")
	return nil
}

// initCache: Redis lỗi không critical, fallback sang in-memory cache
func (c *Container) initCache() {
	redisCache := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis connection failed (non-critical), using in-memory cache")
		_ = redisCache.Close()
		c.Cache = cache.NewMemoryCache()
		return
	}
	c.Cache = redisCache
}

func (c *Container) initStorage() error {
	if !c.Config.MinIO.Enabled {
		log.Info().Msg("MinIO disabled: applied files are not archived")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	minioStorage, err := storage.NewMinIOStorage(ctx, c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio storage: %w", err)
	}
	c.Storage = minioStorage
	log.Info().Str("bucket", c.Config.MinIO.Bucket).Msg("MinIO storage ready")
	return nil
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		c.CatalogStore = catalogRepo.NewMemoryStore()
		return
	}
	c.CatalogStore = catalogRepo.NewPostgresStore(c.DB.Pool)
}

func (c *Container) initServices() {
	importCfg := c.Config.Import

	// PDF: dùng extractor ngoài nếu có cấu hình, không thì phát hiện bảng từ text
	var pdf source.PDFExtractor
	if importCfg.PDFExtractorURL != "" {
		pdf = source.NewRemotePDFExtractor(importCfg.PDFExtractorURL, importCfg.PDFTimeout)
		log.Info().Str("url", importCfg.PDFExtractorURL).Msg("Using remote PDF extractor")
	}

	var reader source.Reader = source.NewFileReader(pdf, 0)
	if importCfg.TableCacheTTL > 0 {
		reader = source.NewCachedReader(reader, c.Cache, importCfg.TableCacheTTL)
	}
	c.SourceReader = reader

	var archiver importService.Archiver
	if c.Storage != nil {
		archiver = c.Storage
	}

	c.ImportService = importService.NewImportService(
		c.SourceReader,
		c.CatalogStore,
		archiver,
		importService.Options{PreviewPageSize: importCfg.PreviewPageSize},
	)
}

func (c *Container) initHandlers() {
	c.ImportHandler = importHandler.NewImportHandler(c.ImportService, c.Config.Import.MaxFileBytes)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}
