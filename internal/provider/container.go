package provider

import (
	"net/http"
	"time"

	"github.com/bizdesk/internal/apiclient"
	"github.com/bizdesk/internal/cache"
	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"
	"github.com/bizdesk/internal/productedit"
	"github.com/bizdesk/internal/queue"
	"github.com/bizdesk/internal/repository"
	"github.com/bizdesk/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo         repository.ProductRepository
	ProductVariantRepo  repository.ProductVariantRepository
	ProductSupplierRepo repository.ProductSupplierRepository
	CategoryRepo        repository.CategoryRepository
	LocationRepo        repository.LocationRepository
	SupplierRepo        repository.SupplierRepository

	// Services
	UploadService    *service.UploadService
	ProductService   *service.ProductService
	ReferenceService *service.ReferenceService

	// Console
	APIClient *apiclient.Client
	Catalog   *apiclient.CachedCatalog
	Sessions  *productedit.Store
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	// 3. 初始化控制台会话
	c.initConsole()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.ProductVariantRepo = repository.NewProductVariantRepository(db)
	c.ProductSupplierRepo = repository.NewProductSupplierRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.LocationRepo = repository.NewLocationRepository(db)
	c.SupplierRepo = repository.NewSupplierRepository(db)
}

func (c *Container) initServices() {
	c.UploadService = service.NewUploadService(c.Config)
	c.ProductService = service.NewProductService(
		c.ProductRepo,
		c.ProductVariantRepo,
		c.ProductSupplierRepo,
		c.CategoryRepo,
		c.LocationRepo,
		c.SupplierRepo,
		c.QueueClient,
	)
	c.ReferenceService = service.NewReferenceService(
		c.CategoryRepo,
		c.LocationRepo,
		c.SupplierRepo,
		time.Duration(c.Config.Redis.ReferenceTTLSeconds)*time.Second,
	)
}

func (c *Container) initConsole() {
	console := c.Config.Console
	timeout := time.Duration(console.RequestTimeoutMS) * time.Millisecond
	c.APIClient = apiclient.New(console.APIBaseURL, timeout, &http.Client{})
	c.Catalog = apiclient.NewCachedCatalog(c.APIClient, time.Duration(console.ListingCacheTTLSeconds)*time.Second)

	options := productedit.Options{
		DeletionPolicy:    console.ChildDeletionPolicy,
		UploadConcurrency: console.UploadConcurrency,
		PreviewMaxBytes:   console.PreviewMaxBytes,
	}
	c.Sessions = productedit.NewStore(
		time.Duration(console.SessionTTLMinutes)*time.Minute,
		func(notices *productedit.NoticeLog) *productedit.Session {
			return productedit.NewSession(productedit.Dependencies{
				Storage:     c.APIClient,
				Persistence: c.APIClient,
				References:  c.APIClient,
				Listing:     c.Catalog,
				Notifier:    notices,
			}, options)
		},
	)
}
