package router

import (
	"strings"

	"github.com/bizdesk/internal/cache"
	"github.com/bizdesk/internal/config"
	adminhandlers "github.com/bizdesk/internal/http/handlers/admin"
	consolehandlers "github.com/bizdesk/internal/http/handlers/console"
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（持久化接口 / 编辑控制台）
	adminHandler := adminhandlers.New(c)
	consoleHandler := consolehandlers.New(c)
	redisClient := cache.Client()
	uploadRule := RateLimitRule{
		Prefix:        cache.Key("rate", "console_upload"),
		WindowSeconds: cfg.Console.RateLimitWindowSeconds,
		MaxRequests:   cfg.Console.RateLimitMaxRequests,
		Message:       "too many uploads",
	}
	saveRule := RateLimitRule{
		Prefix:        cache.Key("rate", "console_save"),
		WindowSeconds: cfg.Console.RateLimitWindowSeconds,
		MaxRequests:   cfg.Console.RateLimitMaxRequests,
		Message:       "too many save attempts",
	}

	// 中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）
	uploadDir := strings.TrimSpace(cfg.Upload.Dir)
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	r.Static("/uploads", uploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 持久化接口
		admin := apiV1.Group("/admin")
		{
			admin.GET("/products", adminHandler.GetAdminProducts)
			admin.GET("/products/:id", adminHandler.GetAdminProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/upload", adminHandler.UploadFile)
			admin.GET("/categories", adminHandler.GetCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.GET("/locations", adminHandler.GetLocations)
			admin.POST("/locations", adminHandler.CreateLocation)
			admin.GET("/suppliers", adminHandler.GetSuppliers)
			admin.POST("/suppliers", adminHandler.CreateSupplier)
		}

		// 编辑控制台
		console := apiV1.Group("/console")
		{
			console.GET("/products", consoleHandler.GetProducts)
			console.POST("/sessions", consoleHandler.CreateSession)

			session := console.Group("/sessions/:sid")
			session.GET("", consoleHandler.GetSession)
			session.DELETE("", consoleHandler.CloseSession)
			session.PUT("/fields", consoleHandler.ApplyFields)

			session.POST("/variants/editor", consoleHandler.OpenVariantEditor)
			session.POST("/variants/editor/commit", consoleHandler.CommitVariant)
			session.DELETE("/variants/editor", consoleHandler.DiscardVariantEditor)
			session.DELETE("/variants/:index", consoleHandler.RemoveVariant)

			session.POST("/suppliers/editor", consoleHandler.OpenSupplierEditor)
			session.POST("/suppliers/editor/commit", consoleHandler.CommitSupplier)
			session.DELETE("/suppliers/editor", consoleHandler.DiscardSupplierEditor)
			session.DELETE("/suppliers/:index", consoleHandler.RemoveSupplier)

			session.POST("/media", RateLimitMiddleware(redisClient, uploadRule, KeyByIPAndParam("sid")), consoleHandler.UploadMedia)
			session.DELETE("/media", consoleHandler.RemoveMedia)
			session.GET("/previews/:handle", consoleHandler.GetPreview)
			session.POST("/save", RateLimitMiddleware(redisClient, saveRule, KeyByIPAndParam("sid")), consoleHandler.Save)
		}
	}

	return r
}
