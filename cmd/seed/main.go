package main

import (
	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.ToDBOptions()); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.DB.Transaction(seed); err != nil {
		stdLog.Fatalf("Failed to seed data: %v", err)
	}
	logger.Infow("seed_completed")
}

func seed(tx *gorm.DB) error {
	// 添加分类
	categories := []models.Category{
		{Slug: "furniture", Name: "Furniture", SortOrder: 10, IsActive: true},
		{Slug: "lighting", Name: "Lighting", SortOrder: 20, IsActive: true},
		{Slug: "hardware", Name: "Hardware", SortOrder: 30, IsActive: true},
	}
	for i := range categories {
		if err := tx.Where(models.Category{Slug: categories[i].Slug}).FirstOrCreate(&categories[i]).Error; err != nil {
			return err
		}
	}

	// 添加仓储位置
	locations := []models.Location{
		{Code: "MAIN", Name: "Main Warehouse", SortOrder: 10, IsActive: true},
		{Code: "STORE-A", Name: "Storefront A", SortOrder: 20, IsActive: true},
	}
	for i := range locations {
		if err := tx.Where(models.Location{Code: locations[i].Code}).FirstOrCreate(&locations[i]).Error; err != nil {
			return err
		}
	}

	// 添加供应商
	suppliers := []models.Supplier{
		{Name: "Northwind Timber", ContactEmail: "orders@northwind.example", Phone: "+1-555-0100", IsActive: true},
		{Name: "Lumen Works", ContactEmail: "sales@lumen.example", IsActive: true},
	}
	for i := range suppliers {
		if err := tx.Where(models.Supplier{Name: suppliers[i].Name}).FirstOrCreate(&suppliers[i]).Error; err != nil {
			return err
		}
	}

	// 示例商品（含规格与供应商关联）
	var existing int64
	if err := tx.Model(&models.Product{}).Where("sku = ?", "OAK-TABLE").Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	product := models.Product{
		Name:            "Oak Dining Table",
		SKU:             "OAK-TABLE",
		Description:     "Solid oak, seats six.",
		CategoryID:      &categories[0].ID,
		LocationID:      &locations[0].ID,
		BuyingPrice:     models.NewMoneyPtr(decimal.RequireFromString("80.00")),
		RetailPrice:     models.NewMoneyPtr(decimal.RequireFromString("149.00")),
		StockQuantity:   12,
		ReorderLevel:    3,
		ReorderQuantity: 10,
		Weight:          decimal.NewNullDecimal(decimal.RequireFromString("38.5")),
		WeightUnit:      "kg",
		DimensionUnit:   "cm",
		Images:          models.StringArray{},
		IsActive:        true,
	}
	if err := tx.Create(&product).Error; err != nil {
		return err
	}

	variants := []models.ProductVariant{
		{ProductID: product.ID, Name: "Natural", RetailPrice: models.NewMoneyPtr(decimal.RequireFromString("149.00")), StockQuantity: 8, IsActive: true, SortOrder: 0},
		{ProductID: product.ID, Name: "Walnut Stain", RetailPrice: models.NewMoneyPtr(decimal.RequireFromString("159.00")), StockQuantity: 4, IsActive: true, SortOrder: 1},
	}
	if err := tx.Create(&variants).Error; err != nil {
		return err
	}

	link := models.ProductSupplier{
		ProductID:        product.ID,
		SupplierID:       suppliers[0].ID,
		SupplierSKU:      "NW-OAK-6",
		CostPrice:        models.NewMoneyPtr(decimal.RequireFromString("78.00")),
		IsPreferred:      true,
		MinOrderQuantity: 2,
		PackagingUnit:    "crate",
	}
	return tx.Create(&link).Error
}
