package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID              uint                `gorm:"primarykey" json:"id"`                                  // 主键
	Name            string              `gorm:"type:varchar(200);not null" json:"name"`                // 名称
	SKU             string              `gorm:"column:sku;type:varchar(64);not null;index" json:"sku"` // 商品编码（存活记录内唯一）
	Barcode         string              `gorm:"type:varchar(64);index" json:"barcode"`                 // 条码
	Description     string              `gorm:"type:text" json:"description"`                          // 描述
	CategoryID      *uint               `gorm:"index" json:"category_id"`                              // 分类ID
	LocationID      *uint               `gorm:"index" json:"location_id"`                              // 仓储位置ID
	BuyingPrice     *Money              `gorm:"type:decimal(20,2)" json:"buying_price"`                // 进货价
	RetailPrice     *Money              `gorm:"type:decimal(20,2)" json:"retail_price"`                // 零售价
	WholesalePrice  *Money              `gorm:"type:decimal(20,2)" json:"wholesale_price"`             // 批发价
	StockQuantity   int                 `gorm:"not null;default:0" json:"stock_quantity"`              // 库存数量
	ReorderLevel    int                 `gorm:"not null;default:0" json:"reorder_level"`               // 补货阈值
	ReorderQuantity int                 `gorm:"not null;default:0" json:"reorder_quantity"`            // 补货数量
	Weight          decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"weight"`                      // 重量
	WeightUnit      string              `gorm:"type:varchar(8)" json:"weight_unit"`                    // 重量单位
	Length          decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"length"`                      // 长
	Width           decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"width"`                       // 宽
	Height          decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"height"`                      // 高
	DimensionUnit   string              `gorm:"type:varchar(8)" json:"dimension_unit"`                 // 尺寸单位
	CustomFields    datatypes.JSONMap   `gorm:"type:json" json:"custom_fields"`                        // 自定义字段
	Images          StringArray         `gorm:"type:json" json:"images"`                               // 图片数组（首张为主图）
	IsActive        bool                `gorm:"not null;index" json:"is_active"`                       // 是否启用
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt       time.Time           `json:"updated_at"`                                            // 更新时间
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	Category  *Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Location  *Location         `gorm:"foreignKey:LocationID" json:"location,omitempty"` // 仓储位置
	Variants  []ProductVariant  `gorm:"foreignKey:ProductID" json:"variants"`            // 规格列表
	Suppliers []ProductSupplier `gorm:"foreignKey:ProductID" json:"suppliers"`           // 供应商关联
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
