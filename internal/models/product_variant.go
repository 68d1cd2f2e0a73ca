package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductVariant 商品规格表
type ProductVariant struct {
	ID              uint                `gorm:"primarykey" json:"id"`                          // 主键
	ProductID       uint                `gorm:"not null;index" json:"product_id"`              // 商品ID
	Name            string              `gorm:"type:varchar(200);not null" json:"name"`        // 规格名称
	BuyingPrice     *Money              `gorm:"type:decimal(20,2)" json:"buying_price"`        // 进货价
	RetailPrice     *Money              `gorm:"type:decimal(20,2)" json:"retail_price"`        // 零售价
	WholesalePrice  *Money              `gorm:"type:decimal(20,2)" json:"wholesale_price"`     // 批发价
	StockQuantity   int                 `gorm:"not null;default:0" json:"stock_quantity"`      // 库存数量
	ReorderLevel    int                 `gorm:"not null;default:0" json:"reorder_level"`       // 补货阈值
	ReorderQuantity int                 `gorm:"not null;default:0" json:"reorder_quantity"`    // 补货数量
	IsActive        bool                `gorm:"not null" json:"is_active"`                     // 是否启用
	LowStockAlert   bool                `gorm:"not null;default:false" json:"low_stock_alert"` // 低库存提醒
	Attributes      datatypes.JSONMap   `gorm:"type:json" json:"attributes"`                   // 规格属性（颜色/尺码等）
	Weight          decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"weight"`              // 重量
	WeightUnit      string              `gorm:"type:varchar(8)" json:"weight_unit"`            // 重量单位
	SortOrder       int                 `gorm:"default:0;index" json:"sort_order"`             // 排序（提交顺序）
	CreatedAt       time.Time           `json:"created_at"`                                    // 创建时间
	UpdatedAt       time.Time           `json:"updated_at"`                                    // 更新时间
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
