package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductSupplier 商品与供应商关联表
type ProductSupplier struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ProductID        uint           `gorm:"not null;index" json:"product_id"`                         // 商品ID
	SupplierID       uint           `gorm:"not null;index" json:"supplier_id"`                        // 供应商ID
	SupplierSKU      string         `gorm:"column:supplier_sku;type:varchar(64)" json:"supplier_sku"` // 供应商侧编码
	CostPrice        *Money         `gorm:"type:decimal(20,2)" json:"cost_price"`                     // 采购成本价
	IsPreferred      bool           `gorm:"not null;default:false" json:"is_preferred"`               // 是否首选
	MinOrderQuantity int            `gorm:"not null;default:0" json:"min_order_quantity"`             // 最小起订量
	PackagingUnit    string         `gorm:"type:varchar(32)" json:"packaging_unit"`                   // 包装单位
	SortOrder        int            `gorm:"default:0;index" json:"sort_order"`                        // 排序（提交顺序）
	CreatedAt        time.Time      `json:"created_at"`                                               // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"` // 供应商信息
}

// TableName 指定表名
func (ProductSupplier) TableName() string {
	return "product_suppliers"
}
