package models

import (
	"time"

	"gorm.io/gorm"
)

// Location 仓储位置表
type Location struct {
	ID        uint           `gorm:"primarykey" json:"id"`                              // 主键
	Code      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"` // 库位编码
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`            // 名称
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`                 // 排序权重
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`               // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Location) TableName() string {
	return "locations"
}
