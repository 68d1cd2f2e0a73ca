package models

import (
	"github.com/bizdesk/internal/logger"
)

// 默认仓储位置编码
const defaultLocationCode = "MAIN"

// EnsureDefaultLocation 确保至少存在一个可用的仓储位置
func EnsureDefaultLocation() error {
	var count int64
	if err := DB.Model(&Location{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	location := Location{
		Code:     defaultLocationCode,
		Name:     "Main Warehouse",
		IsActive: true,
	}
	if err := DB.Create(&location).Error; err != nil {
		return err
	}
	logger.Warnw("default_location_created", "code", location.Code, "location_id", location.ID)
	return nil
}
