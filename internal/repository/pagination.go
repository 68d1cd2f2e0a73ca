package repository

import "gorm.io/gorm"

const maxListPageSize = 100

// applyPagination 应用分页参数；pageSize <= 0 表示不分页，超过上限按上限截断。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
