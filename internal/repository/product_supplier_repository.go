package repository

import (
	"errors"

	"github.com/bizdesk/internal/models"

	"gorm.io/gorm"
)

// ProductSupplierRepository 商品供应商关联数据访问接口
type ProductSupplierRepository interface {
	ListByProduct(productID uint) ([]models.ProductSupplier, error)
	Create(item *models.ProductSupplier) error
	Update(item *models.ProductSupplier) error
	DeleteByIDs(productID uint, ids []uint) error
	DeleteByProductExcept(productID uint, keepIDs []uint) error
	WithTx(tx *gorm.DB) ProductSupplierRepository
}

// GormProductSupplierRepository GORM 实现
type GormProductSupplierRepository struct {
	db *gorm.DB
}

// NewProductSupplierRepository 创建供应商关联仓库
func NewProductSupplierRepository(db *gorm.DB) *GormProductSupplierRepository {
	return &GormProductSupplierRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductSupplierRepository) WithTx(tx *gorm.DB) ProductSupplierRepository {
	if tx == nil {
		return r
	}
	return &GormProductSupplierRepository{db: tx}
}

// ListByProduct 根据商品获取供应商关联列表
func (r *GormProductSupplierRepository) ListByProduct(productID uint) ([]models.ProductSupplier, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	var items []models.ProductSupplier
	if err := r.db.Where("product_id = ?", productID).Order("sort_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建供应商关联
func (r *GormProductSupplierRepository) Create(item *models.ProductSupplier) error {
	return r.db.Create(item).Error
}

// Update 更新供应商关联
func (r *GormProductSupplierRepository) Update(item *models.ProductSupplier) error {
	return r.db.Save(item).Error
}

// DeleteByIDs 删除商品下指定供应商关联
func (r *GormProductSupplierRepository) DeleteByIDs(productID uint, ids []uint) error {
	if productID == 0 {
		return errors.New("invalid product id")
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("product_id = ? AND id IN ?", productID, ids).Delete(&models.ProductSupplier{}).Error
}

// DeleteByProductExcept 删除商品下未保留的供应商关联
func (r *GormProductSupplierRepository) DeleteByProductExcept(productID uint, keepIDs []uint) error {
	if productID == 0 {
		return errors.New("invalid product id")
	}
	query := r.db.Where("product_id = ?", productID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(&models.ProductSupplier{}).Error
}
