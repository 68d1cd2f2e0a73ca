package repository

import (
	"errors"

	"github.com/bizdesk/internal/models"

	"gorm.io/gorm"
)

// ProductVariantRepository 商品规格数据访问接口
type ProductVariantRepository interface {
	ListByProduct(productID uint) ([]models.ProductVariant, error)
	Create(item *models.ProductVariant) error
	Update(item *models.ProductVariant) error
	DeleteByIDs(productID uint, ids []uint) error
	DeleteByProductExcept(productID uint, keepIDs []uint) error
	WithTx(tx *gorm.DB) ProductVariantRepository
}

// GormProductVariantRepository GORM 实现
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository 创建规格仓库
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// ListByProduct 根据商品获取规格列表
func (r *GormProductVariantRepository) ListByProduct(productID uint) ([]models.ProductVariant, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	var items []models.ProductVariant
	if err := r.db.Where("product_id = ?", productID).Order("sort_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建规格
func (r *GormProductVariantRepository) Create(item *models.ProductVariant) error {
	return r.db.Create(item).Error
}

// Update 更新规格
func (r *GormProductVariantRepository) Update(item *models.ProductVariant) error {
	return r.db.Save(item).Error
}

// DeleteByIDs 删除商品下指定规格
func (r *GormProductVariantRepository) DeleteByIDs(productID uint, ids []uint) error {
	if productID == 0 {
		return errors.New("invalid product id")
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("product_id = ? AND id IN ?", productID, ids).Delete(&models.ProductVariant{}).Error
}

// DeleteByProductExcept 删除商品下未保留的规格
func (r *GormProductVariantRepository) DeleteByProductExcept(productID uint, keepIDs []uint) error {
	if productID == 0 {
		return errors.New("invalid product id")
	}
	query := r.db.Where("product_id = ?", productID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(&models.ProductVariant{}).Error
}
