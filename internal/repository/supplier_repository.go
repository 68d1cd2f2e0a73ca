package repository

import (
	"errors"

	"github.com/bizdesk/internal/models"

	"gorm.io/gorm"
)

// SupplierRepository 供应商数据访问接口
type SupplierRepository interface {
	List(onlyActive bool) ([]models.Supplier, error)
	GetByID(id uint) (*models.Supplier, error)
	ListByIDs(ids []uint) ([]models.Supplier, error)
	Create(supplier *models.Supplier) error
	WithTx(tx *gorm.DB) SupplierRepository
}

// GormSupplierRepository GORM 实现
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓库
func NewSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSupplierRepository) WithTx(tx *gorm.DB) SupplierRepository {
	if tx == nil {
		return r
	}
	return &GormSupplierRepository{db: tx}
}

// List 供应商列表
func (r *GormSupplierRepository) List(onlyActive bool) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	query := r.db.Model(&models.Supplier{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC, id ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetByID 根据 ID 获取供应商
func (r *GormSupplierRepository) GetByID(id uint) (*models.Supplier, error) {
	if id == 0 {
		return nil, nil
	}
	var supplier models.Supplier
	if err := r.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

// ListByIDs 批量获取供应商
func (r *GormSupplierRepository) ListByIDs(ids []uint) ([]models.Supplier, error) {
	if len(ids) == 0 {
		return []models.Supplier{}, nil
	}
	var suppliers []models.Supplier
	if err := r.db.Where("id IN ?", ids).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Create 创建供应商
func (r *GormSupplierRepository) Create(supplier *models.Supplier) error {
	return r.db.Create(supplier).Error
}
