package repository

import (
	"errors"

	"github.com/bizdesk/internal/models"

	"gorm.io/gorm"
)

// LocationRepository 仓储位置数据访问接口
type LocationRepository interface {
	List(onlyActive bool) ([]models.Location, error)
	GetByID(id uint) (*models.Location, error)
	Create(location *models.Location) error
	WithTx(tx *gorm.DB) LocationRepository
}

// GormLocationRepository GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository 创建仓储位置仓库
func NewLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLocationRepository) WithTx(tx *gorm.DB) LocationRepository {
	if tx == nil {
		return r
	}
	return &GormLocationRepository{db: tx}
}

// List 仓储位置列表
func (r *GormLocationRepository) List(onlyActive bool) ([]models.Location, error) {
	var locations []models.Location
	query := r.db.Model(&models.Location{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("sort_order DESC, id ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetByID 根据 ID 获取仓储位置
func (r *GormLocationRepository) GetByID(id uint) (*models.Location, error) {
	if id == 0 {
		return nil, nil
	}
	var location models.Location
	if err := r.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// Create 创建仓储位置
func (r *GormLocationRepository) Create(location *models.Location) error {
	return r.db.Create(location).Error
}
