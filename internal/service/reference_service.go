package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizdesk/internal/cache"
	"github.com/bizdesk/internal/constants"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"
	"github.com/bizdesk/internal/repository"
)

// ReferenceService 参考数据（分类、仓储位置、供应商）服务
type ReferenceService struct {
	categoryRepo repository.CategoryRepository
	locationRepo repository.LocationRepository
	supplierRepo repository.SupplierRepository
	ttl          time.Duration
}

// NewReferenceService 创建参考数据服务
func NewReferenceService(
	categoryRepo repository.CategoryRepository,
	locationRepo repository.LocationRepository,
	supplierRepo repository.SupplierRepository,
	ttl time.Duration,
) *ReferenceService {
	return &ReferenceService{
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		supplierRepo: supplierRepo,
		ttl:          ttl,
	}
}

// CreateCategoryInput 创建分类输入
type CreateCategoryInput struct {
	Slug      string
	Name      string
	SortOrder int
}

// CreateLocationInput 创建仓储位置输入
type CreateLocationInput struct {
	Code      string
	Name      string
	SortOrder int
}

// CreateSupplierInput 创建供应商输入
type CreateSupplierInput struct {
	Name         string
	ContactEmail string
	Phone        string
}

// Categories 获取启用的分类列表
func (s *ReferenceService) Categories(ctx context.Context) ([]models.Category, error) {
	return loadReference(ctx, constants.ReferenceCategories, s.ttl, func() ([]models.Category, error) {
		return s.categoryRepo.List(true)
	})
}

// Locations 获取启用的仓储位置列表
func (s *ReferenceService) Locations(ctx context.Context) ([]models.Location, error) {
	return loadReference(ctx, constants.ReferenceLocations, s.ttl, func() ([]models.Location, error) {
		return s.locationRepo.List(true)
	})
}

// Suppliers 获取启用的供应商列表
func (s *ReferenceService) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	return loadReference(ctx, constants.ReferenceSuppliers, s.ttl, func() ([]models.Supplier, error) {
		return s.supplierRepo.List(true)
	})
}

// CreateCategory 创建分类
func (s *ReferenceService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	fields := FieldErrors{}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if slug == "" {
		fields.Add("slug", msgRequired)
	}
	if name == "" {
		fields.Add("name", msgRequired)
	}
	if slug != "" {
		count, err := s.categoryRepo.CountBySlug(slug, nil)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			fields.Add("slug", msgSKUInUse)
		}
	}
	if !fields.Empty() {
		return nil, &ValidationError{Fields: fields}
	}

	category := models.Category{Slug: slug, Name: name, SortOrder: input.SortOrder, IsActive: true}
	if err := s.categoryRepo.Create(&category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, constants.ReferenceCategories)
	return &category, nil
}

// CreateLocation 创建仓储位置
func (s *ReferenceService) CreateLocation(ctx context.Context, input CreateLocationInput) (*models.Location, error) {
	fields := FieldErrors{}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" {
		fields.Add("code", msgRequired)
	}
	if name == "" {
		fields.Add("name", msgRequired)
	}
	if !fields.Empty() {
		return nil, &ValidationError{Fields: fields}
	}

	location := models.Location{Code: code, Name: name, SortOrder: input.SortOrder, IsActive: true}
	if err := s.locationRepo.Create(&location); err != nil {
		return nil, err
	}
	s.invalidate(ctx, constants.ReferenceLocations)
	return &location, nil
}

// CreateSupplier 创建供应商
func (s *ReferenceService) CreateSupplier(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &ValidationError{Fields: FieldErrors{"name": {msgRequired}}}
	}
	supplier := models.Supplier{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        strings.TrimSpace(input.Phone),
		IsActive:     true,
	}
	if err := s.supplierRepo.Create(&supplier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, constants.ReferenceSuppliers)
	return &supplier, nil
}

func (s *ReferenceService) invalidate(ctx context.Context, kind string) {
	if err := cache.DelReference(ctx, kind); err != nil {
		logger.Warnw("reference_cache_invalidate_failed", "kind", kind, "error", err)
	}
}

// loadReference 先读缓存，未命中时回源并回写
func loadReference[T any](ctx context.Context, kind string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	var cached []T
	hit, err := cache.GetReference(ctx, kind, &cached)
	if err != nil {
		logger.Warnw("reference_cache_get_failed", "kind", kind, "error", err)
	}
	if hit {
		return cached, nil
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if err := cache.SetReference(ctx, kind, items, ttl); err != nil {
		logger.Warnw("reference_cache_set_failed", "kind", kind, "error", err)
	}
	return items, nil
}
