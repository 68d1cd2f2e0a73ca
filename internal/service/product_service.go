package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizdesk/internal/cache"
	"github.com/bizdesk/internal/constants"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"
	"github.com/bizdesk/internal/queue"
	"github.com/bizdesk/internal/repository"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	msgRequired       = "is required"
	msgNegative       = "must not be negative"
	msgSKUInUse       = "already in use"
	msgUnknownVariant = "unknown variant"
	msgUnknownLink    = "unknown supplier link"
	msgUnknownRef     = "does not exist"
	msgUnsupported    = "unsupported value"
)

var allowedWeightUnits = map[string]struct{}{
	constants.WeightUnitKG: {},
	constants.WeightUnitG:  {},
	constants.WeightUnitLB: {},
	constants.WeightUnitOZ: {},
}

var allowedDimensionUnits = map[string]struct{}{
	constants.DimensionUnitCM: {},
	constants.DimensionUnitMM: {},
	constants.DimensionUnitIN: {},
}

// MediaCleanupQueue 媒体清理任务投递接口
type MediaCleanupQueue interface {
	EnqueueMediaCleanup(payload queue.MediaCleanupPayload, opts ...asynq.Option) error
}

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	variantRepo  repository.ProductVariantRepository
	linkRepo     repository.ProductSupplierRepository
	categoryRepo repository.CategoryRepository
	locationRepo repository.LocationRepository
	supplierRepo repository.SupplierRepository
	cleanupQueue MediaCleanupQueue
}

// NewProductService 创建商品服务
func NewProductService(
	repo repository.ProductRepository,
	variantRepo repository.ProductVariantRepository,
	linkRepo repository.ProductSupplierRepository,
	categoryRepo repository.CategoryRepository,
	locationRepo repository.LocationRepository,
	supplierRepo repository.SupplierRepository,
	cleanupQueue MediaCleanupQueue,
) *ProductService {
	return &ProductService{
		repo:         repo,
		variantRepo:  variantRepo,
		linkRepo:     linkRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		supplierRepo: supplierRepo,
		cleanupQueue: cleanupQueue,
	}
}

// ProductSaveInput 创建/更新商品输入
type ProductSaveInput struct {
	Name            string
	SKU             string
	Barcode         string
	Description     string
	CategoryID      *uint
	LocationID      *uint
	BuyingPrice     *decimal.Decimal
	RetailPrice     *decimal.Decimal
	WholesalePrice  *decimal.Decimal
	StockQuantity   *int
	ReorderLevel    *int
	ReorderQuantity *int
	Weight          *decimal.Decimal
	WeightUnit      string
	Length          *decimal.Decimal
	Width           *decimal.Decimal
	Height          *decimal.Decimal
	DimensionUnit   string
	IsActive        *bool
	CustomFields    map[string]interface{}
	Images          []string
	Variants        []VariantInput
	Suppliers       []SupplierLinkInput

	// ChildSync 为 replace 时未出现的子记录被删除；为 merge 时仅删除 Deleted*IDs
	ChildSync          string
	DeletedVariantIDs  []uint
	DeletedSupplierIDs []uint
}

// VariantInput 规格输入，ID 为空表示新增
type VariantInput struct {
	ID              *uint
	Name            string
	BuyingPrice     *decimal.Decimal
	RetailPrice     *decimal.Decimal
	WholesalePrice  *decimal.Decimal
	StockQuantity   *int
	ReorderLevel    *int
	ReorderQuantity *int
	IsActive        *bool
	LowStockAlert   bool
	Attributes      map[string]interface{}
	Weight          *decimal.Decimal
	WeightUnit      string
}

// SupplierLinkInput 供应商关联输入，ID 为空表示新增
type SupplierLinkInput struct {
	ID               *uint
	SupplierID       *uint
	SupplierSKU      string
	CostPrice        *decimal.Decimal
	IsPreferred      bool
	MinOrderQuantity *int
	PackagingUnit    string
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情（含规格与供应商）
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductSaveInput) (*models.Product, error) {
	return s.save(ctx, nil, input)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id uint, input ProductSaveInput) (*models.Product, error) {
	return s.save(ctx, &id, input)
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(id)
	}); err != nil {
		return err
	}
	s.afterWrite(ctx, id, []string(product.Images))
	return nil
}

func (s *ProductService) save(ctx context.Context, id *uint, input ProductSaveInput) (*models.Product, error) {
	childSync, ok := normalizeChildSync(input.ChildSync)
	if !ok {
		return nil, &ValidationError{Fields: FieldErrors{"child_sync": {msgUnsupported}}}
	}

	var (
		productID     uint
		removedImages []string
	)
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.repo.WithTx(tx)

		var existing *models.Product
		if id != nil {
			found, err := productRepo.GetByID(*id)
			if err != nil {
				return err
			}
			if found == nil {
				return ErrNotFound
			}
			existing = found
		}

		fields := validateProductInput(input)
		if err := s.checkReferences(tx, existing, input, childSync, fields); err != nil {
			return err
		}
		if !fields.Empty() {
			return &ValidationError{Fields: fields}
		}

		product := existing
		if product == nil {
			product = &models.Product{}
		} else {
			removedImages = diffRemovedImages(product.Images, input.Images)
		}
		applyProductInput(product, input)

		if existing == nil {
			if err := productRepo.Create(product); err != nil {
				return err
			}
		} else if err := productRepo.Update(product); err != nil {
			return err
		}
		productID = product.ID

		if err := s.syncVariants(tx, product, existing, input, childSync); err != nil {
			return err
		}
		return s.syncSupplierLinks(tx, product, existing, input, childSync)
	})
	if err != nil {
		if validationErr, ok := AsValidationError(err); ok {
			logger.Infow("product_save_field_rejected", "product_id", id, "fields", validationErr.Fields.Fields())
		}
		return nil, err
	}

	s.afterWrite(ctx, productID, removedImages)
	return s.GetAdminByID(productID)
}

func (s *ProductService) checkReferences(tx *gorm.DB, existing *models.Product, input ProductSaveInput, childSync string, fields FieldErrors) error {
	if sku := strings.TrimSpace(input.SKU); sku != "" {
		var excludeID *uint
		if existing != nil {
			excludeID = &existing.ID
		}
		count, err := s.repo.WithTx(tx).CountBySKU(sku, excludeID)
		if err != nil {
			return err
		}
		if count > 0 {
			fields.Add("sku", msgSKUInUse)
		}
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.WithTx(tx).GetByID(*input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			fields.Add("category_id", msgUnknownRef)
		}
	}
	if input.LocationID != nil {
		location, err := s.locationRepo.WithTx(tx).GetByID(*input.LocationID)
		if err != nil {
			return err
		}
		if location == nil {
			fields.Add("location_id", msgUnknownRef)
		}
	}

	supplierIDs := make([]uint, 0, len(input.Suppliers))
	for _, link := range input.Suppliers {
		if link.SupplierID != nil {
			supplierIDs = append(supplierIDs, *link.SupplierID)
		}
	}
	if len(supplierIDs) > 0 {
		suppliers, err := s.supplierRepo.WithTx(tx).ListByIDs(supplierIDs)
		if err != nil {
			return err
		}
		known := make(map[uint]struct{}, len(suppliers))
		for _, supplier := range suppliers {
			known[supplier.ID] = struct{}{}
		}
		for i, link := range input.Suppliers {
			if link.SupplierID == nil {
				continue
			}
			if _, ok := known[*link.SupplierID]; !ok {
				fields.Add(fmt.Sprintf("suppliers.%d.supplier_id", i), msgUnknownRef)
			}
		}
	}

	ownedVariants := map[uint]struct{}{}
	ownedLinks := map[uint]struct{}{}
	if existing != nil {
		for _, variant := range existing.Variants {
			ownedVariants[variant.ID] = struct{}{}
		}
		for _, link := range existing.Suppliers {
			ownedLinks[link.ID] = struct{}{}
		}
	}
	for i, variant := range input.Variants {
		if variant.ID == nil {
			continue
		}
		if _, ok := ownedVariants[*variant.ID]; !ok {
			fields.Add(fmt.Sprintf("variants.%d.id", i), msgUnknownVariant)
		}
	}
	for i, link := range input.Suppliers {
		if link.ID == nil {
			continue
		}
		if _, ok := ownedLinks[*link.ID]; !ok {
			fields.Add(fmt.Sprintf("suppliers.%d.id", i), msgUnknownLink)
		}
	}

	if existing != nil && childSync == constants.ChildSyncMerge {
		for _, deletedID := range input.DeletedVariantIDs {
			if _, ok := ownedVariants[deletedID]; !ok {
				fields.Add("deleted_variant_ids", msgUnknownVariant)
				break
			}
		}
		for _, deletedID := range input.DeletedSupplierIDs {
			if _, ok := ownedLinks[deletedID]; !ok {
				fields.Add("deleted_supplier_ids", msgUnknownLink)
				break
			}
		}
	}
	return nil
}

func (s *ProductService) syncVariants(tx *gorm.DB, product, existing *models.Product, input ProductSaveInput, childSync string) error {
	repo := s.variantRepo.WithTx(tx)
	current := map[uint]models.ProductVariant{}
	if existing != nil {
		for _, variant := range existing.Variants {
			current[variant.ID] = variant
		}
	}

	keepIDs := make([]uint, 0, len(input.Variants))
	for i, item := range input.Variants {
		variant := models.ProductVariant{ProductID: product.ID}
		if item.ID != nil {
			variant = current[*item.ID]
		}
		applyVariantInput(&variant, item, i)
		if item.ID != nil {
			if err := repo.Update(&variant); err != nil {
				return err
			}
		} else if err := repo.Create(&variant); err != nil {
			return err
		}
		keepIDs = append(keepIDs, variant.ID)
	}

	if existing == nil {
		return nil
	}
	if childSync == constants.ChildSyncMerge {
		return repo.DeleteByIDs(product.ID, input.DeletedVariantIDs)
	}
	return repo.DeleteByProductExcept(product.ID, keepIDs)
}

func (s *ProductService) syncSupplierLinks(tx *gorm.DB, product, existing *models.Product, input ProductSaveInput, childSync string) error {
	repo := s.linkRepo.WithTx(tx)
	current := map[uint]models.ProductSupplier{}
	if existing != nil {
		for _, link := range existing.Suppliers {
			link.Supplier = nil
			current[link.ID] = link
		}
	}

	keepIDs := make([]uint, 0, len(input.Suppliers))
	for i, item := range input.Suppliers {
		link := models.ProductSupplier{ProductID: product.ID}
		if item.ID != nil {
			link = current[*item.ID]
		}
		applySupplierLinkInput(&link, item, i)
		if item.ID != nil {
			if err := repo.Update(&link); err != nil {
				return err
			}
		} else if err := repo.Create(&link); err != nil {
			return err
		}
		keepIDs = append(keepIDs, link.ID)
	}

	if existing == nil {
		return nil
	}
	if childSync == constants.ChildSyncMerge {
		return repo.DeleteByIDs(product.ID, input.DeletedSupplierIDs)
	}
	return repo.DeleteByProductExcept(product.ID, keepIDs)
}

// afterWrite 写入成功后的缓存失效与媒体清理
func (s *ProductService) afterWrite(ctx context.Context, productID uint, removedImages []string) {
	if err := cache.BumpProductListVersion(ctx); err != nil {
		logger.Warnw("product_list_cache_bump_failed", "product_id", productID, "error", err)
	}
	if len(removedImages) == 0 || s.cleanupQueue == nil {
		return
	}
	payload := queue.MediaCleanupPayload{ProductID: productID, URLs: removedImages}
	if err := s.cleanupQueue.EnqueueMediaCleanup(payload); err != nil {
		logger.Warnw("product_media_cleanup_enqueue_failed",
			"product_id", productID,
			"count", len(removedImages),
			"error", err,
		)
	}
}

func validateProductInput(input ProductSaveInput) FieldErrors {
	fields := FieldErrors{}
	if strings.TrimSpace(input.Name) == "" {
		fields.Add("name", msgRequired)
	}
	if strings.TrimSpace(input.SKU) == "" {
		fields.Add("sku", msgRequired)
	}
	checkNonNegativeDecimal(fields, "buying_price", input.BuyingPrice)
	checkNonNegativeDecimal(fields, "retail_price", input.RetailPrice)
	checkNonNegativeDecimal(fields, "wholesale_price", input.WholesalePrice)
	checkNonNegativeInt(fields, "stock_quantity", input.StockQuantity)
	checkNonNegativeInt(fields, "reorder_level", input.ReorderLevel)
	checkNonNegativeInt(fields, "reorder_quantity", input.ReorderQuantity)
	checkNonNegativeDecimal(fields, "weight", input.Weight)
	checkNonNegativeDecimal(fields, "length", input.Length)
	checkNonNegativeDecimal(fields, "width", input.Width)
	checkNonNegativeDecimal(fields, "height", input.Height)
	checkUnit(fields, "weight_unit", input.WeightUnit, allowedWeightUnits)
	checkUnit(fields, "dimension_unit", input.DimensionUnit, allowedDimensionUnits)

	for i, variant := range input.Variants {
		prefix := fmt.Sprintf("variants.%d.", i)
		if strings.TrimSpace(variant.Name) == "" {
			fields.Add(prefix+"name", msgRequired)
		}
		checkNonNegativeDecimal(fields, prefix+"buying_price", variant.BuyingPrice)
		checkNonNegativeDecimal(fields, prefix+"retail_price", variant.RetailPrice)
		checkNonNegativeDecimal(fields, prefix+"wholesale_price", variant.WholesalePrice)
		checkNonNegativeInt(fields, prefix+"stock_quantity", variant.StockQuantity)
		checkNonNegativeInt(fields, prefix+"reorder_level", variant.ReorderLevel)
		checkNonNegativeInt(fields, prefix+"reorder_quantity", variant.ReorderQuantity)
		checkNonNegativeDecimal(fields, prefix+"weight", variant.Weight)
		checkUnit(fields, prefix+"weight_unit", variant.WeightUnit, allowedWeightUnits)
	}
	for i, link := range input.Suppliers {
		prefix := fmt.Sprintf("suppliers.%d.", i)
		if link.SupplierID == nil || *link.SupplierID == 0 {
			fields.Add(prefix+"supplier_id", msgRequired)
		}
		checkNonNegativeDecimal(fields, prefix+"cost_price", link.CostPrice)
		checkNonNegativeInt(fields, prefix+"min_order_quantity", link.MinOrderQuantity)
	}
	return fields
}

func checkNonNegativeDecimal(fields FieldErrors, field string, value *decimal.Decimal) {
	if value != nil && value.IsNegative() {
		fields.Add(field, msgNegative)
	}
}

func checkNonNegativeInt(fields FieldErrors, field string, value *int) {
	if value != nil && *value < 0 {
		fields.Add(field, msgNegative)
	}
}

func checkUnit(fields FieldErrors, field, raw string, allowed map[string]struct{}) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return
	}
	if _, ok := allowed[value]; !ok {
		fields.Add(field, msgUnsupported)
	}
}

func normalizeChildSync(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.ChildSyncReplace:
		return constants.ChildSyncReplace, true
	case constants.ChildSyncMerge:
		return constants.ChildSyncMerge, true
	default:
		return "", false
	}
}

func applyProductInput(product *models.Product, input ProductSaveInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.SKU = strings.TrimSpace(input.SKU)
	product.Barcode = strings.TrimSpace(input.Barcode)
	product.Description = strings.TrimSpace(input.Description)
	product.CategoryID = input.CategoryID
	product.LocationID = input.LocationID
	product.BuyingPrice = toMoneyPtr(input.BuyingPrice)
	product.RetailPrice = toMoneyPtr(input.RetailPrice)
	product.WholesalePrice = toMoneyPtr(input.WholesalePrice)
	product.StockQuantity = intOrZero(input.StockQuantity)
	product.ReorderLevel = intOrZero(input.ReorderLevel)
	product.ReorderQuantity = intOrZero(input.ReorderQuantity)
	product.Weight = toNullDecimal(input.Weight)
	product.WeightUnit = strings.ToLower(strings.TrimSpace(input.WeightUnit))
	product.Length = toNullDecimal(input.Length)
	product.Width = toNullDecimal(input.Width)
	product.Height = toNullDecimal(input.Height)
	product.DimensionUnit = strings.ToLower(strings.TrimSpace(input.DimensionUnit))
	product.CustomFields = datatypes.JSONMap(input.CustomFields)
	product.Images = models.StringArray(normalizeImages(input.Images))
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	} else if product.ID == 0 {
		product.IsActive = true
	}
}

func applyVariantInput(variant *models.ProductVariant, input VariantInput, position int) {
	variant.Name = strings.TrimSpace(input.Name)
	variant.BuyingPrice = toMoneyPtr(input.BuyingPrice)
	variant.RetailPrice = toMoneyPtr(input.RetailPrice)
	variant.WholesalePrice = toMoneyPtr(input.WholesalePrice)
	variant.StockQuantity = intOrZero(input.StockQuantity)
	variant.ReorderLevel = intOrZero(input.ReorderLevel)
	variant.ReorderQuantity = intOrZero(input.ReorderQuantity)
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	} else if variant.ID == 0 {
		variant.IsActive = true
	}
	variant.LowStockAlert = input.LowStockAlert
	variant.Attributes = datatypes.JSONMap(input.Attributes)
	variant.Weight = toNullDecimal(input.Weight)
	variant.WeightUnit = strings.ToLower(strings.TrimSpace(input.WeightUnit))
	variant.SortOrder = position
}

func applySupplierLinkInput(link *models.ProductSupplier, input SupplierLinkInput, position int) {
	if input.SupplierID != nil {
		link.SupplierID = *input.SupplierID
	}
	link.SupplierSKU = strings.TrimSpace(input.SupplierSKU)
	link.CostPrice = toMoneyPtr(input.CostPrice)
	link.IsPreferred = input.IsPreferred
	link.MinOrderQuantity = intOrZero(input.MinOrderQuantity)
	link.PackagingUnit = strings.TrimSpace(input.PackagingUnit)
	link.SortOrder = position
}

func normalizeImages(images []string) []string {
	result := make([]string, 0, len(images))
	for _, image := range images {
		trimmed := strings.TrimSpace(image)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

// diffRemovedImages 返回旧图片中不再被引用的地址（保持原顺序）
func diffRemovedImages(before, after []string) []string {
	kept := make(map[string]struct{}, len(after))
	for _, image := range after {
		kept[strings.TrimSpace(image)] = struct{}{}
	}
	removed := make([]string, 0)
	for _, image := range before {
		if _, ok := kept[image]; ok {
			continue
		}
		removed = append(removed, image)
	}
	return removed
}

func toMoneyPtr(value *decimal.Decimal) *models.Money {
	if value == nil {
		return nil
	}
	return models.NewMoneyPtr(*value)
}

func toNullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*value)
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
