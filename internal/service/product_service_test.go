package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bizdesk/internal/constants"
	"github.com/bizdesk/internal/models"
	"github.com/bizdesk/internal/queue"
	"github.com/bizdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingCleanupQueue struct {
	payloads []queue.MediaCleanupPayload
}

func (q *recordingCleanupQueue) EnqueueMediaCleanup(payload queue.MediaCleanupPayload, _ ...asynq.Option) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

type productServiceFixture struct {
	db       *gorm.DB
	svc      *ProductService
	cleanup  *recordingCleanupQueue
	supplier models.Supplier
	category models.Category
}

func setupProductServiceTest(t *testing.T) *productServiceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Location{},
		&models.Supplier{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductSupplier{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	fixture := &productServiceFixture{db: db, cleanup: &recordingCleanupQueue{}}
	fixture.supplier = models.Supplier{Name: "Acme Supply", IsActive: true}
	if err := db.Create(&fixture.supplier).Error; err != nil {
		t.Fatalf("create supplier failed: %v", err)
	}
	fixture.category = models.Category{Slug: "tools", Name: "Tools", IsActive: true}
	if err := db.Create(&fixture.category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	fixture.svc = NewProductService(
		repository.NewProductRepository(db),
		repository.NewProductVariantRepository(db),
		repository.NewProductSupplierRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewLocationRepository(db),
		repository.NewSupplierRepository(db),
		fixture.cleanup,
	)
	return fixture
}

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

func decimalPtr(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}

func baseInput(sku string) ProductSaveInput {
	return ProductSaveInput{
		Name:          "Cordless Drill",
		SKU:           sku,
		RetailPrice:   decimalPtr("129.999"),
		StockQuantity: intPtr(4),
		Images:        []string{"/uploads/product/2026/01/a.png"},
	}
}

func TestProductServiceCreateWithChildren(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("DRILL-1")
	input.CategoryID = uintPtr(f.category.ID)
	input.Variants = []VariantInput{
		{Name: "18V", RetailPrice: decimalPtr("149.50")},
		{Name: "12V"},
	}
	input.Suppliers = []SupplierLinkInput{{SupplierID: uintPtr(f.supplier.ID), SupplierSKU: "AC-DR"}}

	product, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.ID == 0 || !product.IsActive {
		t.Fatalf("created product should have id and default active, got %+v", product)
	}
	if product.RetailPrice == nil || product.RetailPrice.String() != "130.00" {
		t.Fatalf("retail price should round to 2dp, got %v", product.RetailPrice)
	}
	if len(product.Variants) != 2 || product.Variants[0].Name != "18V" || product.Variants[1].SortOrder != 1 {
		t.Fatalf("variants should keep payload order, got %+v", product.Variants)
	}
	if product.Variants[1].RetailPrice != nil {
		t.Fatalf("blank variant price should stay null")
	}
	if len(product.Suppliers) != 1 || product.Suppliers[0].SupplierID != f.supplier.ID {
		t.Fatalf("supplier link should be created, got %+v", product.Suppliers)
	}
}

func TestProductServiceCreateKeepsExplicitInactive(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("DRILL-OFF")
	inactive := false
	input.IsActive = &inactive
	input.Variants = []VariantInput{{Name: "Hidden", IsActive: &inactive}}

	product, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.IsActive || product.Variants[0].IsActive {
		t.Fatalf("explicit inactive flags must persist, got product=%v variant=%v", product.IsActive, product.Variants[0].IsActive)
	}
}

func TestProductServiceKeepsNullRetailPrice(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("DRILL-NULL")
	input.RetailPrice = nil

	created, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	loaded, err := f.svc.GetAdminByID(created.ID)
	if err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if loaded.RetailPrice != nil {
		t.Fatalf("null retail price should stay null, got %s", loaded.RetailPrice.String())
	}
	raw, err := json.Marshal(loaded)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"retail_price":null`) {
		t.Fatalf("retail price should serialize as null: %s", raw)
	}
}

func TestProductServiceUpdateReplaceDeletesOmittedChildren(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("DRILL-2")
	input.Variants = []VariantInput{{Name: "A"}, {Name: "B"}}
	created, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	keepID := created.Variants[0].ID
	droppedID := created.Variants[1].ID

	update := baseInput("DRILL-2")
	update.ChildSync = constants.ChildSyncReplace
	update.Variants = []VariantInput{
		{Name: "C"},
		{ID: uintPtr(keepID), Name: "A renamed"},
	}
	updated, err := f.svc.Update(context.Background(), created.ID, update)
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if len(updated.Variants) != 2 {
		t.Fatalf("variants want 2 got %d", len(updated.Variants))
	}
	if updated.Variants[0].Name != "C" || updated.Variants[1].ID != keepID || updated.Variants[1].Name != "A renamed" {
		t.Fatalf("unexpected variants after replace: %+v", updated.Variants)
	}

	var dropped models.ProductVariant
	if err := f.db.Unscoped().First(&dropped, droppedID).Error; err != nil {
		t.Fatalf("dropped variant should still exist unscoped: %v", err)
	}
	if !dropped.DeletedAt.Valid {
		t.Fatalf("omitted variant should be soft-deleted")
	}
}

func TestProductServiceUpdateMergeDeletesOnlyListedIDs(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("DRILL-3")
	input.Variants = []VariantInput{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	created, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	update := baseInput("DRILL-3")
	update.ChildSync = constants.ChildSyncMerge
	update.Variants = []VariantInput{{ID: uintPtr(created.Variants[0].ID), Name: "A"}}
	update.DeletedVariantIDs = []uint{created.Variants[2].ID}
	updated, err := f.svc.Update(context.Background(), created.ID, update)
	if err != nil {
		t.Fatalf("merge update failed: %v", err)
	}
	if len(updated.Variants) != 2 {
		t.Fatalf("merge should keep omitted variant B, got %+v", updated.Variants)
	}
	for _, variant := range updated.Variants {
		if variant.ID == created.Variants[2].ID {
			t.Fatalf("listed variant should be deleted")
		}
	}
}

func TestProductServiceRejectsForeignVariantID(t *testing.T) {
	f := setupProductServiceTest(t)
	other := baseInput("OTHER-1")
	other.Variants = []VariantInput{{Name: "Foreign"}}
	foreign, err := f.svc.Create(context.Background(), other)
	if err != nil {
		t.Fatalf("create other product failed: %v", err)
	}
	target, err := f.svc.Create(context.Background(), baseInput("TARGET-1"))
	if err != nil {
		t.Fatalf("create target product failed: %v", err)
	}

	update := baseInput("TARGET-1")
	update.Variants = []VariantInput{{ID: uintPtr(foreign.Variants[0].ID), Name: "Stolen"}}
	_, err = f.svc.Update(context.Background(), target.ID, update)
	validationErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msgs := validationErr.Fields["variants.0.id"]; len(msgs) != 1 || msgs[0] != msgUnknownVariant {
		t.Fatalf("unexpected field errors: %+v", validationErr.Fields)
	}
}

func TestProductServiceFieldErrors(t *testing.T) {
	f := setupProductServiceTest(t)
	if _, err := f.svc.Create(context.Background(), baseInput("DUP-1")); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	input := baseInput("DUP-1")
	input.Name = "  "
	input.StockQuantity = intPtr(-1)
	input.Suppliers = []SupplierLinkInput{{SupplierID: uintPtr(9999)}}
	input.Variants = []VariantInput{{Name: ""}}
	_, err := f.svc.Create(context.Background(), input)
	validationErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "sku", "stock_quantity", "suppliers.0.supplier_id", "variants.0.name"} {
		if len(validationErr.Fields[field]) == 0 {
			t.Fatalf("expected error on %s, got %+v", field, validationErr.Fields)
		}
	}
	if validationErr.Fields["sku"][0] != msgSKUInUse {
		t.Fatalf("duplicate sku message mismatch: %v", validationErr.Fields["sku"])
	}

	var count int64
	f.db.Model(&models.Product{}).Count(&count)
	if count != 1 {
		t.Fatalf("rejected save must not write, product count=%d", count)
	}
}

func TestProductServiceRejectsUnknownChildSync(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("SYNC-1")
	input.ChildSync = "cascade"
	_, err := f.svc.Create(context.Background(), input)
	validationErr, ok := AsValidationError(err)
	if !ok || len(validationErr.Fields["child_sync"]) == 0 {
		t.Fatalf("expected child_sync field error, got %v", err)
	}
}

func TestProductServiceUpdateEnqueuesRemovedImages(t *testing.T) {
	f := setupProductServiceTest(t)
	input := baseInput("IMG-1")
	input.Images = []string{"/uploads/product/2026/01/a.png", "/uploads/product/2026/01/b.png"}
	created, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if len(f.cleanup.payloads) != 0 {
		t.Fatalf("create should not enqueue cleanup")
	}

	update := baseInput("IMG-1")
	update.Images = []string{"/uploads/product/2026/01/b.png"}
	if _, err := f.svc.Update(context.Background(), created.ID, update); err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if len(f.cleanup.payloads) != 1 {
		t.Fatalf("expected one cleanup payload, got %d", len(f.cleanup.payloads))
	}
	payload := f.cleanup.payloads[0]
	if payload.ProductID != created.ID || len(payload.URLs) != 1 || payload.URLs[0] != "/uploads/product/2026/01/a.png" {
		t.Fatalf("unexpected cleanup payload: %+v", payload)
	}
}

func TestProductServiceUpdateMissingProduct(t *testing.T) {
	f := setupProductServiceTest(t)
	if _, err := f.svc.Update(context.Background(), 404, baseInput("MISSING")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
