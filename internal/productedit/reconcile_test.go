package productedit

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/bizdesk/internal/constants"
)

func persistedProduct() Product {
	p := NewProduct()
	p.ID = uintPtr(7)
	p.Name = "Oak Table"
	p.SKU = "OAK-1"
	p.RetailPrice = "129.999"
	p.StockQuantity = "4"
	p.Images = []string{"/uploads/product/a.png"}
	p.Variants = []Variant{
		{ID: uintPtr(11), VariantForm: VariantForm{Name: "Red", IsActive: true}},
		{ID: uintPtr(12), VariantForm: VariantForm{Name: "Green", IsActive: true}},
	}
	p.Suppliers = []SupplierLink{
		{ID: uintPtr(21), SupplierForm: SupplierForm{SupplierID: uintPtr(1), CostPrice: "10"}},
	}
	return p
}

func TestReconcileKeepsKnownIDsAndStripsOthers(t *testing.T) {
	original := persistedProduct()
	edited := original.Clone()
	edited.Variants[0].Name = "Red-Large"
	edited.Variants = append(edited.Variants, Variant{VariantForm: VariantForm{Name: "Blue"}})
	// 原集合中不存在的标识视为新增
	edited.Variants = append(edited.Variants, Variant{ID: uintPtr(999), VariantForm: VariantForm{Name: "Ghost"}})

	payload := NewReconciler(constants.DeletionPolicyReplace).Reconcile(&original, edited)

	if len(payload.Variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(payload.Variants))
	}
	if payload.Variants[0].ID == nil || *payload.Variants[0].ID != 11 || payload.Variants[0].Name != "Red-Large" {
		t.Fatalf("unexpected first variant: %+v", payload.Variants[0])
	}
	if payload.Variants[1].ID == nil || *payload.Variants[1].ID != 12 {
		t.Fatalf("unexpected second variant: %+v", payload.Variants[1])
	}
	if payload.Variants[2].ID != nil || payload.Variants[3].ID != nil {
		t.Fatalf("new variants must not carry ids: %+v", payload.Variants[2:])
	}
	if payload.Suppliers[0].ID == nil || *payload.Suppliers[0].ID != 21 {
		t.Fatalf("unexpected supplier link: %+v", payload.Suppliers[0])
	}
}

func TestReconcileRedVariantScenario(t *testing.T) {
	original := NewProduct()
	original.ID = uintPtr(1)
	original.Name = "Shirt"
	original.SKU = "SHIRT"
	original.Variants = []Variant{{ID: uintPtr(1), VariantForm: VariantForm{Name: "Red"}}}

	edited := original.Clone()
	edited.Variants = []Variant{
		{ID: uintPtr(1), VariantForm: VariantForm{Name: "Red-Large"}},
		{VariantForm: VariantForm{Name: "Blue"}},
	}

	payload := NewReconciler("").Reconcile(&original, edited)
	raw, err := json.Marshal(payload.Variants)
	if err != nil {
		t.Fatalf("marshal variants failed: %v", err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode variants failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(decoded))
	}
	if decoded[0]["id"] != float64(1) || decoded[0]["name"] != "Red-Large" {
		t.Fatalf("unexpected first variant: %v", decoded[0])
	}
	if _, ok := decoded[1]["id"]; ok {
		t.Fatalf("new variant must not contain an id key: %s", raw)
	}
	if decoded[1]["name"] != "Blue" {
		t.Fatalf("unexpected second variant: %v", decoded[1])
	}
}

func TestReconcilePreservesOrderAndLength(t *testing.T) {
	original := persistedProduct()
	edited := original.Clone()
	edited.Variants[0], edited.Variants[1] = edited.Variants[1], edited.Variants[0]

	payload := NewReconciler("").Reconcile(&original, edited)
	if len(payload.Variants) != len(edited.Variants) || len(payload.Suppliers) != len(edited.Suppliers) {
		t.Fatalf("collection lengths changed: %+v", payload)
	}
	if *payload.Variants[0].ID != 12 || *payload.Variants[1].ID != 11 {
		t.Fatalf("relative order not preserved: %+v", payload.Variants)
	}
}

func TestReconcileIsDeterministicAndDoesNotMutateInputs(t *testing.T) {
	original := persistedProduct()
	edited := original.Clone()
	edited.CustomFields = map[string]interface{}{"brand": "Acme", "model": "T1", "tags": []interface{}{"a"}}
	edited.Variants[0].Attributes = map[string]interface{}{"color": "red", "size": "L"}
	before := edited.Clone()

	r := NewReconciler(constants.DeletionPolicyExplicit)
	first, err := json.Marshal(r.Reconcile(&original, edited))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	second, err := json.Marshal(r.Reconcile(&original, edited))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("reconcile is not deterministic:\n%s\n%s", first, second)
	}
	if !reflect.DeepEqual(before, edited) {
		t.Fatalf("edited aggregate mutated by reconcile")
	}
}

func TestReconcileCoercesNumbers(t *testing.T) {
	edited := NewProduct()
	edited.Name = "Lamp"
	edited.SKU = "LAMP"
	edited.RetailPrice = "129.999"
	edited.BuyingPrice = "  "
	edited.StockQuantity = "5.0"
	edited.ReorderLevel = "abc"
	edited.Weight = "1.23456"
	edited.ReorderQuantity = "18446744073709551617"

	payload := NewReconciler("").Reconcile(nil, edited)
	if payload.RetailPrice == nil || payload.RetailPrice.StringFixed(2) != "130.00" {
		t.Fatalf("unexpected retail price: %v", payload.RetailPrice)
	}
	if payload.StockQuantity == nil || *payload.StockQuantity != 5 {
		t.Fatalf("unexpected stock quantity: %v", payload.StockQuantity)
	}
	if payload.Weight == nil || payload.Weight.String() != "1.235" {
		t.Fatalf("unexpected weight: %v", payload.Weight)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for _, key := range []string{"buying_price", "reorder_level", "reorder_quantity", "wholesale_price", "length"} {
		value, ok := decoded[key]
		if !ok || value != nil {
			t.Fatalf("expected %s to be null, got %v (present=%v)", key, value, ok)
		}
	}
	if strings.Contains(string(raw), "NaN") {
		t.Fatalf("payload contains NaN: %s", raw)
	}
}

func TestReconcileCreateStripsAllIDs(t *testing.T) {
	edited := persistedProduct()
	edited.ID = nil

	payload := NewReconciler(constants.DeletionPolicyExplicit).Reconcile(nil, edited)
	for i, v := range payload.Variants {
		if v.ID != nil {
			t.Fatalf("variant %d carries id on create", i)
		}
	}
	for i, s := range payload.Suppliers {
		if s.ID != nil {
			t.Fatalf("supplier %d carries id on create", i)
		}
	}
	if len(payload.DeletedVariantIDs) != 0 || len(payload.DeletedSupplierIDs) != 0 {
		t.Fatalf("create payload must not carry delete ids: %+v", payload)
	}
	if payload.ChildSync != constants.ChildSyncReplace {
		t.Fatalf("unexpected child sync on create: %s", payload.ChildSync)
	}
}

func TestReconcileDeletionPolicies(t *testing.T) {
	original := persistedProduct()
	edited := original.Clone()
	edited.Variants = edited.Variants[1:]
	edited.Suppliers = nil

	replace := NewReconciler(constants.DeletionPolicyReplace).Reconcile(&original, edited)
	if replace.ChildSync != constants.ChildSyncReplace {
		t.Fatalf("expected replace sync, got %s", replace.ChildSync)
	}
	if len(replace.DeletedVariantIDs) != 0 || len(replace.DeletedSupplierIDs) != 0 {
		t.Fatalf("replace policy must not list deletions: %+v", replace)
	}
	raw, _ := json.Marshal(replace)
	if strings.Contains(string(raw), "deleted_variant_ids") {
		t.Fatalf("replace payload should omit delete lists: %s", raw)
	}
	if replace.Suppliers == nil {
		t.Fatalf("suppliers must marshal as an empty list")
	}

	explicit := NewReconciler(constants.DeletionPolicyExplicit).Reconcile(&original, edited)
	if explicit.ChildSync != constants.ChildSyncMerge {
		t.Fatalf("expected merge sync, got %s", explicit.ChildSync)
	}
	if !reflect.DeepEqual(explicit.DeletedVariantIDs, []uint{11}) {
		t.Fatalf("unexpected deleted variant ids: %v", explicit.DeletedVariantIDs)
	}
	if !reflect.DeepEqual(explicit.DeletedSupplierIDs, []uint{21}) {
		t.Fatalf("unexpected deleted supplier ids: %v", explicit.DeletedSupplierIDs)
	}
}

func TestReconcileDropsBlankImages(t *testing.T) {
	edited := NewProduct()
	edited.Images = []string{"/a.png", " ", "/b.png"}
	payload := NewReconciler("").Reconcile(nil, edited)
	if !reflect.DeepEqual(payload.Images, []string{"/a.png", "/b.png"}) {
		t.Fatalf("unexpected images: %v", payload.Images)
	}
}
