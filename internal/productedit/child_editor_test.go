package productedit

import (
	"errors"
	"testing"
)

func TestChildEditorCommitEditReplacesElement(t *testing.T) {
	records := persistedProduct().Variants
	editor := NewVariantEditor()

	form, err := editor.Open(records, intPtr(1))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if editor.State().Mode != EditorOpenEdit || editor.State().Index != 1 {
		t.Fatalf("unexpected state: %+v", editor.State())
	}
	form.Name = "Green-XL"

	next, errs, err := editor.Commit(records, form)
	if err != nil || !errs.Empty() {
		t.Fatalf("commit failed: %v %v", err, errs)
	}
	if len(next) != len(records) {
		t.Fatalf("length changed: %d -> %d", len(records), len(next))
	}
	if next[1].Name != "Green-XL" || next[1].ID == nil || *next[1].ID != 12 {
		t.Fatalf("unexpected replaced element: %+v", next[1])
	}
	if records[1].Name != "Green" {
		t.Fatalf("input slice mutated: %+v", records[1])
	}
	if editor.State().Mode != EditorClosed {
		t.Fatalf("editor should close after commit")
	}
}

func TestChildEditorCommitNewAppends(t *testing.T) {
	records := persistedProduct().Variants
	editor := NewVariantEditor()

	form, err := editor.Open(records, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !form.IsActive {
		t.Fatalf("new variant should default to active")
	}
	form.Name = "Blue"

	next, errs, err := editor.Commit(records, form)
	if err != nil || !errs.Empty() {
		t.Fatalf("commit failed: %v %v", err, errs)
	}
	if len(next) != len(records)+1 {
		t.Fatalf("expected length %d, got %d", len(records)+1, len(next))
	}
	if next[len(next)-1].ID != nil || next[len(next)-1].Name != "Blue" {
		t.Fatalf("unexpected appended element: %+v", next[len(next)-1])
	}
}

func TestChildEditorInvalidCommitKeepsSessionOpen(t *testing.T) {
	records := persistedProduct().Variants
	editor := NewVariantEditor()
	form, _ := editor.Open(records, intPtr(0))
	form.Name = " "
	form.StockQuantity = "-2"

	next, errs, err := editor.Commit(records, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs["name"] == nil || errs["stock_quantity"] == nil {
		t.Fatalf("expected name and stock_quantity errors, got %v", errs)
	}
	if len(next) != len(records) || next[0].Name != "Red" {
		t.Fatalf("records changed on invalid commit: %+v", next)
	}
	if editor.State().Mode != EditorOpenEdit {
		t.Fatalf("editor should stay open, got %+v", editor.State())
	}
	if editor.Form().Name != " " {
		t.Fatalf("form input should be kept after rejection")
	}
}

func TestChildEditorReopenDoesNotLeakStaleValues(t *testing.T) {
	records := persistedProduct().Variants
	editor := NewVariantEditor()

	form, _ := editor.Open(records, intPtr(0))
	form.Name = ""
	form.Attributes = map[string]interface{}{"color": "purple"}
	if _, errs, _ := editor.Commit(records, form); errs.Empty() {
		t.Fatalf("expected blank name to be rejected")
	}

	fresh, err := editor.Open(records, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if fresh.Name != "" || fresh.Attributes != nil {
		t.Fatalf("stale values leaked into new session: %+v", fresh)
	}
	if editor.Errors() != nil {
		t.Fatalf("stale field errors leaked: %v", editor.Errors())
	}

	other, _ := editor.Open(records, intPtr(1))
	if other.Name != "Green" {
		t.Fatalf("unexpected form for index 1: %+v", other)
	}
}

func TestChildEditorFormIsDeepCopy(t *testing.T) {
	records := []Variant{{ID: uintPtr(1), VariantForm: VariantForm{Name: "Red", Attributes: map[string]interface{}{"color": "red"}}}}
	editor := NewVariantEditor()
	form, _ := editor.Open(records, intPtr(0))
	form.Attributes["color"] = "blue"
	if records[0].Attributes["color"] != "red" {
		t.Fatalf("editing the form leaked into the parent record")
	}
}

func TestChildEditorOutOfRange(t *testing.T) {
	editor := NewSupplierEditor()
	_, err := editor.Open(nil, intPtr(3))
	if !errors.Is(err, ErrChildIndexOutOfRange) {
		t.Fatalf("expected ErrChildIndexOutOfRange, got %v", err)
	}
	if editor.State().Mode != EditorClosed {
		t.Fatalf("editor should stay closed")
	}
	if _, _, err := editor.Commit(nil, SupplierForm{}); !errors.Is(err, ErrEditorClosed) {
		t.Fatalf("expected ErrEditorClosed, got %v", err)
	}
}

func TestSupplierEditorRequiresSupplier(t *testing.T) {
	editor := NewSupplierEditor()
	form, _ := editor.Open(nil, nil)
	form.CostPrice = "abc"

	_, errs, err := editor.Commit(nil, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs["supplier_id"]) != 1 || errs["supplier_id"][0] != msgRequired {
		t.Fatalf("expected supplier_id required, got %v", errs)
	}
	if len(errs["cost_price"]) != 1 {
		t.Fatalf("expected cost_price error, got %v", errs)
	}
}

func TestRemoveAt(t *testing.T) {
	records := []int{1, 2, 3}
	next, err := removeAt(records, 1)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(next) != 2 || next[0] != 1 || next[1] != 3 {
		t.Fatalf("unexpected result: %v", next)
	}
	if records[1] != 2 {
		t.Fatalf("input mutated: %v", records)
	}
	if _, err := removeAt(records, 5); !errors.Is(err, ErrChildIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}
