package productedit

import (
	"strings"

	"github.com/bizdesk/internal/constants"

	"github.com/shopspring/decimal"
)

// Payload 提交给持久化接口的请求体
type Payload struct {
	Name            string                 `json:"name"`
	SKU             string                 `json:"sku"`
	Barcode         string                 `json:"barcode"`
	Description     string                 `json:"description"`
	CategoryID      *uint                  `json:"category_id"`
	LocationID      *uint                  `json:"location_id"`
	BuyingPrice     *decimal.Decimal       `json:"buying_price"`
	RetailPrice     *decimal.Decimal       `json:"retail_price"`
	WholesalePrice  *decimal.Decimal       `json:"wholesale_price"`
	StockQuantity   *int                   `json:"stock_quantity"`
	ReorderLevel    *int                   `json:"reorder_level"`
	ReorderQuantity *int                   `json:"reorder_quantity"`
	Weight          *decimal.Decimal       `json:"weight"`
	WeightUnit      string                 `json:"weight_unit"`
	Length          *decimal.Decimal       `json:"length"`
	Width           *decimal.Decimal       `json:"width"`
	Height          *decimal.Decimal       `json:"height"`
	DimensionUnit   string                 `json:"dimension_unit"`
	IsActive        bool                   `json:"is_active"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	Images          []string               `json:"images"`
	Variants        []VariantPayload       `json:"variants"`
	Suppliers       []SupplierPayload      `json:"suppliers"`

	ChildSync          string `json:"child_sync"`
	DeletedVariantIDs  []uint `json:"deleted_variant_ids,omitempty"`
	DeletedSupplierIDs []uint `json:"deleted_supplier_ids,omitempty"`
}

// VariantPayload 规格子记录载荷；ID 仅在原聚合中存在时携带
type VariantPayload struct {
	ID              *uint                  `json:"id,omitempty"`
	Name            string                 `json:"name"`
	BuyingPrice     *decimal.Decimal       `json:"buying_price"`
	RetailPrice     *decimal.Decimal       `json:"retail_price"`
	WholesalePrice  *decimal.Decimal       `json:"wholesale_price"`
	StockQuantity   *int                   `json:"stock_quantity"`
	ReorderLevel    *int                   `json:"reorder_level"`
	ReorderQuantity *int                   `json:"reorder_quantity"`
	IsActive        bool                   `json:"is_active"`
	LowStockAlert   bool                   `json:"low_stock_alert"`
	Attributes      map[string]interface{} `json:"attributes"`
	Weight          *decimal.Decimal       `json:"weight"`
	WeightUnit      string                 `json:"weight_unit"`
}

// SupplierPayload 供应商关联子记录载荷
type SupplierPayload struct {
	ID               *uint            `json:"id,omitempty"`
	SupplierID       *uint            `json:"supplier_id"`
	SupplierSKU      string           `json:"supplier_sku"`
	CostPrice        *decimal.Decimal `json:"cost_price"`
	IsPreferred      bool             `json:"is_preferred"`
	MinOrderQuantity *int             `json:"min_order_quantity"`
	PackagingUnit    string           `json:"packaging_unit"`
}

// Reconciler 将原聚合与编辑后聚合合并为一次提交载荷
type Reconciler struct {
	Policy string
}

// NewReconciler 创建 Reconciler，非法策略按 replace 处理
func NewReconciler(policy string) Reconciler {
	if policy != constants.DeletionPolicyExplicit {
		policy = constants.DeletionPolicyReplace
	}
	return Reconciler{Policy: policy}
}

// Reconcile 生成载荷。
// original 为 nil 表示创建：所有子记录均不带 ID，也不携带删除列表。
// 编辑时子记录 ID 仅在原聚合同类集合中存在才保留；explicit 策略下列出被移除的子记录 ID。
// 输入不被修改，相同输入得到相同输出。
func (r Reconciler) Reconcile(original *Product, edited Product) Payload {
	creating := original == nil || edited.ID == nil

	payload := Payload{
		Name:            strings.TrimSpace(edited.Name),
		SKU:             strings.TrimSpace(edited.SKU),
		Barcode:         strings.TrimSpace(edited.Barcode),
		Description:     edited.Description,
		CategoryID:      cloneUint(edited.CategoryID),
		LocationID:      cloneUint(edited.LocationID),
		BuyingPrice:     moneyValue(edited.BuyingPrice),
		RetailPrice:     moneyValue(edited.RetailPrice),
		WholesalePrice:  moneyValue(edited.WholesalePrice),
		StockQuantity:   intValue(edited.StockQuantity),
		ReorderLevel:    intValue(edited.ReorderLevel),
		ReorderQuantity: intValue(edited.ReorderQuantity),
		Weight:          measureValue(edited.Weight),
		WeightUnit:      strings.TrimSpace(edited.WeightUnit),
		Length:          measureValue(edited.Length),
		Width:           measureValue(edited.Width),
		Height:          measureValue(edited.Height),
		DimensionUnit:   strings.TrimSpace(edited.DimensionUnit),
		IsActive:        edited.IsActive,
		CustomFields:    cloneMap(edited.CustomFields),
		Images:          compactImages(edited.Images),
		Variants:        make([]VariantPayload, 0, len(edited.Variants)),
		Suppliers:       make([]SupplierPayload, 0, len(edited.Suppliers)),
		ChildSync:       constants.ChildSyncReplace,
	}
	if payload.CustomFields == nil {
		payload.CustomFields = map[string]interface{}{}
	}

	var knownVariants, knownSuppliers map[uint]struct{}
	if !creating {
		knownVariants = variantIDSet(original.Variants)
		knownSuppliers = supplierIDSet(original.Suppliers)
	}

	keptVariants := make(map[uint]struct{}, len(edited.Variants))
	for _, v := range edited.Variants {
		item := variantPayload(v.VariantForm)
		if id, ok := retainedID(v.ID, knownVariants); ok {
			item.ID = &id
			keptVariants[id] = struct{}{}
		}
		payload.Variants = append(payload.Variants, item)
	}

	keptSuppliers := make(map[uint]struct{}, len(edited.Suppliers))
	for _, s := range edited.Suppliers {
		item := supplierPayload(s.SupplierForm)
		if id, ok := retainedID(s.ID, knownSuppliers); ok {
			item.ID = &id
			keptSuppliers[id] = struct{}{}
		}
		payload.Suppliers = append(payload.Suppliers, item)
	}

	if creating || r.Policy != constants.DeletionPolicyExplicit {
		return payload
	}

	payload.ChildSync = constants.ChildSyncMerge
	for _, v := range original.Variants {
		if v.ID == nil {
			continue
		}
		if _, ok := keptVariants[*v.ID]; !ok {
			payload.DeletedVariantIDs = append(payload.DeletedVariantIDs, *v.ID)
		}
	}
	for _, s := range original.Suppliers {
		if s.ID == nil {
			continue
		}
		if _, ok := keptSuppliers[*s.ID]; !ok {
			payload.DeletedSupplierIDs = append(payload.DeletedSupplierIDs, *s.ID)
		}
	}
	return payload
}

func variantPayload(f VariantForm) VariantPayload {
	return VariantPayload{
		Name:            strings.TrimSpace(f.Name),
		BuyingPrice:     moneyValue(f.BuyingPrice),
		RetailPrice:     moneyValue(f.RetailPrice),
		WholesalePrice:  moneyValue(f.WholesalePrice),
		StockQuantity:   intValue(f.StockQuantity),
		ReorderLevel:    intValue(f.ReorderLevel),
		ReorderQuantity: intValue(f.ReorderQuantity),
		IsActive:        f.IsActive,
		LowStockAlert:   f.LowStockAlert,
		Attributes:      cloneMap(f.Attributes),
		Weight:          measureValue(f.Weight),
		WeightUnit:      strings.TrimSpace(f.WeightUnit),
	}
}

func supplierPayload(f SupplierForm) SupplierPayload {
	return SupplierPayload{
		SupplierID:       cloneUint(f.SupplierID),
		SupplierSKU:      strings.TrimSpace(f.SupplierSKU),
		CostPrice:        moneyValue(f.CostPrice),
		IsPreferred:      f.IsPreferred,
		MinOrderQuantity: intValue(f.MinOrderQuantity),
		PackagingUnit:    strings.TrimSpace(f.PackagingUnit),
	}
}

func retainedID(id *uint, known map[uint]struct{}) (uint, bool) {
	if id == nil || known == nil {
		return 0, false
	}
	if _, ok := known[*id]; !ok {
		return 0, false
	}
	return *id, true
}

func variantIDSet(items []Variant) map[uint]struct{} {
	out := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ID != nil {
			out[*item.ID] = struct{}{}
		}
	}
	return out
}

func supplierIDSet(items []SupplierLink) map[uint]struct{} {
	out := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ID != nil {
			out[*item.ID] = struct{}{}
		}
	}
	return out
}

func compactImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, url := range images {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// moneyValue 金额保留两位小数；空白或无法解析为 nil
func moneyValue(n Number) *decimal.Decimal {
	d, ok := n.Decimal()
	if !ok || d == nil {
		return nil
	}
	rounded := d.Round(2)
	return &rounded
}

// measureValue 重量与尺寸保留三位小数
func measureValue(n Number) *decimal.Decimal {
	d, ok := n.Decimal()
	if !ok || d == nil {
		return nil
	}
	rounded := d.Round(3)
	return &rounded
}

func intValue(n Number) *int {
	v, ok := n.Int()
	if !ok {
		return nil
	}
	return v
}
