package productedit

// ProductFields 商品根实体的标量字段（1:1 字段），由表单直接编辑
type ProductFields struct {
	Name            string                 `json:"name" validate:"notblank,max=200"`
	SKU             string                 `json:"sku" validate:"notblank,max=64"`
	Barcode         string                 `json:"barcode" validate:"max=64"`
	Description     string                 `json:"description"`
	CategoryID      *uint                  `json:"category_id"`
	LocationID      *uint                  `json:"location_id"`
	BuyingPrice     Number                 `json:"buying_price" validate:"money"`
	RetailPrice     Number                 `json:"retail_price" validate:"money"`
	WholesalePrice  Number                 `json:"wholesale_price" validate:"money"`
	StockQuantity   Number                 `json:"stock_quantity" validate:"quantity"`
	ReorderLevel    Number                 `json:"reorder_level" validate:"quantity"`
	ReorderQuantity Number                 `json:"reorder_quantity" validate:"quantity"`
	Weight          Number                 `json:"weight" validate:"measure"`
	WeightUnit      string                 `json:"weight_unit" validate:"omitempty,oneof=kg g lb oz"`
	Length          Number                 `json:"length" validate:"measure"`
	Width           Number                 `json:"width" validate:"measure"`
	Height          Number                 `json:"height" validate:"measure"`
	DimensionUnit   string                 `json:"dimension_unit" validate:"omitempty,oneof=cm mm in"`
	IsActive        bool                   `json:"is_active"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
}

// Product 可编辑的商品聚合：根字段 + 媒体列表 + 两个子集合
type Product struct {
	ID *uint `json:"id,omitempty"`
	ProductFields
	// Images 有序媒体地址，首张为主图
	Images    []string       `json:"images"`
	Variants  []Variant      `json:"variants" validate:"dive"`
	Suppliers []SupplierLink `json:"suppliers" validate:"dive"`
}

// VariantForm 规格表单字段（不含标识）
type VariantForm struct {
	Name            string                 `json:"name" validate:"notblank,max=200"`
	BuyingPrice     Number                 `json:"buying_price" validate:"money"`
	RetailPrice     Number                 `json:"retail_price" validate:"money"`
	WholesalePrice  Number                 `json:"wholesale_price" validate:"money"`
	StockQuantity   Number                 `json:"stock_quantity" validate:"quantity"`
	ReorderLevel    Number                 `json:"reorder_level" validate:"quantity"`
	ReorderQuantity Number                 `json:"reorder_quantity" validate:"quantity"`
	IsActive        bool                   `json:"is_active"`
	LowStockAlert   bool                   `json:"low_stock_alert"`
	Attributes      map[string]interface{} `json:"attributes"`
	Weight          Number                 `json:"weight" validate:"measure"`
	WeightUnit      string                 `json:"weight_unit" validate:"omitempty,oneof=kg g lb oz"`
}

// Variant 规格子记录，ID 为空表示尚未持久化
type Variant struct {
	ID *uint `json:"id,omitempty"`
	VariantForm
}

// SupplierForm 供应商关联表单字段（不含标识）
type SupplierForm struct {
	SupplierID       *uint  `json:"supplier_id" validate:"required"`
	SupplierSKU      string `json:"supplier_sku" validate:"max=64"`
	CostPrice        Number `json:"cost_price" validate:"money"`
	IsPreferred      bool   `json:"is_preferred"`
	MinOrderQuantity Number `json:"min_order_quantity" validate:"quantity"`
	PackagingUnit    string `json:"packaging_unit" validate:"max=32"`
}

// SupplierLink 供应商关联子记录，ID 为空表示尚未持久化
type SupplierLink struct {
	ID *uint `json:"id,omitempty"`
	SupplierForm
}

// NewProduct 创建模式下的默认聚合
func NewProduct() Product {
	return Product{
		ProductFields: ProductFields{IsActive: true},
		Images:        []string{},
		Variants:      []Variant{},
		Suppliers:     []SupplierLink{},
	}
}

// NewVariantForm 规格表单默认值
func NewVariantForm() VariantForm {
	return VariantForm{IsActive: true}
}

// NewSupplierForm 供应商关联表单默认值
func NewSupplierForm() SupplierForm {
	return SupplierForm{}
}

// Clone 深拷贝标量字段
func (f ProductFields) Clone() ProductFields {
	out := f
	out.CategoryID = cloneUint(f.CategoryID)
	out.LocationID = cloneUint(f.LocationID)
	out.CustomFields = cloneMap(f.CustomFields)
	return out
}

// Clone 深拷贝整个聚合，与原值不共享任何可变引用
func (p Product) Clone() Product {
	out := Product{
		ID:            cloneUint(p.ID),
		ProductFields: p.ProductFields.Clone(),
		Images:        append([]string{}, p.Images...),
		Variants:      make([]Variant, len(p.Variants)),
		Suppliers:     make([]SupplierLink, len(p.Suppliers)),
	}
	for i, v := range p.Variants {
		out.Variants[i] = v.Clone()
	}
	for i, s := range p.Suppliers {
		out.Suppliers[i] = s.Clone()
	}
	return out
}

// Clone 深拷贝规格表单
func (f VariantForm) Clone() VariantForm {
	out := f
	out.Attributes = cloneMap(f.Attributes)
	return out
}

// Clone 深拷贝规格
func (v Variant) Clone() Variant {
	return Variant{ID: cloneUint(v.ID), VariantForm: v.VariantForm.Clone()}
}

// Clone 深拷贝供应商关联表单
func (f SupplierForm) Clone() SupplierForm {
	out := f
	out.SupplierID = cloneUint(f.SupplierID)
	return out
}

// Clone 深拷贝供应商关联
func (s SupplierLink) Clone() SupplierLink {
	return SupplierLink{ID: cloneUint(s.ID), SupplierForm: s.SupplierForm.Clone()}
}

// normalize 将 nil 集合替换为空集合
func (p *Product) normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	if p.Suppliers == nil {
		p.Suppliers = []SupplierLink{}
	}
}

func cloneUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return cloneMap(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
