package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/bizdesk/internal/http/handlers/shared"
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/repository"
	"github.com/bizdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ====================  商品管理  ====================

// ProductSaveRequest 创建/更新商品请求
type ProductSaveRequest struct {
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
	IsActive        *bool                  `json:"is_active"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	Images          []string               `json:"images"`
	Variants        []VariantRequest       `json:"variants"`
	Suppliers       []SupplierLinkRequest  `json:"suppliers"`

	ChildSync          string `json:"child_sync"`
	DeletedVariantIDs  []uint `json:"deleted_variant_ids"`
	DeletedSupplierIDs []uint `json:"deleted_supplier_ids"`
}

// VariantRequest 规格请求
type VariantRequest struct {
	ID              *uint                  `json:"id"`
	Name            string                 `json:"name"`
	BuyingPrice     *decimal.Decimal       `json:"buying_price"`
	RetailPrice     *decimal.Decimal       `json:"retail_price"`
	WholesalePrice  *decimal.Decimal       `json:"wholesale_price"`
	StockQuantity   *int                   `json:"stock_quantity"`
	ReorderLevel    *int                   `json:"reorder_level"`
	ReorderQuantity *int                   `json:"reorder_quantity"`
	IsActive        *bool                  `json:"is_active"`
	LowStockAlert   bool                   `json:"low_stock_alert"`
	Attributes      map[string]interface{} `json:"attributes"`
	Weight          *decimal.Decimal       `json:"weight"`
	WeightUnit      string                 `json:"weight_unit"`
}

// SupplierLinkRequest 供应商关联请求
type SupplierLinkRequest struct {
	ID               *uint            `json:"id"`
	SupplierID       *uint            `json:"supplier_id"`
	SupplierSKU      string           `json:"supplier_sku"`
	CostPrice        *decimal.Decimal `json:"cost_price"`
	IsPreferred      bool             `json:"is_preferred"`
	MinOrderQuantity *int             `json:"min_order_quantity"`
	PackagingUnit    string           `json:"packaging_unit"`
}

func (req ProductSaveRequest) toInput() service.ProductSaveInput {
	input := service.ProductSaveInput{
		Name:               req.Name,
		SKU:                req.SKU,
		Barcode:            req.Barcode,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		LocationID:         req.LocationID,
		BuyingPrice:        req.BuyingPrice,
		RetailPrice:        req.RetailPrice,
		WholesalePrice:     req.WholesalePrice,
		StockQuantity:      req.StockQuantity,
		ReorderLevel:       req.ReorderLevel,
		ReorderQuantity:    req.ReorderQuantity,
		Weight:             req.Weight,
		WeightUnit:         req.WeightUnit,
		Length:             req.Length,
		Width:              req.Width,
		Height:             req.Height,
		DimensionUnit:      req.DimensionUnit,
		IsActive:           req.IsActive,
		CustomFields:       req.CustomFields,
		Images:             req.Images,
		ChildSync:          req.ChildSync,
		DeletedVariantIDs:  req.DeletedVariantIDs,
		DeletedSupplierIDs: req.DeletedSupplierIDs,
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, service.VariantInput{
			ID:              v.ID,
			Name:            v.Name,
			BuyingPrice:     v.BuyingPrice,
			RetailPrice:     v.RetailPrice,
			WholesalePrice:  v.WholesalePrice,
			StockQuantity:   v.StockQuantity,
			ReorderLevel:    v.ReorderLevel,
			ReorderQuantity: v.ReorderQuantity,
			IsActive:        v.IsActive,
			LowStockAlert:   v.LowStockAlert,
			Attributes:      v.Attributes,
			Weight:          v.Weight,
			WeightUnit:      v.WeightUnit,
		})
	}
	for _, s := range req.Suppliers {
		input.Suppliers = append(input.Suppliers, service.SupplierLinkInput{
			ID:               s.ID,
			SupplierID:       s.SupplierID,
			SupplierSKU:      s.SupplierSKU,
			CostPrice:        s.CostPrice,
			IsPreferred:      s.IsPreferred,
			MinOrderQuantity: s.MinOrderQuantity,
			PackagingUnit:    s.PackagingUnit,
		})
	}
	return input
}

// GetAdminProducts 获取商品列表
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		OnlyActive:   c.Query("only_active") == "true",
		LowStock:     c.Query("low_stock") == "true",
		WithCategory: true,
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := strings.TrimSpace(c.Query("location_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.LocationID = uint(id)
		}
	}

	products, total, err := h.ProductService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch products", err)
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情（含规格与供应商关联）
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch product", err)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "failed to create product", err)
		return
	}

	requestLog(c).Infow("admin_product_created", "product_id", product.ID, "variants", len(product.Variants))
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req ProductSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		if respondValidation(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "failed to update product", err)
		return
	}

	requestLog(c).Infow("admin_product_updated", "product_id", product.ID, "child_sync", req.ChildSync)
	response.Success(c, product)
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete product", err)
		return
	}

	response.Success(c, nil)
}
