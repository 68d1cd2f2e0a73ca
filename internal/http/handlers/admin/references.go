package admin

import (
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ====================  参考数据  ====================

type createCategoryRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type createLocationRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type createSupplierRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.ReferenceService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch categories", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	category, err := h.ReferenceService.CreateCategory(c.Request.Context(), service.CreateCategoryInput{
		Slug:      req.Slug,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "failed to create category", err)
		return
	}
	response.Success(c, category)
}

// GetLocations 获取仓储位置列表
func (h *Handler) GetLocations(c *gin.Context) {
	locations, err := h.ReferenceService.Locations(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch locations", err)
		return
	}
	response.Success(c, locations)
}

// CreateLocation 创建仓储位置
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	location, err := h.ReferenceService.CreateLocation(c.Request.Context(), service.CreateLocationInput{
		Code:      req.Code,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "failed to create location", err)
		return
	}
	response.Success(c, location)
}

// GetSuppliers 获取供应商列表
func (h *Handler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.ReferenceService.Suppliers(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch suppliers", err)
		return
	}
	response.Success(c, suppliers)
}

// CreateSupplier 创建供应商
func (h *Handler) CreateSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	supplier, err := h.ReferenceService.CreateSupplier(c.Request.Context(), service.CreateSupplierInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "failed to create supplier", err)
		return
	}
	response.Success(c, supplier)
}
