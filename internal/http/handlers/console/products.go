package console

import (
	handlershared "github.com/bizdesk/internal/http/handlers/shared"
	"github.com/bizdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetProducts 商品列表（经缓存代理持久化接口）
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	result, err := h.Catalog.ListProducts(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch products", err)
		return
	}

	response.SuccessWithPage(c, result.Items, response.Pagination{
		Page:      result.Pagination.Page,
		PageSize:  result.Pagination.PageSize,
		Total:     result.Pagination.Total,
		TotalPage: result.Pagination.TotalPage,
	})
}
