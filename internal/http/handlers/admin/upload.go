package admin

import (
	"errors"

	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ====================  文件上传  ====================

// UploadFile 文件上传，返回 {url, filename, size, content_type, width, height}
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "file is required", nil)
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	uploaded, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		if errors.Is(err, service.ErrUploadRejected) {
			requestLog(c).Warnw("admin_upload_rejected", "filename", file.Filename, "size", file.Size, "error", err)
			respondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to store file", err)
		return
	}

	response.Success(c, uploaded)
}
