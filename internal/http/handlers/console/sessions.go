package console

import (
	"errors"
	"io"
	"net/http"
	"strings"

	handlershared "github.com/bizdesk/internal/http/handlers/shared"
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/productedit"

	"github.com/gin-gonic/gin"
)

// ====================  编辑会话  ====================

type createSessionRequest struct {
	ProductID *uint `json:"product_id"`
}

type openEditorRequest struct {
	Index *int `json:"index"`
}

type commitVariantRequest struct {
	Form productedit.VariantForm `json:"form"`
}

type commitSupplierRequest struct {
	Form productedit.SupplierForm `json:"form"`
}

// sessionResponse 会话快照与待消费通知
type sessionResponse struct {
	SessionID string                   `json:"session_id"`
	View      productedit.View         `json:"view"`
	Notices   []productedit.Notice     `json:"notices"`
	Outcome   *productedit.SaveOutcome `json:"outcome,omitempty"`
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (h *Handler) loadSession(c *gin.Context) (string, *productedit.Session, *productedit.NoticeLog, bool) {
	id := strings.TrimSpace(c.Param("sid"))
	session, notices, ok := h.Sessions.Get(id)
	if !ok {
		respondError(c, response.CodeNotFound, "session not found", nil)
		return "", nil, nil, false
	}
	return id, session, notices, true
}

func respondView(c *gin.Context, id string, session *productedit.Session, notices *productedit.NoticeLog) {
	response.Success(c, sessionResponse{
		SessionID: id,
		View:      session.View(),
		Notices:   notices.Drain(),
	})
}

// CreateSession 打开编辑页：product_id 为空进入创建模式
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.ProductID != nil && *req.ProductID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product_id", nil)
		return
	}

	id, session, notices := h.Sessions.Create()
	if err := session.Initialize(c.Request.Context(), req.ProductID); err != nil {
		h.Sessions.Close(id)
		respondSessionError(c, err)
		return
	}

	requestLog(c).Infow("console_session_opened", "session_id", id, "product_id", req.ProductID)
	respondView(c, id, session, notices)
}

// GetSession 获取会话快照并消费通知
func (h *Handler) GetSession(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	respondView(c, id, session, notices)
}

// CloseSession 离开编辑页
func (h *Handler) CloseSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("sid"))
	if !h.Sessions.Close(id) {
		respondError(c, response.CodeNotFound, "session not found", nil)
		return
	}
	requestLog(c).Infow("console_session_closed", "session_id", id)
	response.Success(c, nil)
}

// ApplyFields 覆盖根字段
func (h *Handler) ApplyFields(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	var fields productedit.ProductFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := session.ApplyFields(fields); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// OpenVariantEditor 打开规格编辑器
func (h *Handler) OpenVariantEditor(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req openEditorRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if _, err := session.OpenVariantEditor(req.Index); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// CommitVariant 提交规格表单，校验失败时编辑器保持打开
func (h *Handler) CommitVariant(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req commitVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	errs, err := session.CommitVariant(req.Form)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	if !errs.Empty() {
		handlershared.RespondFieldErrors(c, errs)
		return
	}
	respondView(c, id, session, notices)
}

// DiscardVariantEditor 关闭规格编辑器，不修改商品
func (h *Handler) DiscardVariantEditor(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	session.DiscardVariantEditor()
	respondView(c, id, session, notices)
}

// RemoveVariant 移除规格
func (h *Handler) RemoveVariant(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	index, ok := handlershared.ParseIntParam(c, "index")
	if !ok {
		return
	}
	if err := session.RemoveVariant(index); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// OpenSupplierEditor 打开供应商关联编辑器
func (h *Handler) OpenSupplierEditor(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req openEditorRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if _, err := session.OpenSupplierEditor(req.Index); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// CommitSupplier 提交供应商关联表单
func (h *Handler) CommitSupplier(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req commitSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	errs, err := session.CommitSupplier(req.Form)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	if !errs.Empty() {
		handlershared.RespondFieldErrors(c, errs)
		return
	}
	respondView(c, id, session, notices)
}

// DiscardSupplierEditor 关闭供应商关联编辑器
func (h *Handler) DiscardSupplierEditor(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	session.DiscardSupplierEditor()
	respondView(c, id, session, notices)
}

// RemoveSupplier 移除供应商关联
func (h *Handler) RemoveSupplier(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	index, ok := handlershared.ParseIntParam(c, "index")
	if !ok {
		return
	}
	if err := session.RemoveSupplier(index); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// Save 提交商品；本地校验、字段失败与整体失败均以 outcome 返回
func (h *Handler) Save(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	outcome, err := session.Save(c.Request.Context())
	if err != nil {
		respondSessionError(c, err)
		return
	}
	requestLog(c).Infow("console_session_saved", "session_id", id, "state", outcome.State)
	response.Success(c, sessionResponse{
		SessionID: id,
		View:      session.View(),
		Notices:   notices.Drain(),
		Outcome:   &outcome,
	})
}

// ====================  媒体  ====================

const defaultMaxUploadBytes = 10 << 20

// UploadMedia 接收 multipart files，立即返回待上传列表
func (h *Handler) UploadMedia(c *gin.Context) {
	id, session, _, ok := h.loadSession(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		respondError(c, response.CodeBadRequest, "files are required", nil)
		return
	}

	headers := form.File["files"]
	limit := h.maxUploadBytes()
	files := make([]productedit.UploadFile, 0, len(headers))
	for _, header := range headers {
		if header.Size > limit {
			respondError(c, response.CodeBadRequest, "file too large: "+header.Filename, nil)
			return
		}
		src, err := header.Open()
		if err != nil {
			respondError(c, response.CodeBadRequest, "failed to read upload", err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(src, limit+1))
		_ = src.Close()
		if err != nil {
			respondError(c, response.CodeBadRequest, "failed to read upload", err)
			return
		}
		if int64(len(data)) > limit {
			respondError(c, response.CodeBadRequest, "file too large: "+header.Filename, nil)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		files = append(files, productedit.UploadFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: contentType,
			Data:        data,
		})
	}

	batch, err := session.UploadFiles(files)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	requestLog(c).Infow("console_upload_started", "session_id", id, "count", len(files))
	response.Success(c, gin.H{"pending": batch.Pending})
}

// maxUploadBytes 单个文件读入内存的上限，与存储端 upload.max_size 一致
func (h *Handler) maxUploadBytes() int64 {
	if h.Config != nil && h.Config.Upload.MaxSize > 0 {
		return h.Config.Upload.MaxSize
	}
	return defaultMaxUploadBytes
}

// RemoveMedia 按地址移除媒体
func (h *Handler) RemoveMedia(c *gin.Context) {
	id, session, notices, ok := h.loadSession(c)
	if !ok {
		return
	}
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		respondError(c, response.CodeBadRequest, "url is required", nil)
		return
	}
	if err := session.RemoveMedia(url); err != nil {
		respondSessionError(c, err)
		return
	}
	respondView(c, id, session, notices)
}

// GetPreview 返回待上传文件的预览字节
func (h *Handler) GetPreview(c *gin.Context) {
	_, session, _, ok := h.loadSession(c)
	if !ok {
		return
	}
	contentType, data, found := session.Preview(c.Param("handle"))
	if !found {
		respondError(c, response.CodeNotFound, "preview not found", nil)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
