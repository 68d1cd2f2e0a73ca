package shared

import (
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MsgValidationFailed 字段校验失败时的统一提示
const MsgValidationFailed = "validation failed"

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString("request_id"); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回错误响应；5xx 记 error 级日志，其余有原始错误时记 warn。
func RespondError(c *gin.Context, code int, msg string, err error) {
	RespondAppError(c, response.WrapError(code, msg, err))
}

// RespondAppError 按 AppError 输出，携带 Fields 时走字段级失败。
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	if len(appErr.Fields) > 0 {
		RespondFieldErrors(c, appErr.Fields)
		return
	}
	if appErr.Err != nil {
		log := RequestLog(c)
		if appErr.Code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		} else {
			log.Warnw("handler_rejected", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondFieldErrors 返回字段级校验错误：status_code=422，data.field_errors 为 字段 -> 消息列表。
func RespondFieldErrors(c *gin.Context, fields map[string][]string) {
	RequestLog(c).Infow("handler_field_errors", "fields", len(fields))
	response.FieldErrors(c, MsgValidationFailed, fields)
}
