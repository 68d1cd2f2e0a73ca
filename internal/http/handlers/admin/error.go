package admin

import (
	handlershared "github.com/bizdesk/internal/http/handlers/shared"
	"github.com/bizdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// respondValidation 服务层字段校验失败时返回 422 与 field_errors，返回是否已处理
func respondValidation(c *gin.Context, err error) bool {
	validationErr, ok := service.AsValidationError(err)
	if !ok {
		return false
	}
	handlershared.RespondFieldErrors(c, validationErr.Fields)
	return true
}
