package console

import (
	"errors"

	handlershared "github.com/bizdesk/internal/http/handlers/shared"
	"github.com/bizdesk/internal/http/response"
	"github.com/bizdesk/internal/productedit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// respondSessionError 将会话层错误映射为响应码
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, productedit.ErrSessionClosed):
		respondError(c, response.CodeNotFound, "session closed", nil)
	case errors.Is(err, productedit.ErrSessionNotReady):
		respondError(c, response.CodeConflict, "session not initialized", nil)
	case errors.Is(err, productedit.ErrChildIndexOutOfRange):
		respondError(c, response.CodeBadRequest, "child index out of range", nil)
	case errors.Is(err, productedit.ErrEditorClosed):
		respondError(c, response.CodeConflict, "editor is not open", nil)
	case errors.Is(err, productedit.ErrSubmitInProgress):
		respondError(c, response.CodeConflict, "save already in progress", nil)
	case errors.Is(err, productedit.ErrReferenceDataUnavailable):
		respondError(c, response.CodeConflict, "reference data unavailable", nil)
	default:
		var submitErr *productedit.SubmitError
		if errors.As(err, &submitErr) {
			if submitErr.Status == response.CodeNotFound {
				respondError(c, response.CodeNotFound, "product not found", nil)
				return
			}
			respondError(c, response.CodeBadRequest, submitErr.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "console request failed", err)
	}
}
