package console

import (
	"github.com/bizdesk/internal/provider"
)

// Handler 控制台（编辑页 BFF）处理器
type Handler struct {
	*provider.Container
}

// New 创建控制台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
