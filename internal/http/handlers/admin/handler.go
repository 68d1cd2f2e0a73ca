package admin

import "github.com/bizdesk/internal/provider"

// Handler 商品持久化接口处理器入口
// 说明：该处理器仅服务 /api/v1/admin 下的持久化 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
