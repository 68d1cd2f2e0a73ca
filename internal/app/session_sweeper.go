package app

import (
	"context"
	"time"

	"github.com/bizdesk/internal/productedit"
)

// SessionSweeper 周期性关闭空闲的编辑会话
type SessionSweeper struct {
	store    *productedit.Store
	interval time.Duration
}

// NewSessionSweeper 创建会话清理服务
func NewSessionSweeper(store *productedit.Store, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{store: store, interval: interval}
}

// Name 服务名称
func (s *SessionSweeper) Name() string {
	return "session_sweeper"
}

// Start 阻塞运行直到 ctx 结束
func (s *SessionSweeper) Start(ctx context.Context) error {
	if s == nil || s.store == nil {
		<-ctx.Done()
		return nil
	}
	s.store.Run(ctx, s.interval)
	return nil
}

// Stop 关闭剩余会话，释放预览与进行中的上传
func (s *SessionSweeper) Stop(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}
	s.store.CloseAll()
	return nil
}
