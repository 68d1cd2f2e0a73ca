package productedit

import (
	"sync"

	"github.com/bizdesk/internal/logger"
)

// 通知类型
const (
	NoticeUploadsSucceeded = "uploads_succeeded"
	NoticeUploadsFailed    = "uploads_failed"
	NoticeSaved            = "saved"
)

// Notice 一条待展示的通知
type Notice struct {
	Kind      string   `json:"kind"`
	Count     int      `json:"count,omitempty"`
	Names     []string `json:"names,omitempty"`
	ProductID *uint    `json:"product_id,omitempty"`
}

// NoticeLog 以队列形式暂存通知，由界面轮询取走
type NoticeLog struct {
	mu    sync.Mutex
	items []Notice
}

// NewNoticeLog 创建通知队列
func NewNoticeLog() *NoticeLog {
	return &NoticeLog{}
}

func (l *NoticeLog) UploadsSucceeded(count int) {
	logger.Infow("console_uploads_succeeded", "count", count)
	l.push(Notice{Kind: NoticeUploadsSucceeded, Count: count})
}

func (l *NoticeLog) UploadsFailed(names []string) {
	logger.Warnw("console_uploads_failed", "count", len(names), "files", names)
	l.push(Notice{Kind: NoticeUploadsFailed, Count: len(names), Names: append([]string{}, names...)})
}

func (l *NoticeLog) Saved(product Product) {
	logger.Infow("console_product_saved", "product_id", product.ID)
	l.push(Notice{Kind: NoticeSaved, ProductID: cloneUint(product.ID)})
}

// Drain 取走并清空全部通知
func (l *NoticeLog) Drain() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items
	l.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (l *NoticeLog) push(n Notice) {
	l.mu.Lock()
	l.items = append(l.items, n)
	l.mu.Unlock()
}
