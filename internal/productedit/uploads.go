package productedit

import (
	"context"
	"strings"
	"sync"

	"github.com/bizdesk/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PreviewArena 会话级预览句柄分配器，保存文件头部字节用于缩略图
type PreviewArena struct {
	mu       sync.Mutex
	maxBytes int
	items    map[string]preview
}

type preview struct {
	contentType string
	data        []byte
}

// NewPreviewArena 创建预览分配器；maxBytes <= 0 时不保留字节
func NewPreviewArena(maxBytes int) *PreviewArena {
	return &PreviewArena{maxBytes: maxBytes, items: make(map[string]preview)}
}

// Allocate 分配句柄
func (a *PreviewArena) Allocate(contentType string, data []byte) string {
	handle := uuid.NewString()
	n := len(data)
	if a.maxBytes <= 0 {
		n = 0
	} else if n > a.maxBytes {
		n = a.maxBytes
	}
	kept := append([]byte(nil), data[:n]...)

	a.mu.Lock()
	a.items[handle] = preview{contentType: contentType, data: kept}
	a.mu.Unlock()
	return handle
}

// Get 读取预览字节
func (a *PreviewArena) Get(handle string) (string, []byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	item, ok := a.items[handle]
	if !ok {
		return "", nil, false
	}
	return item.contentType, append([]byte(nil), item.data...), true
}

// Release 释放句柄，重复释放无副作用
func (a *PreviewArena) Release(handle string) {
	a.mu.Lock()
	delete(a.items, handle)
	a.mu.Unlock()
}

// Len 存活句柄数
func (a *PreviewArena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// PendingUpload 已选择但尚未完成的上传
type PendingUpload struct {
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// MediaSink 接收上传成功的地址；调用时已持有流水线锁
type MediaSink interface {
	AppendMedia(url string)
}

// UploadOptions 上传流水线配置
type UploadOptions struct {
	// Concurrency 同时进行的上传数，<= 1 为串行
	Concurrency     int
	PreviewMaxBytes int
	// Locker 与所属会话共用的锁；为空时使用独立锁
	Locker sync.Locker
}

// BatchResult 一批上传的结果
type BatchResult struct {
	// Succeeded 成功地址，按完成顺序
	Succeeded []string
	// Failed 失败文件名，按选择顺序
	Failed []string
}

// UploadBatch 一次选择产生的上传批次
type UploadBatch struct {
	Pending []PendingUpload
	done    chan struct{}
	result  BatchResult
	failed  []bool
}

// Done 批次全部结束时关闭
func (b *UploadBatch) Done() <-chan struct{} {
	return b.done
}

// Wait 阻塞直到批次结束
func (b *UploadBatch) Wait() BatchResult {
	<-b.done
	return b.result
}

// UploadPipeline 附件上传流水线。
// 每个文件独立上传，单个失败不影响其他文件；成功地址按完成顺序并入聚合。
type UploadPipeline struct {
	storage     Storage
	notifier    Notifier
	sink        MediaSink
	arena       *PreviewArena
	concurrency int

	lock    sync.Locker
	pending []PendingUpload
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUploadPipeline 创建上传流水线
func NewUploadPipeline(storage Storage, notifier Notifier, sink MediaSink, opts UploadOptions) *UploadPipeline {
	lock := opts.Locker
	if lock == nil {
		lock = &sync.Mutex{}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UploadPipeline{
		storage:     storage,
		notifier:    notifier,
		sink:        sink,
		arena:       NewPreviewArena(opts.PreviewMaxBytes),
		concurrency: concurrency,
		lock:        lock,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Arena 预览分配器
func (p *UploadPipeline) Arena() *PreviewArena {
	return p.arena
}

// Start 登记所有文件的预览与待上传项后再发起上传，立即返回批次。
// 流水线已关闭时返回一个已结束的空批次。
func (p *UploadPipeline) Start(files []UploadFile) *UploadBatch {
	batch := &UploadBatch{
		done:   make(chan struct{}),
		failed: make([]bool, len(files)),
		result: BatchResult{Succeeded: []string{}, Failed: []string{}},
	}

	p.lock.Lock()
	if p.closed || len(files) == 0 {
		p.lock.Unlock()
		batch.Pending = []PendingUpload{}
		close(batch.done)
		return batch
	}
	batch.Pending = make([]PendingUpload, len(files))
	for i, file := range files {
		item := PendingUpload{
			Handle:      p.arena.Allocate(file.ContentType, file.Data),
			Name:        file.Name,
			Size:        file.Size,
			ContentType: file.ContentType,
		}
		batch.Pending[i] = item
		p.pending = append(p.pending, item)
	}
	p.wg.Add(1)
	p.lock.Unlock()

	go p.run(batch, files)
	return batch
}

func (p *UploadPipeline) run(batch *UploadBatch, files []UploadFile) {
	defer p.wg.Done()
	defer close(batch.done)

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := range files {
		i := i
		g.Go(func() error {
			url, err := p.storage.Upload(p.ctx, files[i])
			p.settle(batch, i, url, err)
			return nil
		})
	}
	_ = g.Wait()

	p.lock.Lock()
	closed := p.closed
	for i, failed := range batch.failed {
		if failed {
			batch.result.Failed = append(batch.result.Failed, files[i].Name)
		}
	}
	result := batch.result
	p.lock.Unlock()

	if closed || p.notifier == nil {
		return
	}
	if len(result.Succeeded) > 0 {
		p.notifier.UploadsSucceeded(len(result.Succeeded))
	}
	if len(result.Failed) > 0 {
		p.notifier.UploadsFailed(result.Failed)
	}
}

// settle 单个文件结束：并入地址、移除待上传项、释放预览，三者在同一临界区内完成
func (p *UploadPipeline) settle(batch *UploadBatch, index int, url string, err error) {
	item := batch.Pending[index]

	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	p.removePendingLocked(item.Handle)
	p.arena.Release(item.Handle)

	url = strings.TrimSpace(url)
	if err != nil || url == "" {
		batch.failed[index] = true
		logger.Warnw("console_upload_failed", "file", item.Name, "size", item.Size, "error", err)
		return
	}
	if p.sink != nil {
		p.sink.AppendMedia(url)
	}
	batch.result.Succeeded = append(batch.result.Succeeded, url)
}

func (p *UploadPipeline) removePendingLocked(handle string) {
	for i, item := range p.pending {
		if item.Handle == handle {
			p.pending = append(p.pending[:i:i], p.pending[i+1:]...)
			return
		}
	}
}

// Pending 当前待上传项
func (p *UploadPipeline) Pending() []PendingUpload {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.pendingLocked()
}

func (p *UploadPipeline) pendingLocked() []PendingUpload {
	return append([]PendingUpload{}, p.pending...)
}

// Close 立即释放全部预览并丢弃之后到达的结果，不等待进行中的上传
func (p *UploadPipeline) Close() {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return
	}
	p.closed = true
	for _, item := range p.pending {
		p.arena.Release(item.Handle)
	}
	p.pending = nil
	p.lock.Unlock()
	p.cancel()
}

// Wait 等待所有批次的后台协程退出
func (p *UploadPipeline) Wait() {
	p.wg.Wait()
}
