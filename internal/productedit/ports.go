package productedit

import (
	"context"
	"strings"
)

// UploadFile 待上传的单个文件
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// Storage 附件存储端点
type Storage interface {
	// Upload 上传单个文件，成功返回可访问的地址
	Upload(ctx context.Context, file UploadFile) (string, error)
}

// Persistence 聚合持久化端点
type Persistence interface {
	Get(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, payload Payload) (*Product, error)
	Update(ctx context.Context, id uint, payload Payload) (*Product, error)
}

// Option 下拉选项
type Option struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// ReferenceSource 参考数据来源
type ReferenceSource interface {
	Categories(ctx context.Context) ([]Option, error)
	Locations(ctx context.Context) ([]Option, error)
	Suppliers(ctx context.Context) ([]Option, error)
}

// ListingInvalidator 商品列表缓存失效
type ListingInvalidator interface {
	InvalidateProductListing(ctx context.Context) error
}

// Notifier 面向用户的通知
type Notifier interface {
	UploadsSucceeded(count int)
	UploadsFailed(names []string)
	Saved(product Product)
}

// SubmitError 持久化端点返回的失败。
// Fields 非空为字段级失败，否则为整体失败（Message 作为横幅文案）。
type SubmitError struct {
	Status  int
	Fields  FieldErrors
	Message string
}

func (e *SubmitError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) > 0 {
		return "submit rejected: " + strings.Join(e.Fields.Fields(), ", ")
	}
	if e.Message != "" {
		return "submit failed: " + e.Message
	}
	return "submit failed"
}
