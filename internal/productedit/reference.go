package productedit

import (
	"context"

	"github.com/bizdesk/internal/logger"

	"golang.org/x/sync/errgroup"
)

// LoadState 参考数据加载状态
type LoadState string

const (
	LoadLoading LoadState = "loading"
	LoadReady   LoadState = "ready"
	LoadFailed  LoadState = "failed"
)

// Resource 单类参考数据
type Resource struct {
	State   LoadState `json:"state"`
	Options []Option  `json:"options"`
	Error   string    `json:"error,omitempty"`
}

// ReferenceData 表单下拉所需的三类参考数据
type ReferenceData struct {
	Categories Resource `json:"categories"`
	Locations  Resource `json:"locations"`
	Suppliers  Resource `json:"suppliers"`
}

// NewReferenceData 初始为 loading
func NewReferenceData() ReferenceData {
	loading := Resource{State: LoadLoading, Options: []Option{}}
	return ReferenceData{Categories: loading, Locations: loading, Suppliers: loading}
}

// Blocked 任一类加载失败时表单不可提交
func (r ReferenceData) Blocked() bool {
	return r.Categories.State == LoadFailed ||
		r.Locations.State == LoadFailed ||
		r.Suppliers.State == LoadFailed
}

// Ready 三类均已加载
func (r ReferenceData) Ready() bool {
	return r.Categories.State == LoadReady &&
		r.Locations.State == LoadReady &&
		r.Suppliers.State == LoadReady
}

// LoadReferenceData 并发加载三类参考数据，各自独立成败
func LoadReferenceData(ctx context.Context, source ReferenceSource) ReferenceData {
	data := NewReferenceData()
	var g errgroup.Group
	g.Go(func() error {
		data.Categories = loadResource(ctx, "categories", source.Categories)
		return nil
	})
	g.Go(func() error {
		data.Locations = loadResource(ctx, "locations", source.Locations)
		return nil
	})
	g.Go(func() error {
		data.Suppliers = loadResource(ctx, "suppliers", source.Suppliers)
		return nil
	})
	_ = g.Wait()
	return data
}

func loadResource(ctx context.Context, kind string, fetch func(context.Context) ([]Option, error)) Resource {
	options, err := fetch(ctx)
	if err != nil {
		logger.Warnw("console_reference_load_failed", "kind", kind, "error", err)
		return Resource{State: LoadFailed, Options: []Option{}, Error: err.Error()}
	}
	if options == nil {
		options = []Option{}
	}
	return Resource{State: LoadReady, Options: options}
}
