package productedit

import (
	"context"
	"errors"
	"sync"
)

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

// stubStorage 按文件名返回预设结果；gate 非空时上传阻塞直到通道关闭
type stubStorage struct {
	mu      sync.Mutex
	urls    map[string]string
	fails   map[string]error
	gates   map[string]chan struct{}
	started chan string
	calls   int
}

func newStubStorage() *stubStorage {
	return &stubStorage{
		urls:  map[string]string{},
		fails: map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (s *stubStorage) Upload(ctx context.Context, file UploadFile) (string, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gates[file.Name]
	url := s.urls[file.Name]
	failErr := s.fails[file.Name]
	started := s.started
	s.mu.Unlock()

	if started != nil {
		started <- file.Name
	}
	if gate != nil {
		<-gate
	}
	if failErr != nil {
		return "", failErr
	}
	return url, nil
}

func (s *stubStorage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubPersistence 记录提交的载荷；nextID 为新建记录分配标识
type stubPersistence struct {
	mu       sync.Mutex
	stored   map[uint]Product
	nextID   uint
	creates  []Payload
	updates  []Payload
	failWith error
	gate     chan struct{}
	entered  chan struct{}
}

func newStubPersistence() *stubPersistence {
	return &stubPersistence{stored: map[uint]Product{}, nextID: 100}
}

func (p *stubPersistence) Get(ctx context.Context, id uint) (*Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	product, ok := p.stored[id]
	if !ok {
		return nil, &SubmitError{Status: 404, Message: "not found"}
	}
	out := product.Clone()
	return &out, nil
}

func (p *stubPersistence) Create(ctx context.Context, payload Payload) (*Product, error) {
	p.mu.Lock()
	p.creates = append(p.creates, payload)
	p.mu.Unlock()
	return p.persist(nil, payload)
}

func (p *stubPersistence) Update(ctx context.Context, id uint, payload Payload) (*Product, error) {
	p.mu.Lock()
	p.updates = append(p.updates, payload)
	p.mu.Unlock()
	return p.persist(&id, payload)
}

func (p *stubPersistence) persist(id *uint, payload Payload) (*Product, error) {
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	if id == nil {
		p.nextID++
		id = uintPtr(p.nextID)
	}
	product := NewProduct()
	product.ID = uintPtr(*id)
	product.Name = payload.Name
	product.SKU = payload.SKU
	product.IsActive = payload.IsActive
	product.Images = append([]string{}, payload.Images...)
	for _, v := range payload.Variants {
		variant := Variant{ID: v.ID, VariantForm: VariantForm{Name: v.Name, IsActive: v.IsActive}}
		if variant.ID == nil {
			p.nextID++
			variant.ID = uintPtr(p.nextID)
		}
		product.Variants = append(product.Variants, variant)
	}
	for _, s := range payload.Suppliers {
		link := SupplierLink{ID: s.ID, SupplierForm: SupplierForm{SupplierID: s.SupplierID}}
		if link.ID == nil {
			p.nextID++
			link.ID = uintPtr(p.nextID)
		}
		product.Suppliers = append(product.Suppliers, link)
	}
	p.stored[*id] = product.Clone()
	return &product, nil
}

func (p *stubPersistence) submitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creates) + len(p.updates)
}

type stubReferences struct {
	failLocations bool
}

func (r stubReferences) Categories(ctx context.Context) ([]Option, error) {
	return []Option{{ID: 1, Label: "Furniture"}}, nil
}

func (r stubReferences) Locations(ctx context.Context) ([]Option, error) {
	if r.failLocations {
		return nil, errors.New("locations endpoint unavailable")
	}
	return []Option{{ID: 1, Label: "Main Warehouse"}}, nil
}

func (r stubReferences) Suppliers(ctx context.Context) ([]Option, error) {
	return nil, nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) InvalidateProductListing(ctx context.Context) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return nil
}

// recordingSink 独立使用流水线时接收媒体地址
type recordingSink struct {
	urls []string
}

func (r *recordingSink) AppendMedia(url string) {
	r.urls = append(r.urls, url)
}
