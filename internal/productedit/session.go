package productedit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bizdesk/internal/logger"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionClosed 会话已关闭（已离开编辑页）
	ErrSessionClosed = errors.New("edit session closed")
	// ErrSessionNotReady 会话尚未初始化
	ErrSessionNotReady = errors.New("edit session not initialized")
)

// Dependencies 会话依赖的外部端口
type Dependencies struct {
	Storage     Storage
	Persistence Persistence
	References  ReferenceSource
	Listing     ListingInvalidator
	Notifier    Notifier
}

// Options 会话配置
type Options struct {
	DeletionPolicy    string
	UploadConcurrency int
	PreviewMaxBytes   int
}

// Mode 编辑页模式
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// EditorView 子记录编辑器快照
type EditorView struct {
	State       EditorMode  `json:"state"`
	Index       *int        `json:"index,omitempty"`
	Form        interface{} `json:"form,omitempty"`
	FieldErrors FieldErrors `json:"field_errors,omitempty"`
}

// View 编辑页完整快照
type View struct {
	Mode           Mode            `json:"mode"`
	Product        Product         `json:"product"`
	PendingUploads []PendingUpload `json:"pending_uploads"`
	VariantEditor  EditorView      `json:"variant_editor"`
	SupplierEditor EditorView      `json:"supplier_editor"`
	Submit         SubmitView      `json:"submit"`
	References     ReferenceData   `json:"references"`
	Blocked        bool            `json:"blocked"`
}

// SaveOutcome 一次保存的结果
type SaveOutcome struct {
	State       SubmitState `json:"state"`
	FieldErrors FieldErrors `json:"field_errors,omitempty"`
	Banner      string      `json:"banner,omitempty"`
	Product     *Product    `json:"product,omitempty"`
}

// Session 单个商品编辑页的状态。
// 编辑器提交、上传合并与保存记账共用同一把锁，网络调用均在锁外进行。
type Session struct {
	mu sync.Mutex

	deps       Dependencies
	reconciler Reconciler

	ready    bool
	closed   bool
	original *Product
	edited   Product
	refs     ReferenceData
	submit   submission

	variants  *ChildEditor[Variant, VariantForm]
	suppliers *ChildEditor[SupplierLink, SupplierForm]
	uploads   *UploadPipeline

	// inflight 提交进行中对 edited 的修改，保存成功后按序重放到服务端返回的聚合上
	inflight []func(*Product)
}

// NewSession 创建会话，需调用 Initialize 后使用
func NewSession(deps Dependencies, opts Options) *Session {
	s := &Session{
		deps:       deps,
		reconciler: NewReconciler(opts.DeletionPolicy),
		edited:     NewProduct(),
		refs:       NewReferenceData(),
		submit:     newSubmission(),
		variants:   NewVariantEditor(),
		suppliers:  NewSupplierEditor(),
	}
	s.uploads = NewUploadPipeline(deps.Storage, deps.Notifier, sessionMedia{s}, UploadOptions{
		Concurrency:     opts.UploadConcurrency,
		PreviewMaxBytes: opts.PreviewMaxBytes,
		Locker:          &s.mu,
	})
	return s
}

// sessionMedia 上传成功后追加媒体；流水线回调时已持有会话锁
type sessionMedia struct {
	s *Session
}

func (m sessionMedia) AppendMedia(url string) {
	if m.s.closed {
		return
	}
	m.s.edited.Images = append(m.s.edited.Images, url)
	m.s.trackLocked(func(p *Product) {
		p.Images = append(p.Images, url)
	})
}

// Initialize 加载参考数据，id 非空时同时加载已有商品（编辑模式）
func (s *Session) Initialize(ctx context.Context, id *uint) error {
	var (
		refs    ReferenceData
		product *Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refs = LoadReferenceData(gctx, s.deps.References)
		return nil
	})
	if id != nil {
		g.Go(func() error {
			p, err := s.deps.Persistence.Get(gctx, *id)
			if err != nil {
				return fmt.Errorf("load product %d: %w", *id, err)
			}
			product = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.refs = refs
	if product != nil {
		loaded := product.Clone()
		loaded.normalize()
		s.original = &loaded
		s.edited = loaded.Clone()
	} else {
		s.original = nil
		s.edited = NewProduct()
	}
	s.variants.Discard()
	s.suppliers.Discard()
	s.submit = newSubmission()
	s.inflight = nil
	s.ready = true
	return nil
}

// ApplyFields 替换根字段
func (s *Session) ApplyFields(fields ProductFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	snapshot := fields.Clone()
	s.edited.ProductFields = snapshot.Clone()
	s.trackLocked(func(p *Product) {
		p.ProductFields = snapshot.Clone()
	})
	return nil
}

// OpenVariantEditor 打开规格编辑，index 为 nil 新建
func (s *Session) OpenVariantEditor(index *int) (VariantForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return VariantForm{}, err
	}
	return s.variants.Open(s.edited.Variants, index)
}

// CommitVariant 提交规格表单
func (s *Session) CommitVariant(form VariantForm) (FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return nil, err
	}
	state := s.variants.State()
	next, errs, err := s.variants.Commit(s.edited.Variants, form)
	if err != nil || !errs.Empty() {
		return errs, err
	}
	s.edited.Variants = next
	if state.Mode == EditorOpenEdit {
		index, committed := state.Index, next[state.Index].VariantForm.Clone()
		s.trackLocked(func(p *Product) {
			if index < len(p.Variants) {
				p.Variants[index].VariantForm = committed.Clone()
			}
		})
	} else {
		added := next[len(next)-1].Clone()
		s.trackLocked(func(p *Product) {
			p.Variants = append(p.Variants, added.Clone())
		})
	}
	return nil, nil
}

// DiscardVariantEditor 关闭规格编辑
func (s *Session) DiscardVariantEditor() {
	s.mu.Lock()
	s.variants.Discard()
	s.mu.Unlock()
}

// RemoveVariant 移除规格；编辑器打开时先丢弃会话
func (s *Session) RemoveVariant(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	next, err := removeAt(s.edited.Variants, index)
	if err != nil {
		return err
	}
	s.variants.Discard()
	s.edited.Variants = next
	s.trackLocked(func(p *Product) {
		p.Variants, _ = removeAt(p.Variants, index)
	})
	return nil
}

// OpenSupplierEditor 打开供应商关联编辑，index 为 nil 新建
func (s *Session) OpenSupplierEditor(index *int) (SupplierForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return SupplierForm{}, err
	}
	return s.suppliers.Open(s.edited.Suppliers, index)
}

// CommitSupplier 提交供应商关联表单
func (s *Session) CommitSupplier(form SupplierForm) (FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return nil, err
	}
	state := s.suppliers.State()
	next, errs, err := s.suppliers.Commit(s.edited.Suppliers, form)
	if err != nil || !errs.Empty() {
		return errs, err
	}
	s.edited.Suppliers = next
	if state.Mode == EditorOpenEdit {
		index, committed := state.Index, next[state.Index].SupplierForm.Clone()
		s.trackLocked(func(p *Product) {
			if index < len(p.Suppliers) {
				p.Suppliers[index].SupplierForm = committed.Clone()
			}
		})
	} else {
		added := next[len(next)-1].Clone()
		s.trackLocked(func(p *Product) {
			p.Suppliers = append(p.Suppliers, added.Clone())
		})
	}
	return nil, nil
}

// DiscardSupplierEditor 关闭供应商关联编辑
func (s *Session) DiscardSupplierEditor() {
	s.mu.Lock()
	s.suppliers.Discard()
	s.mu.Unlock()
}

// RemoveSupplier 移除供应商关联；编辑器打开时先丢弃会话
func (s *Session) RemoveSupplier(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	next, err := removeAt(s.edited.Suppliers, index)
	if err != nil {
		return err
	}
	s.suppliers.Discard()
	s.edited.Suppliers = next
	s.trackLocked(func(p *Product) {
		p.Suppliers, _ = removeAt(p.Suppliers, index)
	})
	return nil
}

// UploadFiles 发起一批上传，立即返回
func (s *Session) UploadFiles(files []UploadFile) (*UploadBatch, error) {
	s.mu.Lock()
	err := s.checkLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.uploads.Start(files), nil
}

// RemoveMedia 按地址精确移除媒体，仅修改本地聚合
func (s *Session) RemoveMedia(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	s.edited.Images = withoutImage(s.edited.Images, url)
	s.trackLocked(func(p *Product) {
		p.Images = withoutImage(p.Images, url)
	})
	return nil
}

func withoutImage(images []string, url string) []string {
	kept := make([]string, 0, len(images))
	for _, item := range images {
		if item != url {
			kept = append(kept, item)
		}
	}
	return kept
}

// Preview 读取预览字节
func (s *Session) Preview(handle string) (string, []byte, bool) {
	return s.uploads.Arena().Get(handle)
}

// Save 校验、合并并提交。
// 提交中再次调用返回 ErrSubmitInProgress；参考数据不可用时返回 ErrReferenceDataUnavailable；
// 本地校验失败、服务端字段失败与整体失败均体现在 SaveOutcome 中而非 error。
func (s *Session) Save(ctx context.Context) (SaveOutcome, error) {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return SaveOutcome{}, err
	}
	if s.refs.Blocked() {
		s.mu.Unlock()
		return SaveOutcome{}, ErrReferenceDataUnavailable
	}
	if err := s.submit.begin(); err != nil {
		s.mu.Unlock()
		return SaveOutcome{}, err
	}

	edited := s.edited.Clone()
	if errs := ValidateProduct(edited); !errs.Empty() {
		s.submit.rejectLocal(errs)
		outcome := s.outcomeLocked(nil)
		s.mu.Unlock()
		logger.Debugw("console_save_rejected_locally", "fields", errs.Fields())
		return outcome, nil
	}
	payload := s.reconciler.Reconcile(s.original, edited)
	s.inflight = nil
	s.submit.submitting()
	s.mu.Unlock()

	var (
		persisted *Product
		err       error
	)
	if edited.ID == nil {
		persisted, err = s.deps.Persistence.Create(ctx, payload)
	} else {
		persisted, err = s.deps.Persistence.Update(ctx, *edited.ID, payload)
	}
	if err == nil && persisted == nil {
		err = &SubmitError{Message: msgSaveFailed}
	}

	s.mu.Lock()
	if err != nil {
		s.inflight = nil
		s.submit.fail(err)
		outcome := s.outcomeLocked(nil)
		s.mu.Unlock()
		logger.Warnw("console_save_failed", "product_id", edited.ID, "state", outcome.State, "error", err)
		return outcome, nil
	}
	saved := persisted.Clone()
	saved.normalize()
	if !s.closed {
		// 服务端结果与提交时的快照同形（子记录按载荷顺序返回），
		// 提交期间的修改按序重放后仍与当前编辑器下标对齐
		rebased := saved.Clone()
		for _, op := range s.inflight {
			op(&rebased)
		}
		if len(s.inflight) > 0 {
			logger.Debugw("console_save_rebased", "product_id", saved.ID, "changes", len(s.inflight))
		}
		s.original = &saved
		s.edited = rebased
	}
	s.inflight = nil
	s.submit.succeed()
	outcome := s.outcomeLocked(&saved)
	s.mu.Unlock()

	if s.deps.Listing != nil {
		if err := s.deps.Listing.InvalidateProductListing(ctx); err != nil {
			logger.Warnw("console_listing_invalidate_failed", "error", err)
		}
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.Saved(saved.Clone())
	}
	return outcome, nil
}

func (s *Session) outcomeLocked(product *Product) SaveOutcome {
	v := s.submit.view()
	out := SaveOutcome{State: v.State, FieldErrors: v.FieldErrors, Banner: v.Banner}
	if product != nil {
		p := product.Clone()
		out.Product = &p
	}
	return out
}

// View 当前快照
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	mode := ModeCreate
	if s.edited.ID != nil {
		mode = ModeEdit
	}
	return View{
		Mode:           mode,
		Product:        s.edited.Clone(),
		PendingUploads: s.uploads.pendingLocked(),
		VariantEditor:  editorView(s.variants),
		SupplierEditor: editorView(s.suppliers),
		Submit:         s.submit.view(),
		References:     s.refs,
		Blocked:        s.refs.Blocked(),
	}
}

func editorView[R any, F any](e *ChildEditor[R, F]) EditorView {
	state := e.State()
	out := EditorView{State: state.Mode}
	if state.Mode == EditorClosed {
		return out
	}
	if state.Mode == EditorOpenEdit {
		index := state.Index
		out.Index = &index
	}
	out.Form = e.Form()
	if errs := e.Errors(); !errs.Empty() {
		out.FieldErrors = errs
	}
	return out
}

// Close 离开编辑页：立即释放预览，之后到达的上传结果与保存结果不再写入
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.variants.Discard()
	s.suppliers.Discard()
	s.mu.Unlock()
	s.uploads.Close()
}

// Closed 是否已关闭
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// PreviewCount 存活预览句柄数
func (s *Session) PreviewCount() int {
	return s.uploads.Arena().Len()
}

// WaitUploads 等待全部上传批次的后台协程退出
func (s *Session) WaitUploads() {
	s.uploads.Wait()
}

// trackLocked 提交进行中时记录一次修改，供保存成功后重放
func (s *Session) trackLocked(op func(*Product)) {
	if s.submit.state == StateSubmitting {
		s.inflight = append(s.inflight, op)
	}
}

func (s *Session) checkLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.ready {
		return ErrSessionNotReady
	}
	return nil
}
