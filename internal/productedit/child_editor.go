package productedit

import (
	"errors"
	"fmt"
)

var (
	// ErrChildIndexOutOfRange 子记录下标越界
	ErrChildIndexOutOfRange = errors.New("child index out of range")
	// ErrEditorClosed 编辑会话未打开
	ErrEditorClosed = errors.New("child editor is closed")
)

// EditorMode 子记录编辑会话状态
type EditorMode string

const (
	EditorClosed   EditorMode = "closed"
	EditorOpenNew  EditorMode = "open_new"
	EditorOpenEdit EditorMode = "open_edit"
)

// EditorState 编辑会话状态；Index 仅在 EditorOpenEdit 时有效
type EditorState struct {
	Mode  EditorMode
	Index int
}

// ChildSchema 描述一种子记录与其表单之间的转换
type ChildSchema[R any, F any] struct {
	// NewForm 新建时的默认表单
	NewForm func() F
	// ToForm 由记录生成表单，必须深拷贝
	ToForm func(R) F
	// CloneForm 深拷贝表单
	CloneForm func(F) F
	// Build 由表单生成记录；existing 为 nil 表示新建，否则保留其标识
	Build func(existing *R, form F) R
	// Validate 校验表单
	Validate func(F) FieldErrors
}

// ChildEditor 子集合的模态编辑会话。
// 父集合仅在 Commit 成功时变化，且总是返回新切片，不在原切片上修改。
type ChildEditor[R any, F any] struct {
	schema ChildSchema[R, F]
	state  EditorState
	form   F
	errors FieldErrors
}

// NewChildEditor 创建编辑器，初始为 Closed
func NewChildEditor[R any, F any](schema ChildSchema[R, F]) *ChildEditor[R, F] {
	e := &ChildEditor[R, F]{schema: schema}
	e.Discard()
	return e
}

// State 当前会话状态
func (e *ChildEditor[R, F]) State() EditorState {
	return e.state
}

// Form 当前表单的副本
func (e *ChildEditor[R, F]) Form() F {
	return e.schema.CloneForm(e.form)
}

// Errors 最近一次提交的字段错误
func (e *ChildEditor[R, F]) Errors() FieldErrors {
	return e.errors.Clone()
}

// Open 打开会话：index 为 nil 新建，否则编辑 records[*index]。
// 已有会话会先被丢弃；越界时返回 ErrChildIndexOutOfRange 且保持 Closed。
func (e *ChildEditor[R, F]) Open(records []R, index *int) (F, error) {
	e.Discard()
	if index == nil {
		e.state = EditorState{Mode: EditorOpenNew}
		e.form = e.schema.NewForm()
		return e.Form(), nil
	}
	if *index < 0 || *index >= len(records) {
		return e.Form(), fmt.Errorf("%w: %d", ErrChildIndexOutOfRange, *index)
	}
	e.state = EditorState{Mode: EditorOpenEdit, Index: *index}
	e.form = e.schema.ToForm(records[*index])
	return e.Form(), nil
}

// Commit 校验并写回表单。
// 校验失败返回字段错误，会话保持打开且 records 原样返回；
// 成功时返回替换或追加后的新切片并关闭会话。
func (e *ChildEditor[R, F]) Commit(records []R, form F) ([]R, FieldErrors, error) {
	if e.state.Mode == EditorClosed {
		return records, nil, ErrEditorClosed
	}
	e.form = e.schema.CloneForm(form)

	if errs := e.schema.Validate(form); !errs.Empty() {
		e.errors = errs.Clone()
		return records, errs, nil
	}

	var next []R
	switch e.state.Mode {
	case EditorOpenEdit:
		i := e.state.Index
		if i >= len(records) {
			return records, nil, fmt.Errorf("%w: %d", ErrChildIndexOutOfRange, i)
		}
		next = append(make([]R, 0, len(records)), records...)
		existing := records[i]
		next[i] = e.schema.Build(&existing, e.schema.CloneForm(form))
	default:
		next = append(make([]R, 0, len(records)+1), records...)
		next = append(next, e.schema.Build(nil, e.schema.CloneForm(form)))
	}

	e.Discard()
	return next, nil, nil
}

// Discard 关闭会话并重置表单
func (e *ChildEditor[R, F]) Discard() {
	var zero F
	e.state = EditorState{Mode: EditorClosed}
	e.form = zero
	e.errors = nil
}

// NewVariantEditor 规格编辑器
func NewVariantEditor() *ChildEditor[Variant, VariantForm] {
	return NewChildEditor(ChildSchema[Variant, VariantForm]{
		NewForm:   NewVariantForm,
		ToForm:    func(v Variant) VariantForm { return v.VariantForm.Clone() },
		CloneForm: func(f VariantForm) VariantForm { return f.Clone() },
		Build: func(existing *Variant, form VariantForm) Variant {
			out := Variant{VariantForm: form}
			if existing != nil {
				out.ID = cloneUint(existing.ID)
			}
			return out
		},
		Validate: ValidateVariantForm,
	})
}

// NewSupplierEditor 供应商关联编辑器
func NewSupplierEditor() *ChildEditor[SupplierLink, SupplierForm] {
	return NewChildEditor(ChildSchema[SupplierLink, SupplierForm]{
		NewForm:   NewSupplierForm,
		ToForm:    func(s SupplierLink) SupplierForm { return s.SupplierForm.Clone() },
		CloneForm: func(f SupplierForm) SupplierForm { return f.Clone() },
		Build: func(existing *SupplierLink, form SupplierForm) SupplierLink {
			out := SupplierLink{SupplierForm: form}
			if existing != nil {
				out.ID = cloneUint(existing.ID)
			}
			return out
		},
		Validate: ValidateSupplierForm,
	})
}

func removeAt[R any](records []R, index int) ([]R, error) {
	if index < 0 || index >= len(records) {
		return records, fmt.Errorf("%w: %d", ErrChildIndexOutOfRange, index)
	}
	out := make([]R, 0, len(records)-1)
	out = append(out, records[:index]...)
	return append(out, records[index+1:]...), nil
}
