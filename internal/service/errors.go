package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("resource not found")
	// ErrUploadPathInvalid 待删除文件路径不合法
	ErrUploadPathInvalid = errors.New("upload path invalid")
)

// FieldErrors 字段级错误，键为 JSON 路径（如 variants.0.name）
type FieldErrors map[string][]string

// Add 追加字段错误
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty 是否没有任何字段错误
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields 返回有序字段列表
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError 携带字段错误的校验失败
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || e.Fields.Empty() {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}

// AsValidationError 提取校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}
