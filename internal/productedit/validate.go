package productedit

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldErrors 字段路径 -> 错误消息列表；路径使用 JSON 名，子记录以 "variants.0.name" 形式定位
type FieldErrors map[string][]string

// Add 追加一条字段错误
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty 是否无错误
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields 返回排序后的字段路径
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for field := range f {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Clone 深拷贝
func (f FieldErrors) Clone() FieldErrors {
	if f == nil {
		return nil
	}
	out := make(FieldErrors, len(f))
	for field, messages := range f {
		out[field] = append([]string{}, messages...)
	}
	return out
}

const (
	msgRequired    = "is required"
	msgTooLong     = "is too long"
	msgMoney       = "must be a non-negative amount"
	msgQuantity    = "must be a non-negative whole number"
	msgMeasure     = "must be a non-negative number"
	msgUnsupported = "unsupported value"
	msgInvalid     = "is invalid"
)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return "-"
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, ok := Number(fl.Field().String()).Decimal()
		return ok && (d == nil || !d.IsNegative())
	})
	_ = v.RegisterValidation("measure", func(fl validator.FieldLevel) bool {
		d, ok := Number(fl.Field().String()).Decimal()
		return ok && (d == nil || !d.IsNegative())
	})
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		n, ok := Number(fl.Field().String()).Int()
		return ok && (n == nil || *n >= 0)
	})
	return v
}

// ValidateProduct 校验整个聚合（根字段与全部子记录）
func ValidateProduct(p Product) FieldErrors {
	return validateStruct(p)
}

// ValidateVariantForm 校验单个规格表单
func ValidateVariantForm(f VariantForm) FieldErrors {
	return validateStruct(f)
}

// ValidateSupplierForm 校验单个供应商关联表单
func ValidateSupplierForm(f SupplierForm) FieldErrors {
	return validateStruct(f)
}

func validateStruct(value interface{}) FieldErrors {
	errs := FieldErrors{}
	err := formValidator.Struct(value)
	if err == nil {
		return errs
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("_", err.Error())
		return errs
	}
	for _, fe := range validationErrs {
		errs.Add(fieldPath(fe.Namespace()), messageForTag(fe.Tag()))
	}
	return errs
}

// fieldPath 将 "Product.variants[0].VariantForm.name" 转换为 "variants.0.name"；
// 首段为根类型名，大写开头的段为内嵌结构体名，均省略。
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	if len(segments) > 0 {
		segments = segments[1:]
	}
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if unicode.IsUpper([]rune(segment)[0]) {
			continue
		}
		if open := strings.IndexByte(segment, '['); open >= 0 && strings.HasSuffix(segment, "]") {
			parts = append(parts, segment[:open], segment[open+1:len(segment)-1])
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, ".")
}

func messageForTag(tag string) string {
	switch tag {
	case "required", "notblank":
		return msgRequired
	case "max":
		return msgTooLong
	case "money":
		return msgMoney
	case "quantity":
		return msgQuantity
	case "measure":
		return msgMeasure
	case "oneof":
		return msgUnsupported
	default:
		return msgInvalid
	}
}
