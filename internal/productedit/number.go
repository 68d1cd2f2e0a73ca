package productedit

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number 表单数值输入，保留用户原始文本；空白表示“无值”。
// JSON 反序列化同时接受字符串、数字与 null。
type Number string

// UnmarshalJSON 解析字符串 / 数字 / null
func (n *Number) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var raw json.Number
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*n = Number(raw.String())
	return nil
}

// MarshalJSON 空白输出 null，其余按原文输出字符串
func (n Number) MarshalJSON() ([]byte, error) {
	if n.Blank() {
		return []byte("null"), nil
	}
	return json.Marshal(strings.TrimSpace(string(n)))
}

// Blank 是否为空白输入
func (n Number) Blank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Decimal 解析为十进制数；空白返回 (nil, true)，无法解析返回 (nil, false)
func (n Number) Decimal() (*decimal.Decimal, bool) {
	if n.Blank() {
		return nil, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil {
		return nil, false
	}
	return &d, true
}

// Int 解析为整数；允许 "5" 与 "5.0"，小数部分非零或超出 int 范围视为无法解析
func (n Number) Int() (*int, bool) {
	d, ok := n.Decimal()
	if !ok || d == nil {
		return nil, ok
	}
	if !d.Equal(d.Truncate(0)) || !d.BigInt().IsInt64() {
		return nil, false
	}
	i64 := d.IntPart()
	v := int(i64)
	if int64(v) != i64 {
		return nil, false
	}
	return &v, true
}

// NumberFromInt 由整数构造表单数值
func NumberFromInt(v int) Number {
	return Number(strconv.Itoa(v))
}

// NumberFromDecimal 由十进制数构造表单数值
func NumberFromDecimal(d decimal.Decimal) Number {
	return Number(d.String())
}
