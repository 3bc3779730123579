package book

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	// MinRating 最低评分
	MinRating = 1
	// MaxRating 最高评分
	MaxRating = 10

	ratingSuffix = "/10 ⭐"
)

// Rating 图书评分(1-10)
// 设计说明:
// 1. 零值表示"未评分"
// 2. 对外展示形式为 "<n>/10 ⭐",由String()计算得到,不作为唯一存储形式
// 3. JSON输出为展示字符串,输入兼容 "9/10 ⭐"、"9"、9、""、null
type Rating int

// NewRating 创建评分,超出1-10返回ErrInvalidRating
func NewRating(n int) (Rating, error) {
	if n < MinRating || n > MaxRating {
		return 0, ErrInvalidRating
	}
	return Rating(n), nil
}

// ParseRating 解析评分字符串
// 支持:
// - "" → 未评分
// - "9" → 9
// - "9/10 ⭐"、"9/10" → 9(兼容历史数据的展示格式)
func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "⭐"))
	s = strings.TrimSpace(strings.TrimSuffix(s, "/10"))

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidRating
	}
	return NewRating(n)
}

// IsSet 是否已评分
func (r Rating) IsSet() bool {
	return r != 0
}

// Value 评分数值(未评分为0)
func (r Rating) Value() int {
	return int(r)
}

// String 展示形式,未评分返回空串
func (r Rating) String() string {
	if !r.IsSet() {
		return ""
	}
	return strconv.Itoa(int(r)) + ratingSuffix
}

// InputValue 表单输入框中的形式(去掉"/10 ⭐"后缀)
func (r Rating) InputValue() string {
	if !r.IsSet() {
		return ""
	}
	return strconv.Itoa(int(r))
}

// MarshalJSON 输出展示字符串
func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON 兼容字符串和数字两种输入
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidRating
		}
		parsed, err := ParseRating(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidRating
	}
	parsed, err := NewRating(n)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RestoreRating 从存储的两个字段恢复评分
// 优先使用数值字段;历史文档只有展示字符串,无法解析时视为未评分
func RestoreRating(value int, display string) Rating {
	if r, err := NewRating(value); err == nil {
		return r
	}
	r, err := ParseRating(display)
	if err != nil {
		return 0
	}
	return r
}
