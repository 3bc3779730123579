package book

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rating
		wantErr bool
	}{
		{"空串表示未评分", "", 0, false},
		{"纯数字", "9", 9, false},
		{"展示格式", "9/10 ⭐", 9, false},
		{"不带星号", "7/10", 7, false},
		{"满分", "10/10 ⭐", 10, false},
		{"前后空白", "  3 ", 3, false},
		{"零分", "0", 0, true},
		{"超过10", "11", 0, true},
		{"非数字", "great", 0, true},
		{"只有后缀", "/10 ⭐", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRating(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRating_Display(t *testing.T) {
	r := Rating(9)
	assert.Equal(t, "9/10 ⭐", r.String())
	assert.Equal(t, "9", r.InputValue())
	assert.Equal(t, 9, r.Value())
	assert.True(t, r.IsSet())

	var none Rating
	assert.Equal(t, "", none.String())
	assert.Equal(t, "", none.InputValue())
	assert.False(t, none.IsSet())
}

func TestRating_DisplayRoundTrip(t *testing.T) {
	for n := MinRating; n <= MaxRating; n++ {
		r, err := NewRating(n)
		require.NoError(t, err)

		parsed, err := ParseRating(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed, "展示格式应能解析回原评分: %d", n)
	}
}

func TestRating_JSON(t *testing.T) {
	t.Run("输出展示字符串", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Rating Rating `json:"rating,omitempty"`
		}{Rating: 8})
		require.NoError(t, err)
		assert.JSONEq(t, `{"rating":"8/10 ⭐"}`, string(data))
	})

	t.Run("未评分时省略", func(t *testing.T) {
		data, err := json.Marshal(Book{ID: 1, Title: "T", Author: "A"})
		require.NoError(t, err)
		assert.NotContains(t, string(data), "rating")
		assert.NotContains(t, string(data), "genre")
	})

	inputs := map[string]Rating{
		`{"rating":"9/10 ⭐"}`: 9,
		`{"rating":"4"}`:      4,
		`{"rating":6}`:        6,
		`{"rating":""}`:       0,
		`{"rating":null}`:     0,
		`{}`:                  0,
	}
	for input, want := range inputs {
		var v struct {
			Rating Rating `json:"rating"`
		}
		require.NoError(t, json.Unmarshal([]byte(input), &v), input)
		assert.Equal(t, want, v.Rating, input)
	}

	for _, input := range []string{`{"rating":"12/10 ⭐"}`, `{"rating":0}`, `{"rating":true}`, `{"rating":7.5}`} {
		var v struct {
			Rating Rating `json:"rating"`
		}
		err := json.Unmarshal([]byte(input), &v)
		assert.ErrorIs(t, err, ErrInvalidRating, input)
	}
}

func TestRestoreRating(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		display string
		want    Rating
	}{
		{name: "数值字段优先", value: 7, display: "3/10 ⭐", want: 7},
		{name: "历史文档只有展示字符串", display: "9/10 ⭐", want: 9},
		{name: "未评分", want: 0},
		{name: "无法解析的历史数据", display: "great", want: 0},
		{name: "越界数值回退到展示字符串", value: 42, display: "4/10 ⭐", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestoreRating(tt.value, tt.display))
		})
	}
}
