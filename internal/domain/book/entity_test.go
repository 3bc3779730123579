package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	assert.Equal(t, int64(1), NextID(0), "空集合从1开始")
	assert.Equal(t, int64(8), NextID(7))
	assert.Equal(t, int64(1), NextID(-3))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = ParseID("-1")
	assert.NoError(t, err, "负数是合法整数,由查找结果决定404")
	assert.Equal(t, int64(-1), id)

	for _, raw := range []string{"abc", "", "1.5", "12abc", "9999999999999999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestReplacement_DropsGenre(t *testing.T) {
	d := Draft{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Rating: 9, Comments: "Spice"}

	b := Replacement(3, d)
	assert.Equal(t, int64(3), b.ID)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, Rating(9), b.Rating)
	assert.Empty(t, b.Genre, "替换文档不包含genre")

	created := NewBook(3, d)
	assert.Equal(t, "Sci-Fi", created.Genre)
}

func TestDeletedMessage(t *testing.T) {
	assert.Equal(t, "Book listing with ID 5 deleted.", DeletedMessage(5))
}
