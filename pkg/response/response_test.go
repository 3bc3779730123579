package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/books", nil)
	return c, w
}

func TestError(t *testing.T) {
	t.Run("4xx错误", func(t *testing.T) {
		c, w := newContext()
		Error(c, apperrors.New(http.StatusNotFound, "Book not found."))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Book not found."}`, w.Body.String())
	})

	t.Run("内部错误不泄露细节", func(t *testing.T) {
		c, w := newContext()
		Error(c, apperrors.Wrap(errors.New("mongo: timeout"), "Failed to retrieve books."))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Failed to retrieve books.", body.Error)
		assert.NotContains(t, w.Body.String(), "mongo")
	})
}

func TestSuccessAndMessage(t *testing.T) {
	c, w := newContext()
	Created(c, map[string]int{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())

	c, w = newContext()
	Message(c, http.StatusOK, "Book listing with ID 1 deleted.")
	assert.JSONEq(t, `{"message":"Book listing with ID 1 deleted."}`, w.Body.String())
}
