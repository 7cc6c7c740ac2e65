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
)

func TestRenderErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        *Err
		wantStatus int
		wantText   string
	}{
		{"bad request", ErrBadRequest(errors.New("name: cannot be blank.")), http.StatusBadRequest, "name: cannot be blank."},
		{"not found", ErrNotFound("product", "ID", 7), http.StatusNotFound, "product with ID 7 not found"},
		{"unauthorized default", ErrUnauthorized(nil), http.StatusUnauthorized, "missing or invalid token"},
		{"internal hides cause", ErrInternalServerError(errors.New("dial tcp: refused")), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RenderErr(ctx, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, ctx.IsAborted())

			var body Err
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(tt.wantStatus), body.StatusText)
			assert.Equal(t, tt.wantText, body.ErrorText)
		})
	}
}

func TestErr_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, ErrInternalServerError(cause), cause)
}
