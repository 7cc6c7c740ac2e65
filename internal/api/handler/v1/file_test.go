package v1

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

func newFileRouter(svc *attachmentServiceMock) *gin.Engine {
	h := NewFileHandler(svc)

	r := gin.New()
	r.POST("/upload", h.HandleUpload)
	r.DELETE("/delete-file", h.HandleDeleteFile)
	r.GET("/uploads/:filename", h.HandleServeFile)

	return r
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestFileHandler_HandleUpload(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		uploadErr  error
		wantStatus int
	}{
		{name: "created", field: "file", wantStatus: http.StatusCreated},
		{name: "no file field", field: "other", wantStatus: http.StatusBadRequest},
		{name: "type not allowed", field: "file", uploadErr: fmt.Errorf("%w, allowed types: pdf", service.ErrFileTypeNotAllowed), wantStatus: http.StatusBadRequest},
		{name: "too large", field: "file", uploadErr: service.ErrFileTooLarge, wantStatus: http.StatusBadRequest},
		{name: "storage failure", field: "file", uploadErr: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &attachmentServiceMock{}
			if tt.field == "file" {
				svc.On("Upload", mock.Anything, "quote.pdf", int64(5), mock.Anything).
					Return(domain.Attachment{FilePath: "uploads/abc.pdf", FileName: "quote.pdf", FileSize: 5}, tt.uploadErr)
			}

			w := httptest.NewRecorder()
			newFileRouter(svc).ServeHTTP(w, uploadRequest(t, tt.field, "quote.pdf", "hello"))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.field != "file" {
				assert.Equal(t, service.ErrNoFile.Error(), decodeErr(t, w).ErrorText)
				svc.AssertNotCalled(t, "Upload")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestFileHandler_HandleDeleteFile(t *testing.T) {
	svc := &attachmentServiceMock{}
	svc.On("Delete", mock.Anything, "uploads/gone.pdf").Return(service.ErrFileNotFound)
	svc.On("Delete", mock.Anything, "../etc/passwd").Return(service.ErrInvalidFileName)
	svc.On("Delete", mock.Anything, "uploads/abc.pdf").Return(nil)
	r := newFileRouter(svc)

	w := serve(r, http.MethodDelete, "/delete-file", map[string]string{"file_path": "uploads/gone.pdf"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "file with path uploads/gone.pdf not found", decodeErr(t, w).ErrorText)

	w = serve(r, http.MethodDelete, "/delete-file", map[string]string{"file_path": "../etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/delete-file", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/delete-file", map[string]string{"file_path": "uploads/abc.pdf"})
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}

func TestFileHandler_HandleServeFile(t *testing.T) {
	svc := &attachmentServiceMock{}
	svc.On("Open", mock.Anything, "abc.pdf").Return(io.NopCloser(strings.NewReader("%PDF")), "quote.pdf", nil)
	svc.On("Open", mock.Anything, "missing.png").Return(nil, "", service.ErrFileNotFound)
	r := newFileRouter(svc)

	w := serve(r, http.MethodGet, "/uploads/abc.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quote.pdf")
	assert.Equal(t, "%PDF", w.Body.String())

	w = serve(r, http.MethodGet, "/uploads/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}
