package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/request"
	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

type AttachmentService interface {
	Upload(ctx context.Context, filename string, size int64, r io.Reader) (domain.Attachment, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, filePath string) error
}

type FileHandler struct {
	svc AttachmentService
}

func NewFileHandler(svc AttachmentService) *FileHandler {
	return &FileHandler{
		svc: svc,
	}
}

// HandleUpload godoc
// @Summary      Upload an attachment
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file   formData   file  true  "file to upload"
// @Success      201      {object}   domain.Attachment
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /upload [post]
// @Security     BearerAuth
func (h *FileHandler) HandleUpload(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoFile))
		return
	}

	f, err := fh.Open()
	if err != nil {
		err = fmt.Errorf("v1.HandleUpload -> fh.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	defer f.Close()

	attachment, err := h.svc.Upload(ctx.Request.Context(), fh.Filename, fh.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTypeNotAllowed):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNoFile), errors.Is(err, service.ErrFileTooLarge):
			response.RenderErr(ctx, response.ErrBadRequest(matchErr(err, service.ErrNoFile, service.ErrFileTooLarge)))
		default:
			err = fmt.Errorf("v1.HandleUpload -> h.svc.Upload -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, attachment)
}

// HandleDeleteFile godoc
// @Summary      Delete an uploaded file
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        request   body      request.DeleteFile true "request body"
// @Success      200      {object}   response.Message
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /delete-file [post]
// @Security     BearerAuth
func (h *FileHandler) HandleDeleteFile(ctx *gin.Context) {
	var req request.DeleteFile
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), req.FilePath); err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			response.RenderErr(ctx, response.ErrNotFound("file", "path", req.FilePath))
		case errors.Is(err, service.ErrInvalidFileName):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidFileName))
		default:
			err = fmt.Errorf("v1.HandleDeleteFile -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "file deleted"})
}

// HandleServeFile godoc
// @Summary      Download an uploaded file
// @Tags         files
// @Produce      octet-stream
// @Param        filename   path      string  true  "stored file name"
// @Success      200
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /uploads/{filename} [get]
func (h *FileHandler) HandleServeFile(ctx *gin.Context) {
	name := ctx.Param("filename")

	rc, download, err := h.svc.Open(ctx.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			response.RenderErr(ctx, response.ErrNotFound("file", "name", name))
		case errors.Is(err, service.ErrInvalidFileName):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidFileName))
		default:
			err = fmt.Errorf("v1.HandleServeFile -> h.svc.Open -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("inline", map[string]string{"filename": download}),
	})
}
