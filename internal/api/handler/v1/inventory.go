package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/request"
	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

type InventoryService interface {
	RecordMovement(ctx context.Context, m domain.Movement) (domain.InventoryRecord, error)
	ListRecords(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.InventoryRecord], error)
	GetRecord(ctx context.Context, id uint) (domain.InventoryRecord, error)
}

type InventoryHandler struct {
	svc InventoryService
}

func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{
		svc: svc,
	}
}

// HandleListRecords godoc
// @Summary      List inventory records
// @Tags         inventory
// @Produce      json
// @Param        product_id   query     int     false  "product ID"
// @Param        supplier_id  query     int     false  "supplier ID"
// @Param        type         query     string  false  "IN, OUT or ADJUST"
// @Param        page         query     int     false  "page, starting at 1"
// @Param        per_page     query     int     false  "page size, default 10, max 100"
// @Success      200      {object}   domain.Page[domain.InventoryRecord]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /inventory [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleListRecords(ctx *gin.Context) {
	productID, err := queryID(ctx, "product_id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	supplierID, err := queryID(ctx, "supplier_id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	filter := domain.InventoryFilter{
		ProductID:  productID,
		SupplierID: supplierID,
		Type:       ctx.Query("type"),
	}

	records, err := h.svc.ListRecords(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleListRecords -> h.svc.ListRecords -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// HandleGetRecord godoc
// @Summary      Get an inventory record
// @Tags         inventory
// @Produce      json
// @Param        recordID   path      int  true  "record ID"
// @Success      200      {object}   domain.InventoryRecord
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /inventory/{recordID} [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleGetRecord(ctx *gin.Context) {
	id, ok := paramID(ctx, "recordID")
	if !ok {
		return
	}

	record, err := h.svc.GetRecord(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInventoryRecordNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("inventory record", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetRecord -> h.svc.GetRecord -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, record)
}

// HandleCreateRecord godoc
// @Summary      Record a stock movement
// @Description  IN restocks, optionally from a supplier. OUT takes stock out. ADJUST applies a signed correction.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request   body      request.InventoryCreate true "request body"
// @Success      201      {object}   domain.InventoryRecord
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /inventory [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleCreateRecord(ctx *gin.Context) {
	var req request.InventoryCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := h.svc.RecordMovement(ctx.Request.Context(), req.ToMovement(currentUserID(ctx)))
	if err != nil {
		if renderStockErr(ctx, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrSupplierNotFound):
			response.RenderErr(ctx, response.ErrNotFound("supplier", "ID", *req.SupplierID))
		case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidMovement):
			response.RenderErr(ctx, response.ErrBadRequest(matchErr(err, service.ErrInvalidQuantity, service.ErrInvalidMovement)))
		default:
			err = fmt.Errorf("v1.HandleCreateRecord -> h.svc.RecordMovement -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, record)
}
