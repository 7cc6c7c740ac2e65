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

type SupplierService interface {
	ListSuppliers(ctx context.Context, withItems bool) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id uint) (domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id uint, update domain.SupplierUpdate) (domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id uint) error
	BulkDeleteSuppliers(ctx context.Context, ids []uint) (int64, error)
	ListItems(ctx context.Context, supplierID uint) ([]domain.SupplierItem, error)
	GetItem(ctx context.Context, id uint) (domain.SupplierItem, error)
	CreateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error)
	UpdateItem(ctx context.Context, id uint, update domain.SupplierItemUpdate) (domain.SupplierItem, error)
	DeleteItem(ctx context.Context, id uint) error
}

type SupplierHandler struct {
	svc SupplierService
}

func NewSupplierHandler(svc SupplierService) *SupplierHandler {
	return &SupplierHandler{
		svc: svc,
	}
}

// HandleListSuppliers godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200      {array}    domain.Supplier
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers [get]
// @Security     BearerAuth
func (h *SupplierHandler) HandleListSuppliers(ctx *gin.Context) {
	h.listSuppliers(ctx, false)
}

// HandleListSuppliersWithItems godoc
// @Summary      List suppliers with their items
// @Tags         suppliers
// @Produce      json
// @Success      200      {array}    domain.Supplier
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers-with-items [get]
// @Security     BearerAuth
func (h *SupplierHandler) HandleListSuppliersWithItems(ctx *gin.Context) {
	h.listSuppliers(ctx, true)
}

func (h *SupplierHandler) listSuppliers(ctx *gin.Context, withItems bool) {
	suppliers, err := h.svc.ListSuppliers(ctx.Request.Context(), withItems)
	if err != nil {
		err = fmt.Errorf("v1.HandleListSuppliers -> h.svc.ListSuppliers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, suppliers)
}

// HandleGetSupplier godoc
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        supplierID   path      int  true  "supplier ID"
// @Success      200      {object}   domain.Supplier
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/{supplierID} [get]
// @Security     BearerAuth
func (h *SupplierHandler) HandleGetSupplier(ctx *gin.Context) {
	id, ok := paramID(ctx, "supplierID")
	if !ok {
		return
	}

	supplier, err := h.svc.GetSupplier(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetSupplier -> h.svc.GetSupplier", id, err)
		return
	}

	ctx.JSON(http.StatusOK, supplier)
}

// HandleCreateSupplier godoc
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request   body      request.SupplierCreate true "request body"
// @Success      201      {object}   domain.Supplier
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers [post]
// @Security     BearerAuth
func (h *SupplierHandler) HandleCreateSupplier(ctx *gin.Context) {
	var req request.SupplierCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	supplier, err := h.svc.CreateSupplier(ctx.Request.Context(), req.ToSupplier(currentUserID(ctx)))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateSupplier -> h.svc.CreateSupplier -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, supplier)
}

// HandleUpdateSupplier godoc
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        supplierID   path      int  true  "supplier ID"
// @Param        request   body      request.SupplierUpdate true "request body"
// @Success      200      {object}   domain.Supplier
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/{supplierID} [put]
// @Security     BearerAuth
func (h *SupplierHandler) HandleUpdateSupplier(ctx *gin.Context) {
	id, ok := paramID(ctx, "supplierID")
	if !ok {
		return
	}

	var req request.SupplierUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	supplier, err := h.svc.UpdateSupplier(ctx.Request.Context(), id, req.ToUpdate())
	if err != nil {
		h.renderErr(ctx, "v1.HandleUpdateSupplier -> h.svc.UpdateSupplier", id, err)
		return
	}

	ctx.JSON(http.StatusOK, supplier)
}

// HandleDeleteSupplier godoc
// @Summary      Delete a supplier and its items
// @Tags         suppliers
// @Produce      json
// @Param        supplierID   path      int  true  "supplier ID"
// @Success      200      {object}   response.Message
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/{supplierID} [delete]
// @Security     BearerAuth
func (h *SupplierHandler) HandleDeleteSupplier(ctx *gin.Context) {
	id, ok := paramID(ctx, "supplierID")
	if !ok {
		return
	}

	if err := h.svc.DeleteSupplier(ctx.Request.Context(), id); err != nil {
		h.renderErr(ctx, "v1.HandleDeleteSupplier -> h.svc.DeleteSupplier", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "supplier deleted"})
}

// HandleBulkDeleteSuppliers godoc
// @Summary      Delete several suppliers
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request   body      request.SupplierBulkDelete true "request body"
// @Success      200      {object}   response.BulkDeleteResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/bulk-delete [post]
// @Security     BearerAuth
func (h *SupplierHandler) HandleBulkDeleteSuppliers(ctx *gin.Context) {
	var req request.SupplierBulkDelete
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	n, err := h.svc.BulkDeleteSuppliers(ctx.Request.Context(), req.SupplierIDs)
	if err != nil {
		h.renderErr(ctx, "v1.HandleBulkDeleteSuppliers -> h.svc.BulkDeleteSuppliers", 0, err)
		return
	}

	ctx.JSON(http.StatusOK, response.BulkDeleteResponse{
		Message:      fmt.Sprintf("%d suppliers deleted", n),
		DeletedCount: n,
	})
}

// HandleListItems godoc
// @Summary      List the items of a supplier
// @Tags         suppliers
// @Produce      json
// @Param        supplierID   path      int  true  "supplier ID"
// @Success      200      {array}    domain.SupplierItem
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/{supplierID}/items [get]
// @Security     BearerAuth
func (h *SupplierHandler) HandleListItems(ctx *gin.Context) {
	id, ok := paramID(ctx, "supplierID")
	if !ok {
		return
	}

	items, err := h.svc.ListItems(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleListItems -> h.svc.ListItems", id, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleCreateItem godoc
// @Summary      Add an item to a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        supplierID   path      int  true  "supplier ID"
// @Param        request   body      request.SupplierItemCreate true "request body"
// @Success      201      {object}   domain.SupplierItem
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /suppliers/{supplierID}/items [post]
// @Security     BearerAuth
func (h *SupplierHandler) HandleCreateItem(ctx *gin.Context) {
	supplierID, ok := paramID(ctx, "supplierID")
	if !ok {
		return
	}

	var req request.SupplierItemCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.CreateItem(ctx.Request.Context(), req.ToItem(supplierID))
	if err != nil {
		h.renderErr(ctx, "v1.HandleCreateItem -> h.svc.CreateItem", supplierID, err)
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

// HandleGetItem godoc
// @Summary      Get a supplier item
// @Tags         suppliers
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Success      200      {object}   domain.SupplierItem
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /items/{itemID} [get]
// @Security     BearerAuth
func (h *SupplierHandler) HandleGetItem(ctx *gin.Context) {
	id, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}

	item, err := h.svc.GetItem(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetItem -> h.svc.GetItem", id, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleUpdateItem godoc
// @Summary      Update a supplier item
// @Description  A replaced attachment is removed from storage.
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Param        request   body      request.SupplierItemUpdate true "request body"
// @Success      200      {object}   domain.SupplierItem
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /items/{itemID} [put]
// @Security     BearerAuth
func (h *SupplierHandler) HandleUpdateItem(ctx *gin.Context) {
	id, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}

	var req request.SupplierItemUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.UpdateItem(ctx.Request.Context(), id, req.ToUpdate())
	if err != nil {
		h.renderErr(ctx, "v1.HandleUpdateItem -> h.svc.UpdateItem", id, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleDeleteItem godoc
// @Summary      Delete a supplier item and its attachment
// @Tags         suppliers
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Success      200      {object}   response.Message
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /items/{itemID} [delete]
// @Security     BearerAuth
func (h *SupplierHandler) HandleDeleteItem(ctx *gin.Context) {
	id, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(ctx.Request.Context(), id); err != nil {
		h.renderErr(ctx, "v1.HandleDeleteItem -> h.svc.DeleteItem", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "item deleted"})
}

func (h *SupplierHandler) renderErr(ctx *gin.Context, op string, id uint, err error) {
	switch {
	case errors.Is(err, service.ErrSupplierNotFound):
		response.RenderErr(ctx, response.ErrNotFound("supplier", "ID", id))
	case errors.Is(err, service.ErrSupplierItemNotFound):
		response.RenderErr(ctx, response.ErrNotFound("item", "ID", id))
	case errors.Is(err, service.ErrNoSupplierIDs):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoSupplierIDs))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}
