package v1

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/request"
	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product, createdBy *uint) (domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, update domain.ProductUpdate, updatedBy *uint) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	BulkCreateProducts(ctx context.Context, products []domain.Product, createdBy *uint) domain.BulkResult
	Statistics(ctx context.Context) (domain.ProductStatistics, error)
	SearchInStock(ctx context.Context, term string) ([]domain.Product, error)
	FindForSale(ctx context.Context, barcode string) (domain.Product, error)
	StockCard(ctx context.Context, id uint) ([]domain.InventoryRecord, error)
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        type       query     string  false  "product type"
// @Param        min_price  query     number  false  "minimum sell price"
// @Param        max_price  query     number  false  "maximum sell price"
// @Param        page       query     int     false  "page, starting at 1"
// @Param        per_page   query     int     false  "page size, default 10, max 100"
// @Success      200      {object}   domain.Page[domain.Product]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleListProducts(ctx *gin.Context) {
	minPrice, err := queryDecimal(ctx, "min_price")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	maxPrice, err := queryDecimal(ctx, "max_price")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	filter := domain.ProductFilter{
		Type:     ctx.Query("type"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}

	products, err := h.svc.ListProducts(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleListProducts -> h.svc.ListProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID   path      int  true  "product ID"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "productID")
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetProduct -> h.svc.GetProduct", id, err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Description  A positive quantity is booked as opening stock.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request   body      request.ProductCreate true "request body"
// @Success      201      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	var req request.ProductCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), req.ToProduct(), currentUserID(ctx))
	if err != nil {
		h.renderErr(ctx, "v1.HandleCreateProduct -> h.svc.CreateProduct", 0, err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Description  Only the given fields change. A new quantity is booked as a stock adjustment.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        productID   path      int  true  "product ID"
// @Param        request   body      request.ProductUpdate true "request body"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [put]
// @Security     BearerAuth
func (h *ProductHandler) HandleUpdateProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "productID")
	if !ok {
		return
	}

	var req request.ProductUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.UpdateProduct(ctx.Request.Context(), id, req.ToUpdate(), currentUserID(ctx))
	if err != nil {
		h.renderErr(ctx, "v1.HandleUpdateProduct -> h.svc.UpdateProduct", id, err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        productID   path      int  true  "product ID"
// @Success      200      {object}   response.Message
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [delete]
// @Security     BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "productID")
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(ctx.Request.Context(), id); err != nil {
		h.renderErr(ctx, "v1.HandleDeleteProduct -> h.svc.DeleteProduct", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "product deleted"})
}

// HandleBulkCreateProducts godoc
// @Summary      Create several products
// @Description  Each entry is validated and created on its own. Responds 201 when at least one was created.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request   body      request.ProductBulkCreate true "request body"
// @Success      201      {object}   domain.BulkResult
// @Failure      400      {object}   domain.BulkResult
// @Failure      500      {object}   response.Err
// @Router       /products/bulk [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleBulkCreateProducts(ctx *gin.Context) {
	var req request.ProductBulkCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var (
		valid   []domain.Product
		indexes []int
		invalid []domain.BulkError
	)
	for i, p := range req.Products {
		if err := p.Validate(); err != nil {
			invalid = append(invalid, domain.BulkError{Index: i, Errors: err.Error()})
			continue
		}
		valid = append(valid, p.ToProduct())
		indexes = append(indexes, i)
	}

	result := h.svc.BulkCreateProducts(ctx.Request.Context(), valid, currentUserID(ctx))
	for i := range result.Errors {
		result.Errors[i].Index = indexes[result.Errors[i].Index]
	}
	result.Errors = append(result.Errors, invalid...)
	slices.SortFunc(result.Errors, func(a, b domain.BulkError) int {
		return cmp.Compare(a.Index, b.Index)
	})
	result.TotalErrors = len(result.Errors)

	status := http.StatusCreated
	if result.TotalCreated == 0 {
		status = http.StatusBadRequest
	}

	ctx.JSON(status, result)
}

// HandleProductStatistics godoc
// @Summary      Catalogue statistics
// @Tags         products
// @Produce      json
// @Success      200      {object}   domain.ProductStatistics
// @Failure      500      {object}   response.Err
// @Router       /products/statistics [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleProductStatistics(ctx *gin.Context) {
	stats, err := h.svc.Statistics(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleProductStatistics -> h.svc.Statistics -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// HandleStockCard godoc
// @Summary      Stock movements of a product
// @Tags         products
// @Produce      json
// @Param        productID   path      int  true  "product ID"
// @Success      200      {array}    domain.InventoryRecord
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/stock-card [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleStockCard(ctx *gin.Context) {
	id, ok := paramID(ctx, "productID")
	if !ok {
		return
	}

	records, err := h.svc.StockCard(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleStockCard -> h.svc.StockCard", id, err)
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// HandleSearchProducts godoc
// @Summary      Search products in stock for billing
// @Description  Matches name, model or type. Terms shorter than 2 characters return an empty list.
// @Tags         bills
// @Produce      json
// @Param        q   query     string  true  "search term"
// @Success      200      {array}    domain.Product
// @Failure      500      {object}   response.Err
// @Router       /bills/search-products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleSearchProducts(ctx *gin.Context) {
	products, err := h.svc.SearchInStock(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("v1.HandleSearchProducts -> h.svc.SearchInStock -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleProductByBarcode godoc
// @Summary      Find a product in stock by barcode
// @Tags         bills
// @Produce      json
// @Param        barcode   path      string  true  "barcode"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/products/barcode/{barcode} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleProductByBarcode(ctx *gin.Context) {
	barcode := ctx.Param("barcode")

	product, err := h.svc.FindForSale(ctx.Request.Context(), barcode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "barcode", barcode))
		case errors.Is(err, service.ErrOutOfStock):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrOutOfStock))
		default:
			err = fmt.Errorf("v1.HandleProductByBarcode -> h.svc.FindForSale -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, product)
}

func (h *ProductHandler) renderErr(ctx *gin.Context, op string, id uint, err error) {
	if renderStockErr(ctx, err) {
		return
	}
	if errors.Is(err, service.ErrProductNotFound) {
		response.RenderErr(ctx, response.ErrNotFound("product", "ID", id))
		return
	}
	if target := matchErr(err,
		service.ErrProductBarcodeExists,
		service.ErrProductInUse,
	); target != nil {
		response.RenderErr(ctx, response.ErrBadRequest(target))
		return
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
}
