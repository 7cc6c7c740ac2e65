package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/api/middleware"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

// paramID parses the path parameter name as an id and renders a 400 when it
// is not a positive integer.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name))))
		return 0, false
	}

	return uint(id), true
}

// currentUserID returns the authenticated user id, or nil on public routes.
func currentUserID(ctx *gin.Context) *uint {
	id := ctx.GetUint(middleware.ContextKeyUserID)
	if id == 0 {
		return nil
	}

	return &id
}

func pageRequest(ctx *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(ctx.Query("page"))
	perPage, _ := strconv.Atoi(ctx.Query("per_page"))

	return domain.PageRequest{Page: page, PerPage: perPage}
}

// queryID parses an optional id query parameter, zero when absent.
func queryID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}

	return uint(id), nil
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(ctx *gin.Context, name string) (*decimal.Decimal, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}

	return &d, nil
}

// matchErr returns the first of targets that err wraps, so the client sees
// the sentinel text instead of the whole call chain.
func matchErr(err error, targets ...error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}

	return nil
}

// renderStockErr renders a failed stock movement and reports whether err was
// one.
func renderStockErr(ctx *gin.Context, err error) bool {
	var stockErr *service.StockError
	if !errors.As(err, &stockErr) {
		return false
	}

	if errors.Is(err, service.ErrProductNotFound) {
		response.RenderErr(ctx, response.ErrNotFound("product", "ID", stockErr.ProductID))
		return true
	}
	target := matchErr(err, service.ErrInsufficientStock, service.ErrInvalidQuantity, service.ErrInvalidMovement)
	if target == nil {
		return false
	}
	response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("product %d: %w", stockErr.ProductID, target)))

	return true
}
