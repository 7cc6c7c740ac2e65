package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/request"
	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

const dateLayout = "2006-01-02"

type BillingService interface {
	CreateBill(ctx context.Context, req domain.NewBill) (domain.Bill, error)
	ListBills(ctx context.Context, filter domain.BillFilter, page domain.PageRequest) (domain.Page[domain.Bill], error)
	GetBill(ctx context.Context, id uint) (domain.Bill, error)
	GetBillByNumber(ctx context.Context, number string) (domain.Bill, error)
	UpdatePayment(ctx context.Context, id uint, update domain.PaymentUpdate) (domain.Bill, error)
	CancelBill(ctx context.Context, id uint, cancelledBy *uint) (domain.Bill, error)
	BillsWithPendingItems(ctx context.Context) ([]domain.Bill, error)
	PendingItems(ctx context.Context, billID uint) (domain.Bill, []domain.BillItem, error)
	CompleteItem(ctx context.Context, billID, itemID uint) (domain.BillItem, error)
	CompleteAll(ctx context.Context, billID uint) (int, error)
	VoidItem(ctx context.Context, billID, itemID uint, voidedBy *uint) (domain.Bill, error)
	Statistics(ctx context.Context) (domain.BillStatistics, error)
}

type BillHandler struct {
	svc BillingService
}

func NewBillHandler(svc BillingService) *BillHandler {
	return &BillHandler{
		svc: svc,
	}
}

// HandleCreateBill godoc
// @Summary      Create a bill
// @Description  Takes the items out of stock and records the opening payment.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request   body      request.BillCreate true "request body"
// @Success      201      {object}   domain.Bill
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills [post]
// @Security     BearerAuth
func (h *BillHandler) HandleCreateBill(ctx *gin.Context) {
	var req request.BillCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bill, err := h.svc.CreateBill(ctx.Request.Context(), req.ToNewBill(currentUserID(ctx)))
	if err != nil {
		h.renderErr(ctx, "v1.HandleCreateBill -> h.svc.CreateBill", 0, err)
		return
	}

	ctx.JSON(http.StatusCreated, bill)
}

// HandleListBills godoc
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Param        start_date      query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        end_date        query     string  false  "RFC3339 or YYYY-MM-DD, a date covers the whole day"
// @Param        customer        query     string  false  "customer name contains"
// @Param        payment_method  query     string  false  "cash, card, upi or credit"
// @Param        payment_status  query     string  false  "paid, partial or pending"
// @Param        page            query     int     false  "page, starting at 1"
// @Param        per_page        query     int     false  "page size, default 20, max 100"
// @Success      200      {object}   domain.Page[domain.Bill]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills [get]
// @Security     BearerAuth
func (h *BillHandler) HandleListBills(ctx *gin.Context) {
	filter := domain.BillFilter{
		Customer:      ctx.Query("customer"),
		PaymentMethod: ctx.Query("payment_method"),
		PaymentStatus: ctx.Query("payment_status"),
	}

	var err error
	if filter.StartDate, err = queryTime(ctx, "start_date", false); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if filter.EndDate, err = queryTime(ctx, "end_date", true); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bills, err := h.svc.ListBills(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleListBills -> h.svc.ListBills -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bills)
}

// HandleGetBill godoc
// @Summary      Get a bill with its items and payments
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Success      200      {object}   domain.Bill
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID} [get]
// @Security     BearerAuth
func (h *BillHandler) HandleGetBill(ctx *gin.Context) {
	id, ok := paramID(ctx, "billID")
	if !ok {
		return
	}

	bill, err := h.svc.GetBill(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetBill -> h.svc.GetBill", id, err)
		return
	}

	ctx.JSON(http.StatusOK, bill)
}

// HandleGetBillByNumber godoc
// @Summary      Get a bill by its number
// @Tags         bills
// @Produce      json
// @Param        number   path      string  true  "bill number"
// @Success      200      {object}   domain.Bill
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/number/{number} [get]
// @Security     BearerAuth
func (h *BillHandler) HandleGetBillByNumber(ctx *gin.Context) {
	number := ctx.Param("number")

	bill, err := h.svc.GetBillByNumber(ctx.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrBillNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("bill", "number", number))
			return
		}

		err = fmt.Errorf("v1.HandleGetBillByNumber -> h.svc.GetBillByNumber -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bill)
}

// HandleUpdatePayment godoc
// @Summary      Record a payment on a bill
// @Description  paid_amount sets the new total paid. additional_amount alone is added to it.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        billID    path      int  true  "bill ID"
// @Param        request   body      request.PaymentUpdate true "request body"
// @Success      200      {object}   domain.Bill
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/payment [put]
// @Security     BearerAuth
func (h *BillHandler) HandleUpdatePayment(ctx *gin.Context) {
	id, ok := paramID(ctx, "billID")
	if !ok {
		return
	}

	var req request.PaymentUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bill, err := h.svc.UpdatePayment(ctx.Request.Context(), id, req.ToUpdate())
	if err != nil {
		h.renderErr(ctx, "v1.HandleUpdatePayment -> h.svc.UpdatePayment", id, err)
		return
	}

	ctx.JSON(http.StatusOK, bill)
}

// HandleCancelBill godoc
// @Summary      Cancel a bill
// @Description  Items that were not completed go back into stock and payments are refunded.
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Success      200      {object}   domain.Bill
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/cancel [post]
// @Security     BearerAuth
func (h *BillHandler) HandleCancelBill(ctx *gin.Context) {
	id, ok := paramID(ctx, "billID")
	if !ok {
		return
	}

	bill, err := h.svc.CancelBill(ctx.Request.Context(), id, currentUserID(ctx))
	if err != nil {
		h.renderErr(ctx, "v1.HandleCancelBill -> h.svc.CancelBill", id, err)
		return
	}

	ctx.JSON(http.StatusOK, bill)
}

// HandleBillsWithPendingItems godoc
// @Summary      List bills that still have pending items
// @Tags         bills
// @Produce      json
// @Success      200      {array}    domain.Bill
// @Failure      500      {object}   response.Err
// @Router       /bills/pending-items [get]
// @Security     BearerAuth
func (h *BillHandler) HandleBillsWithPendingItems(ctx *gin.Context) {
	bills, err := h.svc.BillsWithPendingItems(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleBillsWithPendingItems -> h.svc.BillsWithPendingItems -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bills)
}

// HandlePendingItems godoc
// @Summary      List the pending items of a bill
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Success      200      {object}   response.PendingItemsResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/items/pending [get]
// @Security     BearerAuth
func (h *BillHandler) HandlePendingItems(ctx *gin.Context) {
	id, ok := paramID(ctx, "billID")
	if !ok {
		return
	}

	bill, items, err := h.svc.PendingItems(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandlePendingItems -> h.svc.PendingItems", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.PendingItemsResponse{
		Bill:  bill,
		Items: items,
	})
}

// HandleCompleteItem godoc
// @Summary      Mark a bill item as handed over
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Param        itemID   path      int  true  "bill item ID"
// @Success      200      {object}   domain.BillItem
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/items/{itemID}/complete [post]
// @Security     BearerAuth
func (h *BillHandler) HandleCompleteItem(ctx *gin.Context) {
	billID, ok := paramID(ctx, "billID")
	if !ok {
		return
	}
	itemID, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}

	item, err := h.svc.CompleteItem(ctx.Request.Context(), billID, itemID)
	if err != nil {
		h.renderErr(ctx, "v1.HandleCompleteItem -> h.svc.CompleteItem", billID, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleCompleteAll godoc
// @Summary      Mark every pending item of a bill as handed over
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Success      200      {object}   response.CompleteAllResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/complete-all [post]
// @Security     BearerAuth
func (h *BillHandler) HandleCompleteAll(ctx *gin.Context) {
	id, ok := paramID(ctx, "billID")
	if !ok {
		return
	}

	n, err := h.svc.CompleteAll(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleCompleteAll -> h.svc.CompleteAll", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.CompleteAllResponse{
		Message:        fmt.Sprintf("%d items completed", n),
		CompletedCount: n,
	})
}

// HandleVoidItem godoc
// @Summary      Remove an item from a bill
// @Description  Stock is restored unless the item was already handed over.
// @Tags         bills
// @Produce      json
// @Param        billID   path      int  true  "bill ID"
// @Param        itemID   path      int  true  "bill item ID"
// @Success      200      {object}   domain.Bill
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bills/{billID}/items/{itemID}/void [post]
// @Security     BearerAuth
func (h *BillHandler) HandleVoidItem(ctx *gin.Context) {
	billID, ok := paramID(ctx, "billID")
	if !ok {
		return
	}
	itemID, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}

	bill, err := h.svc.VoidItem(ctx.Request.Context(), billID, itemID, currentUserID(ctx))
	if err != nil {
		h.renderErr(ctx, "v1.HandleVoidItem -> h.svc.VoidItem", billID, err)
		return
	}

	ctx.JSON(http.StatusOK, bill)
}

// HandleBillStatistics godoc
// @Summary      Sales statistics
// @Tags         bills
// @Produce      json
// @Success      200      {object}   domain.BillStatistics
// @Failure      500      {object}   response.Err
// @Router       /bills/statistics [get]
// @Security     BearerAuth
func (h *BillHandler) HandleBillStatistics(ctx *gin.Context) {
	stats, err := h.svc.Statistics(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleBillStatistics -> h.svc.Statistics -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *BillHandler) renderErr(ctx *gin.Context, op string, id uint, err error) {
	if renderStockErr(ctx, err) {
		return
	}

	switch {
	case errors.Is(err, service.ErrBillNotFound):
		response.RenderErr(ctx, response.ErrNotFound("bill", "ID", id))
		return
	case errors.Is(err, service.ErrBillItemNotFound):
		response.RenderErr(ctx, response.ErrNotFound("bill item", "ID", ctx.Param("itemID")))
		return
	}

	if target := matchErr(err,
		service.ErrEmptyBill,
		service.ErrItemNotInBill,
		service.ErrItemNotPending,
		service.ErrNoPendingItems,
		service.ErrBillCancelled,
		service.ErrBillAlreadyCancelled,
		service.ErrNoPaymentAmount,
		service.ErrNegativeAmount,
		service.ErrInvalidQuantity,
	); target != nil {
		response.RenderErr(ctx, response.ErrBadRequest(target))
		return
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
}

// queryTime parses an RFC3339 timestamp or a YYYY-MM-DD date. A date used
// as an upper bound covers the whole day.
func queryTime(ctx *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected RFC3339 or %s", name, raw, dateLayout)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}
