package handler

import (
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	pageSize        int
	maxPageSize     int
}

func NewCustomerHandler(customerService *service.CustomerService, pageSize, maxPageSize int) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		pageSize:        pageSize,
		maxPageSize:     maxPageSize,
	}
}

// List returns one page of customers with absolute next/previous links.
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListCustomers")

	params, ok := constants.ParsePaginationParams(c, h.pageSize, h.maxPageSize)
	if !ok {
		respondError(ctx, c, apperrors.ErrInvalidPage)
		return
	}

	values := c.Request.URL.Query()
	filter, err := service.ParseCustomerFilter(values)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	results, total, err := h.customerService.List(ctx, dto.CustomerListQuery{
		Filter: filter,
		Order:  service.ParseCustomerOrder(values),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	if params.Page > params.TotalPages(total) {
		logger.DebugWithContext(ctx, "Page out of range").
			Int("page", params.Page).
			Int64("count", total).
			Log()
		respondError(ctx, c, apperrors.ErrInvalidPage)
		return
	}

	next, previous := constants.PageLinks(c, params, total)
	c.JSON(http.StatusOK, constants.BuildListResponse(total, next, previous, results))
}

func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CreateCustomer")

	var req dto.CreateCustomerRequest
	if err := bindBody(c, &req); err != nil {
		respondError(ctx, c, err)
		return
	}

	response, err := h.customerService.Create(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Customer created").
		Uint("customer_id", response.ID).
		Log()

	c.JSON(http.StatusCreated, response)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetCustomer")

	id, err := pathID(c)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	response, err := h.customerService.Get(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Update serves both PUT and PATCH; absent fields are left unchanged.
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdateCustomer")

	id, err := pathID(c)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	var req dto.UpdateCustomerRequest
	if err := bindBody(c, &req); err != nil {
		respondError(ctx, c, err)
		return
	}

	response, err := h.customerService.Update(ctx, id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Customer updated").
		Uint("customer_id", id).
		String("method", c.Request.Method).
		Log()

	c.JSON(http.StatusOK, response)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "DeleteCustomer")

	id, err := pathID(c)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	if err := h.customerService.Delete(ctx, id); err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Customer deleted").
		Uint("customer_id", id).
		Log()

	c.Status(http.StatusNoContent)
}
