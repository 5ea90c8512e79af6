package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	orderService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(orderService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/purchase-orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/stats", h.GetOrderStats)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

func parseOrderFilter(c *gin.Context) service.PurchaseOrderFilter {
	params := pagination.Parse(c)
	return service.PurchaseOrderFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
}

// ListOrders returns paginated purchase orders with search/filter/sort
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        search      query     string  false  "Substring match on PO number, vendor name, customer SO"
// @Param        status      query     string  false  "Exact status filter"
// @Param        date_from   query     string  false  "Inclusive lower bound on order date (YYYY-MM-DD)"
// @Param        date_to     query     string  false  "Inclusive upper bound on order date (YYYY-MM-DD)"
// @Param        sort_by     query     string  false  "Sort field: po_number, vendor_name, order_date, total_amount, status, created_at"
// @Param        sort_order  query     string  false  "Sort direction: asc, desc"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) ListOrders(c *gin.Context) {
	filter := parseOrderFilter(c)

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, orders, filter.Page, filter.Limit, total))
}

// GetOrderStats returns aggregate statistics over the filtered order set
// @Summary      Purchase order statistics
// @Tags         purchase-orders
// @Produce      json
// @Param        search     query  string  false  "Substring match on PO number, vendor name, customer SO"
// @Param        status     query  string  false  "Exact status filter"
// @Param        date_from  query  string  false  "Inclusive lower bound on order date (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Inclusive upper bound on order date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/stats [get]
func (h *PurchaseOrderHandler) GetOrderStats(c *gin.Context) {
	filter := parseOrderFilter(c)

	stats, err := h.orderService.GetOrderStats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetOrder returns a single purchase order including line items
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateOrder creates a purchase order with its line items
// @Summary      Create purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreatePurchaseOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// UpdateOrder updates header fields and reconciles line items
// @Summary      Update purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id       path  string                              true  "Order ID"
// @Param        payload  body  service.UpdatePurchaseOrderRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/purchase-orders/{id} [patch]
func (h *PurchaseOrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder deletes a purchase order and cascades to its line items
// @Summary      Delete purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Purchase order deleted successfully"}))
}
