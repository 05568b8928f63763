package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenmart/internal/domain"
	"greenmart/internal/services"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bindBody(c, &req) {
		return
	}
	res, err := h.orders.CreateOrder(c.Request.Context(), currentUser(c).ID, services.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order created successfully", res)
}

func (h *Handler) MyOrders(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, orders)
}

func (h *Handler) AllOrders(c *gin.Context) {
	var q ListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.orders.ListAll(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, page)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order cancelled successfully", order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req OrderStatusRequest
	if !bindBody(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order status updated", order)
}

func (h *Handler) AddTracking(c *gin.Context) {
	var req TrackingRequest
	if !bindBody(c, &req) {
		return
	}
	order, err := h.orders.AddTracking(c.Request.Context(), c.Param("id"), services.TrackingInput{
		Status:            req.Status,
		Location:          req.Location,
		Description:       req.Description,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Tracking update added", order)
}
