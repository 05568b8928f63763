package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCart(c *gin.Context) {
	summary, err := h.carts.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", summary)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if !bindBody(c, &req) {
		return
	}
	summary, err := h.carts.AddItem(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Item added to cart", summary)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req CartQuantityRequest
	if !bindBody(c, &req) {
		return
	}
	summary, err := h.carts.UpdateItem(c.Request.Context(), currentUser(c).ID, c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart updated", summary)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	summary, err := h.carts.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Item removed from cart", summary)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart cleared", nil)
}

func (h *Handler) GetWishlist(c *gin.Context) {
	view, err := h.wishlists.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", view)
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	view, err := h.wishlists.Add(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Added to wishlist", view)
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	view, err := h.wishlists.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Removed from wishlist", view)
}
