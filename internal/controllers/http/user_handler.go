package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenmart/internal/services"
)

func (h *Handler) ListUsers(c *gin.Context) {
	var q ListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.users.List(c.Request.Context(), q.Search, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, page)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("id"), services.UserUpdate{
		IsActive: req.IsActive,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser deactivates the account.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User deactivated successfully", nil)
}
