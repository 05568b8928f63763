package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"greenmart/internal/domain"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	userKey = "user"
)

// requireAuth resolves the access token from the cookie or the bearer
// header and stores the user on the context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}
		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, http.StatusUnauthorized, "Not authorized")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(accessCookie); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
