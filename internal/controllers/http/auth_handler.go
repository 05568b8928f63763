package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenmart/internal/services"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.setAuthCookies(c, res)
	ok(c, http.StatusCreated, "User registered successfully", AuthResponse{User: res.User, AccessToken: res.AccessToken})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setAuthCookies(c, res)
	ok(c, http.StatusOK, "Login successful", AuthResponse{User: res.User, AccessToken: res.AccessToken})
}

// Refresh reads the refresh token from its cookie, falling back to the body.
func (h *Handler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	access, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setCookie(c, accessCookie, access, h.tokens.AccessTTL())
	ok(c, http.StatusOK, "", gin.H{"accessToken": access})
}

func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, accessCookie, "", -time.Second)
	h.setCookie(c, refreshCookie, "", -time.Second)
	ok(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"user": user})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func (h *Handler) setAuthCookies(c *gin.Context, res *services.AuthResult) {
	h.setCookie(c, accessCookie, res.AccessToken, h.tokens.AccessTTL())
	h.setCookie(c, refreshCookie, res.RefreshToken, h.tokens.RefreshTTL())
}

// setCookie writes an httpOnly cookie; a negative ttl deletes it.
func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}
