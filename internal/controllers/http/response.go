package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/domain"
	"greenmart/internal/services"
)

// ok writes the success envelope. Empty message and nil data are left out.
func ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func list[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func paged[T any](c *gin.Context, p *services.Page[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"total":   p.Total,
		"page":    p.Page,
		"pages":   p.Pages(),
		"data":    items,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// respondError maps an error kind to its status code. Anything without a
// kind is an internal failure and is logged.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	default:
		_ = c.Error(err)
		zlog.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

// bindError turns a binding failure into a readable 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, "Please provide a valid email")
		case "min", "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	fail(c, http.StatusBadRequest, strings.Join(msgs, ", "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// bindBody binds a JSON body whose fields the service validates itself; an
// empty body binds to zero values. It reports false after writing a 400.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters. A value of the wrong type, such as
// page=abc, is a 400 rather than a silent default.
func bindQuery(c *gin.Context, dst any) bool {
	err := c.ShouldBindQuery(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		bindError(c, err)
	} else {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
	}
	return false
}
