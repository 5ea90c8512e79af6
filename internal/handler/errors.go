package handler

import (
	"errors"
	"net/http"

	"backend/internal/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service error kinds to HTTP status codes:
// NotFound -> 404, Conflict -> 409, Validation -> 400, anything else -> 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	}
	c.JSON(status, response.Error(status, err.Error()))
}
