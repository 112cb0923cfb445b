package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dockwise/scheduler/internal/httperr"
)

// respondError maps engine errors onto HTTP responses. Typed engine
// errors carry their own payload; business codes map by convention
// (*_not_found -> 404, the rest -> 400).
func respondError(c *gin.Context, err error) {
	var (
		capErr     *httperr.CapacityConflictError
		dockErr    *httperr.NoDockAvailableError
		stateErr   *httperr.InvalidStateTransitionError
		sampleErr  *httperr.InsufficientSampleError
		validErr   *httperr.ValidationError
		timeoutErr *httperr.TimeoutError
		bizErr     httperr.BusinessError
	)

	switch {
	case errors.As(err, &capErr):
		httperr.Conflict(c, "slot_capacity_exceeded", capErr)

	case errors.As(err, &dockErr):
		httperr.Conflict(c, "no_dock_available", dockErr)

	case errors.As(err, &stateErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error_code": "invalid_state_transition",
			"conflict":   stateErr,
		})

	case errors.As(err, &sampleErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error_code": "insufficient_sample",
			"conflict":   sampleErr,
		})

	case errors.As(err, &validErr):
		httperr.BadRequest(c, "validation_error", validErr.Error())

	case errors.As(err, &timeoutErr):
		httperr.Write(c, http.StatusServiceUnavailable, "busy", timeoutErr.Error())

	case errors.Is(err, context.DeadlineExceeded):
		httperr.Write(c, http.StatusServiceUnavailable, "busy", "operation timed out")

	case errors.As(err, &bizErr):
		if strings.HasSuffix(bizErr.Code, "_not_found") {
			httperr.NotFound(c, bizErr.Code, bizErr.Code)
			return
		}
		httperr.BadRequest(c, bizErr.Code, bizErr.Code)

	default:
		httperr.Internal(c, "internal_error", "Unexpected error.")
	}
}
