package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dockwise/scheduler/internal/httperr"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w
}

func TestRespondError_Timeout(t *testing.T) {
	w := respond(&httperr.TimeoutError{Op: "date lock 2030-05-06"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRespondError_DeadlineExceeded(t *testing.T) {
	// A deadline that escaped untranslated must still surface as busy,
	// not as an internal error.
	w := respond(fmt.Errorf("query failed: %w", context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "busy")
}

func TestRespondError_CapacityConflict(t *testing.T) {
	w := respond(&httperr.CapacityConflictError{
		SlotDate:      "2030-05-06",
		SlotStartTime: "08:00",
		MaxPoints:     6,
		PointsUsed:    6,
		PointsNeeded:  1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "slot_capacity_exceeded")
}

func TestRespondError_BusinessCodes(t *testing.T) {
	w := respond(httperr.ErrBusiness("appointment_not_found"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = respond(httperr.ErrBusiness("insufficient_lead_time"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError_InvalidStateTransition(t *testing.T) {
	w := respond(&httperr.InvalidStateTransitionError{From: "completed", To: "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRespondError_Unknown(t *testing.T) {
	w := respond(fmt.Errorf("wire tripped"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
