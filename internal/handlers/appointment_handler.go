package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/middleware"
	"github.com/dockwise/scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book       *booking.Book
	reschedule *booking.Reschedule
	cancel     *booking.Cancel
	reactivate *booking.Reactivate
	gate       *booking.GateActions
	suggest    *booking.Suggest

	repo domain.Repository
	loc  *time.Location
}

func NewAppointmentHandler(
	book *booking.Book,
	reschedule *booking.Reschedule,
	cancel *booking.Cancel,
	reactivate *booking.Reactivate,
	gate *booking.GateActions,
	suggest *booking.Suggest,
	repo domain.Repository,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:       book,
		reschedule: reschedule,
		cancel:     cancel,
		reactivate: reactivate,
		gate:       gate,
		suggest:    suggest,
		repo:       repo,
		loc:        loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookAppointmentRequest struct {
	ProviderID   *uint  `json:"provider_id"`
	ProviderName string `json:"provider_name" binding:"required"`

	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`

	GoodsType          string `json:"goods_type"`
	Units              *int   `json:"units"`
	Lines              *int   `json:"lines"`
	DeliveryNotesCount *int   `json:"delivery_notes_count"`

	WorkMinutesNeeded *int `json:"work_minutes_needed"`
	ForkliftsNeeded   int  `json:"forklifts_needed"`
}

type RescheduleRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type CheckOutRequest struct {
	ActualUnits *int `json:"actual_units"`
}

// ======================================================
// HANDLERS
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	actorID := actor(c)
	result, err := h.book.Execute(c.Request.Context(), booking.BookInput{
		ProviderID:         req.ProviderID,
		ProviderName:       req.ProviderName,
		Date:               req.Date,
		StartTime:          req.StartTime,
		GoodsType:          req.GoodsType,
		Units:              req.Units,
		Lines:              req.Lines,
		DeliveryNotesCount: req.DeliveryNotesCount,
		WorkMinutesNeeded:  req.WorkMinutesNeeded,
		ForkliftsNeeded:    req.ForkliftsNeeded,
		ActorID:            actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": result.Appointment,
		"warnings":    result.Warnings,
	})
}

func (h *AppointmentHandler) List(c *gin.Context) {
	fromStr := c.DefaultQuery("from", time.Now().In(h.loc).Format("2006-01-02"))
	from, err := time.ParseInLocation("2006-01-02", fromStr, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "from: expected YYYY-MM-DD")
		return
	}

	to := from.AddDate(0, 0, 1)
	if toStr := c.Query("to"); toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", toStr, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "to: expected YYYY-MM-DD")
			return
		}
		to = to.AddDate(0, 0, 1)
	}

	var providerID *uint
	if p := c.Query("provider_id"); p != "" {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			httperr.BadRequest(c, "invalid_provider", "provider_id must be numeric")
			return
		}
		id := uint(n)
		providerID = &id
	}

	aps, err := h.repo.ListAppointments(c.Request.Context(), from.UTC(), to.UTC(), providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, aps)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ap, err := h.repo.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), booking.RescheduleInput{
		AppointmentID: id,
		Date:          req.Date,
		StartTime:     req.StartTime,
		ActorID:       actor(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), id, req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Reactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ap, err := h.reactivate.Execute(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	by := c.GetString(middleware.ContextUserEmail)

	ap, err := h.gate.CheckIn(c.Request.Context(), id, by, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) CheckOut(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CheckOutRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.gate.CheckOut(c.Request.Context(), id, req.ActualUnits, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) UndoCheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ap, err := h.gate.UndoCheckIn(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

// Confirm is the public token endpoint linked from provider emails.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	token := c.Param("token")
	ap, err := h.gate.Confirm(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Suggest(c *gin.Context) {
	points, err := strconv.Atoi(c.DefaultQuery("points", "1"))
	if err != nil {
		httperr.BadRequest(c, "invalid_points", "points must be numeric")
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	suggestions, err := h.suggest.Execute(c.Request.Context(), booking.SuggestInput{
		FromDate: c.DefaultQuery("from", time.Now().In(h.loc).Format("2006-01-02")),
		Days:     days,
		Points:   points,
		Size:     domain.Size(c.Query("size")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// ======================================================
// HELPERS
// ======================================================

func pathID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "id must be numeric")
		return 0, false
	}
	return uint(n), true
}

func actor(c *gin.Context) *uint {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
