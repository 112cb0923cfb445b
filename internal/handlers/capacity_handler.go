package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dockwise/scheduler/internal/capacity"
	"github.com/dockwise/scheduler/internal/datelock"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/timezone"
)

type CapacityHandler struct {
	resolver *capacity.Resolver
	adjuster *capacity.QuickAdjuster
	locker   datelock.Locker
	loc      *time.Location
}

func NewCapacityHandler(
	resolver *capacity.Resolver,
	adjuster *capacity.QuickAdjuster,
	locker datelock.Locker,
	loc *time.Location,
) *CapacityHandler {
	return &CapacityHandler{
		resolver: resolver,
		adjuster: adjuster,
		locker:   locker,
		loc:      loc,
	}
}

func (h *CapacityHandler) parseDate(c *gin.Context, param string) (time.Time, bool) {
	raw := c.Param(param)
	if raw == "" {
		raw = c.DefaultQuery(param, time.Now().In(h.loc).Format("2006-01-02"))
	}
	date, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// Day returns the effective slots of one date with current usage.
func (h *CapacityHandler) Day(c *gin.Context) {
	date, ok := h.parseDate(c, "date")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	slots, err := h.resolver.SlotsForDate(ctx, date)
	if err != nil {
		respondError(c, err)
		return
	}

	usages := make([]capacity.SlotUsage, 0, len(slots))
	for _, slot := range slots {
		usage, err := h.resolver.Usage(ctx, date, slot, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		usages = append(usages, usage)
	}

	level, err := h.adjuster.Current(ctx, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         timezone.DateStr(date, h.loc),
		"day_of_week":  int(timezone.Midnight(date, h.loc).Weekday()),
		"quick_adjust": level,
		"slots":        usages,
	})
}

func (h *CapacityHandler) Week(c *gin.Context) {
	date, ok := h.parseDate(c, "date")
	if !ok {
		return
	}

	week, err := h.resolver.Week(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// Resolve reports effective capacity for a single window.
func (h *CapacityHandler) Resolve(c *gin.Context) {
	date, ok := h.parseDate(c, "date")
	if !ok {
		return
	}
	startTime := c.Query("start_time")
	if startTime == "" {
		httperr.BadRequest(c, "missing_start_time", "start_time is required")
		return
	}

	usage, err := h.resolver.Resolve(c.Request.Context(), date, startTime, c.Query("end_time"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

type QuickAdjustRequest struct {
	Date  string `json:"date" binding:"required"`
	Level string `json:"level" binding:"required"`
}

func (h *CapacityHandler) QuickAdjust(c *gin.Context) {
	var req QuickAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "expected YYYY-MM-DD")
		return
	}
	level, ok := capacity.ParseLevel(req.Level)
	if !ok {
		httperr.BadRequest(c, "invalid_level", "unknown adjustment level")
		return
	}

	ctx := c.Request.Context()
	var adj *capacity.Adjustment
	err = h.locker.WithLock(ctx, req.Date, func() error {
		var lockErr error
		adj, lockErr = h.adjuster.Apply(ctx, date, level)
		return lockErr
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adj)
}

// Utilization aggregates booked versus available points per day over a
// week, for the planning dashboard.
func (h *CapacityHandler) Utilization(c *gin.Context) {
	date, ok := h.parseDate(c, "date")
	if !ok {
		return
	}

	week, err := h.resolver.Week(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}

	type dayUtilization struct {
		Date        string  `json:"date"`
		MaxPoints   int     `json:"max_points"`
		UsedPoints  int     `json:"used_points"`
		Utilization float64 `json:"utilization"`
	}

	out := make([]dayUtilization, 0, len(week))
	for _, day := range week {
		var maxPts, used int
		for _, slot := range day.Slots {
			maxPts += slot.MaxPoints
			used += slot.UsedPoints
		}
		u := dayUtilization{Date: day.Date, MaxPoints: maxPts, UsedPoints: used}
		if maxPts > 0 {
			u.Utilization = float64(used) / float64(maxPts)
		}
		out = append(out, u)
	}
	c.JSON(http.StatusOK, out)
}
