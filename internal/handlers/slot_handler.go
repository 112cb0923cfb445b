package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

type SlotHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewSlotHandler(db *gorm.DB, loc *time.Location) *SlotHandler {
	return &SlotHandler{db: db, loc: loc}
}

// --------- Templates ---------

type SlotTemplateRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	MaxPoints int    `json:"max_points" binding:"required,min=0"`
	Active    *bool  `json:"active"`
}

func validHM(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (h *SlotHandler) ListTemplates(c *gin.Context) {
	var templates []models.SlotTemplate
	if err := h.db.
		Order("day_of_week ASC, start_time ASC").
		Find(&templates).Error; err != nil {
		httperr.Internal(c, "failed_to_list_templates", "Could not list slot templates.")
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *SlotHandler) CreateTemplate(c *gin.Context) {
	var req SlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !validHM(req.StartTime) || !validHM(req.EndTime) || req.EndTime <= req.StartTime {
		httperr.BadRequest(c, "invalid_window", "start_time/end_time must be HH:MM with start before end")
		return
	}

	tpl := models.SlotTemplate{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		MaxPoints: req.MaxPoints,
		Active:    req.Active == nil || *req.Active,
	}
	if err := h.db.Create(&tpl).Error; err != nil {
		httperr.BadRequest(c, "template_exists", "A template for this window already exists.")
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *SlotHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var tpl models.SlotTemplate
	if err := h.db.First(&tpl, id).Error; err != nil {
		httperr.NotFound(c, "template_not_found", "Slot template not found.")
		return
	}

	var req SlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !validHM(req.StartTime) || !validHM(req.EndTime) || req.EndTime <= req.StartTime {
		httperr.BadRequest(c, "invalid_window", "start_time/end_time must be HH:MM with start before end")
		return
	}

	tpl.DayOfWeek = *req.DayOfWeek
	tpl.StartTime = req.StartTime
	tpl.EndTime = req.EndTime
	tpl.MaxPoints = req.MaxPoints
	if req.Active != nil {
		tpl.Active = *req.Active
	}
	if err := h.db.Save(&tpl).Error; err != nil {
		httperr.Internal(c, "failed_to_update_template", "Could not update slot template.")
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *SlotHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&models.SlotTemplate{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_template", "Could not delete slot template.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --------- Overrides ---------

type SlotOverrideRequest struct {
	Date    string `json:"date" binding:"required"`
	DateEnd string `json:"date_end"`

	// Empty start_time makes the override apply to every window that day.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	MaxPoints *int   `json:"max_points" binding:"required,min=0"`
	Reason    string `json:"reason"`
}

func (h *SlotHandler) ListOverrides(c *gin.Context) {
	q := h.db.Order("date ASC")
	if from := c.Query("from"); from != "" {
		date, err := time.ParseInLocation("2006-01-02", from, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "from: expected YYYY-MM-DD")
			return
		}
		q = q.Where("date >= ? OR date_end >= ?", date, date)
	}

	var overrides []models.SlotOverride
	if err := q.Find(&overrides).Error; err != nil {
		httperr.Internal(c, "failed_to_list_overrides", "Could not list overrides.")
		return
	}
	c.JSON(http.StatusOK, overrides)
}

func (h *SlotHandler) CreateOverride(c *gin.Context) {
	var req SlotOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date: expected YYYY-MM-DD")
		return
	}

	ov := models.SlotOverride{
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		MaxPoints: *req.MaxPoints,
		Reason:    req.Reason,
	}
	if req.DateEnd != "" {
		end, err := time.ParseInLocation("2006-01-02", req.DateEnd, h.loc)
		if err != nil || end.Before(date) {
			httperr.BadRequest(c, "invalid_date", "date_end must be on or after date")
			return
		}
		ov.DateEnd = &end
	}
	if req.StartTime != "" && (!validHM(req.StartTime) || !validHM(req.EndTime)) {
		httperr.BadRequest(c, "invalid_window", "start_time/end_time must be HH:MM")
		return
	}

	if err := h.db.Create(&ov).Error; err != nil {
		httperr.Internal(c, "failed_to_create_override", "Could not create override.")
		return
	}
	c.JSON(http.StatusCreated, ov)
}

func (h *SlotHandler) DeleteOverride(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&models.SlotOverride{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_override", "Could not delete override.")
		return
	}
	c.Status(http.StatusNoContent)
}
