package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

type DockHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewDockHandler(db *gorm.DB, loc *time.Location) *DockHandler {
	return &DockHandler{db: db, loc: loc}
}

// --------- Docks ---------

type DockRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
	Active    *bool  `json:"active"`
}

func (h *DockHandler) List(c *gin.Context) {
	var docks []models.Dock
	if err := h.db.Order("sort_order ASC, code ASC").Find(&docks).Error; err != nil {
		httperr.Internal(c, "failed_to_list_docks", "Could not list docks.")
		return
	}
	c.JSON(http.StatusOK, docks)
}

func (h *DockHandler) Create(c *gin.Context) {
	var req DockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	dock := models.Dock{
		Code:      req.Code,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Active:    req.Active == nil || *req.Active,
	}
	if err := h.db.Create(&dock).Error; err != nil {
		httperr.BadRequest(c, "dock_code_exists", "A dock with this code already exists.")
		return
	}
	c.JSON(http.StatusCreated, dock)
}

func (h *DockHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dock models.Dock
	if err := h.db.First(&dock, id).Error; err != nil {
		httperr.NotFound(c, "dock_not_found", "Dock not found.")
		return
	}

	var req DockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	dock.Code = req.Code
	dock.Name = req.Name
	dock.SortOrder = req.SortOrder
	if req.Active != nil {
		dock.Active = *req.Active
	}
	if err := h.db.Save(&dock).Error; err != nil {
		httperr.Internal(c, "failed_to_update_dock", "Could not update dock.")
		return
	}
	c.JSON(http.StatusOK, dock)
}

// --------- Per-template availability ---------

type DockAvailabilityRequest struct {
	SlotTemplateID uint `json:"slot_template_id" binding:"required"`
	IsActive       bool `json:"is_active"`
}

func (h *DockHandler) SetAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DockAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	row := models.DockAvailability{
		DockID:         id,
		SlotTemplateID: req.SlotTemplateID,
		IsActive:       req.IsActive,
	}
	err := h.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dock_id"}, {Name: "slot_template_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		httperr.Internal(c, "failed_to_set_availability", "Could not set dock availability.")
		return
	}
	c.JSON(http.StatusOK, row)
}

// --------- Date overrides ---------

type DockOverrideRequest struct {
	Date     string `json:"date" binding:"required"`
	DateEnd  string `json:"date_end"`
	IsActive bool   `json:"is_active"`
	Reason   string `json:"reason"`
}

func (h *DockHandler) CreateOverride(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DockOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date: expected YYYY-MM-DD")
		return
	}

	ov := models.DockOverride{
		DockID:   id,
		Date:     date,
		IsActive: req.IsActive,
		Reason:   req.Reason,
	}
	if req.DateEnd != "" {
		end, err := time.ParseInLocation("2006-01-02", req.DateEnd, h.loc)
		if err != nil || end.Before(date) {
			httperr.BadRequest(c, "invalid_date", "date_end must be on or after date")
			return
		}
		ov.DateEnd = &end
	}

	if err := h.db.Create(&ov).Error; err != nil {
		httperr.Internal(c, "failed_to_create_override", "Could not create dock override.")
		return
	}
	c.JSON(http.StatusCreated, ov)
}

func (h *DockHandler) DeleteOverride(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&models.DockOverride{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_override", "Could not delete dock override.")
		return
	}
	c.Status(http.StatusNoContent)
}
