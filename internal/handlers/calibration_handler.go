package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/middleware"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/usecase/calibration"
)

type CalibrationHandler struct {
	db        *gorm.DB
	calculate *calibration.Calculate
	apply     *calibration.Apply
	coeffs    estimator.Source
}

func NewCalibrationHandler(
	db *gorm.DB,
	calculate *calibration.Calculate,
	apply *calibration.Apply,
	coeffs estimator.Source,
) *CalibrationHandler {
	return &CalibrationHandler{
		db:        db,
		calculate: calculate,
		apply:     apply,
		coeffs:    coeffs,
	}
}

type CalculateRequest struct {
	Category string `json:"category" binding:"required"`
}

func (h *CalibrationHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	result, err := h.calculate.Execute(c.Request.Context(), req.Category, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *CalibrationHandler) Apply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	appliedBy := c.GetString(middleware.ContextUserEmail)

	rec, err := h.apply.Execute(c.Request.Context(), id, appliedBy, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *CalibrationHandler) List(c *gin.Context) {
	q := h.db.Order("created_at DESC").Limit(100)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", estimator.NormalizeCategory(category))
	}

	var records []models.CalibrationRecord
	if err := q.Find(&records).Error; err != nil {
		httperr.Internal(c, "failed_to_list_records", "Could not list calibration records.")
		return
	}
	c.JSON(http.StatusOK, records)
}

// Coefficients reports the live coefficient set per category, seed
// defaults included for categories never calibrated.
func (h *CalibrationHandler) Coefficients(c *gin.Context) {
	ctx := c.Request.Context()

	type entry struct {
		Category string  `json:"category"`
		TD       float64 `json:"td"`
		TA       float64 `json:"ta"`
		TL       float64 `json:"tl"`
		TU       float64 `json:"tu"`
	}

	out := make([]entry, 0)
	for _, category := range estimator.Categories() {
		coeffs, _, err := h.coeffs.Current(ctx, category)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, entry{
			Category: category,
			TD:       coeffs.TD, TA: coeffs.TA, TL: coeffs.TL, TU: coeffs.TU,
		})
	}
	c.JSON(http.StatusOK, out)
}
