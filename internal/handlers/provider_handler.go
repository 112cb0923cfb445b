package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

type ProviderHandler struct {
	db *gorm.DB
}

func NewProviderHandler(db *gorm.DB) *ProviderHandler {
	return &ProviderHandler{db: db}
}

type ProviderRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Profile string `json:"profile"`
	Active  *bool  `json:"active"`
}

func (h *ProviderHandler) List(c *gin.Context) {
	q := h.db.Order("name ASC")
	if c.Query("search") != "" {
		q = q.Where("name ILIKE ?", "%"+c.Query("search")+"%")
	}

	var providers []models.Provider
	if err := q.Find(&providers).Error; err != nil {
		httperr.Internal(c, "failed_to_list_providers", "Could not list providers.")
		return
	}
	c.JSON(http.StatusOK, providers)
}

func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var provider models.Provider
	if err := h.db.First(&provider, id).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Provider not found.")
		return
	}
	c.JSON(http.StatusOK, provider)
}

func (h *ProviderHandler) Create(c *gin.Context) {
	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	provider := models.Provider{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Profile: req.Profile,
		Active:  req.Active == nil || *req.Active,
	}
	if err := h.db.Create(&provider).Error; err != nil {
		httperr.Internal(c, "failed_to_create_provider", "Could not create provider.")
		return
	}
	c.JSON(http.StatusCreated, provider)
}

func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var provider models.Provider
	if err := h.db.First(&provider, id).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Provider not found.")
		return
	}

	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	provider.Name = req.Name
	provider.Email = req.Email
	provider.Phone = req.Phone
	provider.Profile = req.Profile
	if req.Active != nil {
		provider.Active = *req.Active
	}
	if err := h.db.Save(&provider).Error; err != nil {
		httperr.Internal(c, "failed_to_update_provider", "Could not update provider.")
		return
	}
	c.JSON(http.StatusOK, provider)
}
