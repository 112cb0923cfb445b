package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/rules"
)

type RulesHandler struct {
	store *rules.Store
}

func NewRulesHandler(store *rules.Store) *RulesHandler {
	return &RulesHandler{store: store}
}

func (h *RulesHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Current(c.Request.Context()))
}

func (h *RulesHandler) Patch(c *gin.Context) {
	var patch rules.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	updated, err := h.store.Update(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
