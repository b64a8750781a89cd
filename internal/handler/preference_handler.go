package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"devisflow/internal/domain"
	"devisflow/internal/middleware"
	"devisflow/internal/port"
)

// PreferenceHandler reads and saves the caller's preferences.
type PreferenceHandler struct {
	store port.PreferenceStore
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(store port.PreferenceStore) *PreferenceHandler {
	return &PreferenceHandler{store: store}
}

// Get handles GET /api/v1/preferences. Users who never saved any get the
// defaults.
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.store.Get(c.Request.Context(), middleware.GetUserID(c))
	if errors.Is(err, domain.ErrNotFound) {
		RespondOK(c, domain.DefaultPreferences())
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, prefs)
}

// Put handles PUT /api/v1/preferences
func (h *PreferenceHandler) Put(c *gin.Context) {
	var prefs domain.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.store.Save(c.Request.Context(), middleware.GetUserID(c), prefs); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, prefs)
}
