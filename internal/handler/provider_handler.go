package handler

import (
	"github.com/gin-gonic/gin"

	"devisflow/internal/gateway"
)

// ProviderLister lists the backends the gateway can dispatch to.
type ProviderLister interface {
	Providers() []gateway.Spec
}

// ProviderHandler lists the available LLM backends.
type ProviderHandler struct {
	providers ProviderLister
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(providers ProviderLister) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// List handles GET /api/v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	RespondOK(c, h.providers.Providers())
}
