package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
	_ "devisflow/internal/gateway/all"
	"devisflow/internal/handler"
)

func TestProviderHandler_List(t *testing.T) {
	gw, err := gateway.New(&config.LLMConfig{
		OpenRouter: config.LLMProviderConfig{Enabled: true},
	})
	require.NoError(t, err)
	h := handler.NewProviderHandler(gw)

	c, w := newContext(http.MethodGet, "/api/v1/providers", nil, "", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var specs []gateway.Spec
	decode(t, w, &specs)
	require.Len(t, specs, 2)
	assert.Equal(t, domain.ProviderOpenRouter, specs[0].ID)
	assert.True(t, specs[0].RequiresKey)
	assert.Equal(t, domain.ProviderLocal, specs[1].ID)
	assert.False(t, specs[1].RequiresKey)
}
