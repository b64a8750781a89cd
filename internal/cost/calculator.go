// Package cost turns reported token usage into a monetary estimate.
package cost

import (
	"regexp"
	"strings"

	"devisflow/internal/domain"
)

// snapshotSuffix matches the date a provider appends to a pinned model id.
var snapshotSuffix = regexp.MustCompile(`^-\d{4}-\d{2}-\d{2}$`)

// Rates holds the price table. Model rates are per million tokens.
type Rates struct {
	Currency string               `mapstructure:"currency"`
	Models   map[string]ModelRate `mapstructure:"models"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `mapstructure:"input"`
	Output float64 `mapstructure:"output"`
}

// Calculator computes costs for LLM usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	if rates.Currency == "" {
		rates.Currency = "USD"
	}
	return &Calculator{rates: rates}
}

// Currency returns the currency of every estimate.
func (c *Calculator) Currency() string { return c.rates.Currency }

// Estimate prices usage for model. Nil usage or a model missing from the
// table yields a zero estimate.
func (c *Calculator) Estimate(usage *domain.UsageRecord, model string) domain.CostEstimate {
	est := domain.CostEstimate{Currency: c.rates.Currency}
	if usage == nil {
		return est
	}
	rate, ok := c.lookup(model)
	if !ok {
		return est
	}

	est.InputCost = (float64(usage.PromptTokens) / 1e6) * rate.Input
	est.OutputCost = (float64(usage.CompletionTokens) / 1e6) * rate.Output
	est.TotalCost = est.InputCost + est.OutputCost
	return est
}

// lookup matches model exactly, then as a dated snapshot of a table key:
// gpt-4o-mini-2024-07-18 resolves to gpt-4o-mini, gpt-4o-audio-preview
// resolves to nothing.
func (c *Calculator) lookup(model string) (ModelRate, bool) {
	if model == "" {
		return ModelRate{}, false
	}
	if rate, ok := c.rates.Models[model]; ok {
		return rate, true
	}
	for key, rate := range c.rates.Models {
		if key != "" && strings.HasPrefix(model, key) && snapshotSuffix.MatchString(model[len(key):]) {
			return rate, true
		}
	}
	return ModelRate{}, false
}

// DefaultRates returns list prices for the default model of every backend.
func DefaultRates() Rates {
	return Rates{
		Currency: "USD",
		Models: map[string]ModelRate{
			"openai/gpt-4o-mini":       {Input: 0.15, Output: 0.60},
			"openai/gpt-4o":            {Input: 2.50, Output: 10.00},
			"gpt-4o-mini":              {Input: 0.15, Output: 0.60},
			"gpt-4o":                   {Input: 2.50, Output: 10.00},
			"claude-sonnet-4-20250514": {Input: 3.00, Output: 15.00},
			"claude-3-5-haiku-latest":  {Input: 0.80, Output: 4.00},
			"mistral-small-latest":     {Input: 0.20, Output: 0.60},
			"mistral-large-latest":     {Input: 2.00, Output: 6.00},
		},
	}
}
