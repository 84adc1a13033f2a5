// Package api - API types for cost calculation
// These types define the contract for the /costs endpoints.
package api

import (
	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// CalculateRequest is the input to POST /costs/calculate
type CalculateRequest struct {
	// Elements to price, in output order
	Elements []types.Element `json:"elements" validate:"required"`

	// ProjectName overrides the configured project name (optional)
	ProjectName string `json:"project_name,omitempty" validate:"max=256"`

	// PriceListID selects a rule set (optional, "default" if empty)
	PriceListID string `json:"price_list_id,omitempty" validate:"max=128"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the output of GET /costs/health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// VersionResponse is the output of GET /version
type VersionResponse struct {
	Version    string `json:"version"`
	Engine     string `json:"engine"`
	APIVersion string `json:"api_version"`
}

// RulesResponse is the output of GET /costs/rules
type RulesResponse struct {
	PriceListID string         `json:"price_list_id"`
	PriceLists  []string       `json:"price_lists"`
	Providers   []string       `json:"providers"`
	Rules       *rules.RuleSet `json:"rules"`
}
