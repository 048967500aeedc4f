package api

import (
	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
)

// CaptureRequest is the request body for processing a capture.
type CaptureRequest struct {
	Content string `json:"content" example:"- [ ] call the vendor" validate:"required"`
	Type    string `json:"type,omitempty" example:"task"`
	Source  string `json:"source,omitempty" example:"shortcut"`
}

// CaptureResponse reports what happened to a capture (aliased from the
// domain layer).
type CaptureResponse = capture.Result

// RouteRequest is the request body for a route preview.
type RouteRequest struct {
	Content string `json:"content" example:"https://example.com" validate:"required"`
	Type    string `json:"type,omitempty" example:"link"`
	// Full makes the preview use the AI fallback chain; the default is the
	// deterministic path only.
	Full bool `json:"full,omitempty"`
}

// RouteResponse wraps a route preview decision.
type RouteResponse struct {
	Decision *models.RouteDecision `json:"decision" validate:"required"`
}

// RulesResponse wraps the currently loaded rule snapshot.
type RulesResponse struct {
	Rules []routing.Rule `json:"rules" validate:"required"`
}
