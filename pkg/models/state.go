package models

import (
	"time"

	"github.com/logdeck/logdeck/pkg/config"
	"github.com/logdeck/logdeck/pkg/types"
)

// AppState holds the core application state
// This is separated from UI state to enable better testing and business logic separation
type AppState struct {
	// Configuration
	Config  *config.Config
	Version string
	CLI     *types.CLI

	// Effective API endpoint after merging config and flags
	BaseURL string
	Timeout time.Duration
}

// NewAppState creates a new application state with default values
func NewAppState(cfg *config.Config, version string) *AppState {
	return &AppState{
		Config:  cfg,
		Version: version,
		CLI:     &types.CLI{},
		BaseURL: cfg.API.URL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}
}

// EndpointInfo returns the API endpoint description shown in the status bar
func (s *AppState) EndpointInfo() string {
	return s.BaseURL
}
