// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     version
// Description: Central version management for all components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

// Version constants for all RoboGrid components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Engine  = "1.0.0"
	Journal = "1.0.0"
	Server  = "1.0.0"
	TUI     = "1.0.0"
)

// Build metadata, set via -ldflags "-X .../version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "journal":
		return Journal
	case "server":
		return Server
	case "tui":
		return TUI
	default:
		return Platform
	}
}
