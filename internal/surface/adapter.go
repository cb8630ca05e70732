package surface

import (
	"context"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// Well-known surfaces.
const (
	Figma     cortex.Surface = "figma"
	GitHub    cortex.Surface = "github"
	Notion    cortex.Surface = "notion"
	Slack     cortex.Surface = "slack"
	Analytics cortex.Surface = "analytics"
)

// Adapter is the capability contract a surface integration implements.
type Adapter interface {
	// Name is a human-readable adapter name ("Figma REST adapter").
	Name() string

	// Surface identifies which surface this adapter serves.
	Surface() cortex.Surface

	// Configured reports whether the adapter has the credentials and
	// settings it needs. A false value never stops registration, only
	// workflow execution against this surface.
	Configured() bool

	// Test verifies live connectivity. An error means the surface is
	// unreachable or the credentials are rejected.
	Test(ctx context.Context) error
}

// Status is the readiness snapshot for one registered adapter.
type Status struct {
	Surface    cortex.Surface `json:"surface"`
	Adapter    string         `json:"adapter"`
	Configured bool           `json:"configured"`
	Ready      bool           `json:"ready"`
	Error      string         `json:"error,omitempty"`
}
