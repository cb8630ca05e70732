package surface

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// FigmaAdapter talks to the Figma REST API.
type FigmaAdapter struct {
	cfg    config.FigmaConfig
	client *http.Client
}

// NewFigmaAdapter creates a Figma adapter. client may be nil to use
// http.DefaultClient.
func NewFigmaAdapter(cfg config.FigmaConfig, client *http.Client) *FigmaAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &FigmaAdapter{cfg: cfg, client: client}
}

func (a *FigmaAdapter) Name() string            { return "Figma REST adapter" }
func (a *FigmaAdapter) Surface() cortex.Surface { return Figma }

// Configured requires a personal access token and a target file.
func (a *FigmaAdapter) Configured() bool {
	return a.cfg.Token.IsSet() && a.cfg.FileKey != ""
}

// Test verifies the token against the current-user endpoint.
func (a *FigmaAdapter) Test(ctx context.Context) error {
	return checkEndpoint(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/me", a.header())
}

// File fetches the configured file's document tree.
func (a *FigmaAdapter) File(ctx context.Context) (map[string]any, error) {
	return doJSON(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/files/"+a.cfg.FileKey, a.header(), nil)
}

// Styles fetches the file's published styles, the source for design
// tokens.
func (a *FigmaAdapter) Styles(ctx context.Context) (map[string]any, error) {
	return doJSON(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/files/"+a.cfg.FileKey+"/styles", a.header(), nil)
}

func (a *FigmaAdapter) header() http.Header {
	return http.Header{"X-Figma-Token": []string{a.cfg.Token.Value()}}
}
