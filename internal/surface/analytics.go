package surface

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// AnalyticsAdapter pulls product metrics from the analytics backend.
type AnalyticsAdapter struct {
	cfg    config.AnalyticsConfig
	client *http.Client
}

// NewAnalyticsAdapter creates an analytics adapter. client may be nil to
// use http.DefaultClient.
func NewAnalyticsAdapter(cfg config.AnalyticsConfig, client *http.Client) *AnalyticsAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &AnalyticsAdapter{cfg: cfg, client: client}
}

func (a *AnalyticsAdapter) Name() string            { return "Analytics adapter" }
func (a *AnalyticsAdapter) Surface() cortex.Surface { return Analytics }

// Configured requires an API token and an endpoint.
func (a *AnalyticsAdapter) Configured() bool {
	return a.cfg.Token.IsSet() && a.cfg.BaseURL != ""
}

// Test probes the status endpoint.
func (a *AnalyticsAdapter) Test(ctx context.Context) error {
	return checkEndpoint(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/status", a.header())
}

// Funnels pulls the current funnel metrics.
func (a *AnalyticsAdapter) Funnels(ctx context.Context) (map[string]any, error) {
	return doJSON(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/funnels", a.header(), nil)
}

func (a *AnalyticsAdapter) header() http.Header {
	return http.Header{"Authorization": []string{"Bearer " + a.cfg.Token.Value()}}
}
