package surface

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// notionVersion pins the Notion API revision the adapter speaks.
const notionVersion = "2022-06-28"

// NotionAdapter reads and writes research documents in Notion.
type NotionAdapter struct {
	cfg    config.NotionConfig
	client *http.Client
}

// NewNotionAdapter creates a Notion adapter. client may be nil to use
// http.DefaultClient.
func NewNotionAdapter(cfg config.NotionConfig, client *http.Client) *NotionAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &NotionAdapter{cfg: cfg, client: client}
}

func (a *NotionAdapter) Name() string            { return "Notion API adapter" }
func (a *NotionAdapter) Surface() cortex.Surface { return Notion }

// Configured requires an integration token and a target database.
func (a *NotionAdapter) Configured() bool {
	return a.cfg.Token.IsSet() && a.cfg.DatabaseID != ""
}

// Test verifies the integration token against the bot-user endpoint.
func (a *NotionAdapter) Test(ctx context.Context) error {
	return checkEndpoint(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/v1/users/me", a.header())
}

// CreatePage files a new page titled title in the configured database.
func (a *NotionAdapter) CreatePage(ctx context.Context, title string) (map[string]any, error) {
	body := map[string]any{
		"parent": map[string]string{"database_id": a.cfg.DatabaseID},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []map[string]any{
					{"text": map[string]string{"content": title}},
				},
			},
		},
	}
	return doJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/v1/pages", a.header(), body)
}

// QueryDatabase returns the pages of the configured database.
func (a *NotionAdapter) QueryDatabase(ctx context.Context) (map[string]any, error) {
	url := a.cfg.BaseURL + "/v1/databases/" + a.cfg.DatabaseID + "/query"
	return doJSON(ctx, a.client, http.MethodPost, url, a.header(), map[string]any{})
}

func (a *NotionAdapter) header() http.Header {
	return http.Header{
		"Authorization":  []string{"Bearer " + a.cfg.Token.Value()},
		"Notion-Version": []string{notionVersion},
	}
}
