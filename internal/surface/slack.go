package surface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// SlackAdapter posts workflow updates to Slack.
type SlackAdapter struct {
	cfg    config.SlackConfig
	client *http.Client
}

// NewSlackAdapter creates a Slack adapter. client may be nil to use
// http.DefaultClient.
func NewSlackAdapter(cfg config.SlackConfig, client *http.Client) *SlackAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackAdapter{cfg: cfg, client: client}
}

func (a *SlackAdapter) Name() string            { return "Slack Web API adapter" }
func (a *SlackAdapter) Surface() cortex.Surface { return Slack }

// Configured requires a bot token and a destination channel.
func (a *SlackAdapter) Configured() bool {
	return a.cfg.Token.IsSet() && a.cfg.Channel != ""
}

// Test calls auth.test, which validates the token without side effects.
func (a *SlackAdapter) Test(ctx context.Context) error {
	return checkEndpoint(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/auth.test", a.header())
}

// PostMessage sends text to the configured channel.
func (a *SlackAdapter) PostMessage(ctx context.Context, text string) error {
	body := map[string]string{"channel": a.cfg.Channel, "text": text}
	resp, err := doJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/chat.postMessage", a.header(), body)
	if err != nil {
		return err
	}
	// Slack reports API errors with 200 and ok:false.
	if ok, _ := resp["ok"].(bool); !ok {
		return fmt.Errorf("slack rejected message: %v", resp["error"])
	}
	return nil
}

func (a *SlackAdapter) header() http.Header {
	return http.Header{"Authorization": []string{"Bearer " + a.cfg.Token.Value()}}
}
