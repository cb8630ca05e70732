package surface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubAdapter opens pull requests and commits token changes through the
// GitHub API.
type GitHubAdapter struct {
	cfg config.GitHubConfig
	gh  *github.Client
}

// NewGitHubAdapter creates a GitHub adapter. gh may be nil, in which case
// an authenticated client is built from the configured token.
func NewGitHubAdapter(cfg config.GitHubConfig, gh *github.Client) *GitHubAdapter {
	if gh == nil {
		var tc = github.NewClient(nil)
		if cfg.Token.IsSet() {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token.Value()})
			tc = github.NewClient(oauth2.NewClient(context.Background(), ts))
		}
		gh = tc
	}
	return &GitHubAdapter{cfg: cfg, gh: gh}
}

func (a *GitHubAdapter) Name() string            { return "GitHub API adapter" }
func (a *GitHubAdapter) Surface() cortex.Surface { return GitHub }

// Configured requires a token and a target repository.
func (a *GitHubAdapter) Configured() bool {
	return a.cfg.Token.IsSet() && a.cfg.Owner != "" && a.cfg.Repo != ""
}

// Test hits the zen endpoint, the cheapest authenticated round trip.
func (a *GitHubAdapter) Test(ctx context.Context) error {
	if _, _, err := a.gh.Zen(ctx); err != nil {
		return fmt.Errorf("github connectivity check failed: %w", err)
	}
	return nil
}

// Client exposes the underlying client for step executors.
func (a *GitHubAdapter) Client() *github.Client {
	return a.gh
}

// OpenPullRequest opens a PR from head into base on the configured
// repository.
func (a *GitHubAdapter) OpenPullRequest(ctx context.Context, title, body, head, base string) (*github.PullRequest, error) {
	pr, _, err := a.gh.PullRequests.Create(ctx, a.cfg.Owner, a.cfg.Repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	})
	if err != nil {
		return nil, fmt.Errorf("open pull request: %w", err)
	}
	return pr, nil
}

// FileContent returns the decoded content of path on the default branch,
// or "" when the file does not exist yet.
func (a *GitHubAdapter) FileContent(ctx context.Context, path string) (string, error) {
	file, _, resp, err := a.gh.Repositories.GetContents(ctx, a.cfg.Owner, a.cfg.Repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

// CommitFile creates or updates a single file on the default branch.
func (a *GitHubAdapter) CommitFile(ctx context.Context, path, message string, content []byte) (*github.RepositoryContentResponse, error) {
	var sha *string
	existing, _, _, err := a.gh.Repositories.GetContents(ctx, a.cfg.Owner, a.cfg.Repo, path, nil)
	if err == nil && existing != nil {
		sha = existing.SHA
	}

	resp, _, err := a.gh.Repositories.CreateFile(ctx, a.cfg.Owner, a.cfg.Repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", path, err)
	}
	return resp, nil
}
