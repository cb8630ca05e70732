package surface

import (
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

// WorkflowTemplate is a static, read-only description of a multi-surface
// workflow. Steps run strictly in order.
type WorkflowTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Surfaces    []cortex.Surface `json:"surfaces"`

	// Steps are copied into a fresh execution plan on every run.
	Steps []cortex.ExecutionStep `json:"steps"`
}

// Templates returns the workflow catalog. Callers get a fresh copy, the
// catalog itself is never mutated.
func Templates() []WorkflowTemplate {
	templates := make([]WorkflowTemplate, len(catalog))
	copy(templates, catalog)
	return templates
}

// TemplateByID looks up a single template.
func TemplateByID(id string) (WorkflowTemplate, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return WorkflowTemplate{}, false
}

var catalog = []WorkflowTemplate{
	{
		ID:          "design-refresh",
		Name:        "Design refresh",
		Description: "Pull the current Figma file, propose layout fixes, and open a PR with updated components.",
		Surfaces:    []cortex.Surface{Figma, GitHub, Slack},
		Steps: []cortex.ExecutionStep{
			{ID: "fetch-file", Name: "Fetch Figma file", Action: "fetch-file", Surface: Figma},
			{ID: "analyze-layout", Name: "Analyze layout", Action: "analyze-layout", Surface: Figma},
			{ID: "open-pr", Name: "Open pull request", Action: "open-pr", Surface: GitHub, RequiresApproval: true},
			{ID: "notify-team", Name: "Notify team", Action: "post-message", Surface: Slack},
		},
	},
	{
		ID:          "token-sync",
		Name:        "Token sync",
		Description: "Extract design tokens from Figma and sync them into the code repository.",
		Surfaces:    []cortex.Surface{Figma, GitHub},
		Steps: []cortex.ExecutionStep{
			{ID: "extract-tokens", Name: "Extract design tokens", Action: "extract-tokens", Surface: Figma},
			{ID: "diff-tokens", Name: "Diff against repository", Action: "diff-tokens", Surface: GitHub},
			{ID: "commit-tokens", Name: "Commit token changes", Action: "commit-tokens", Surface: GitHub, RequiresApproval: true},
		},
	},
	{
		ID:          "design-qa",
		Name:        "Design QA",
		Description: "Audit Figma frames against the design system and file findings in Notion.",
		Surfaces:    []cortex.Surface{Figma, Notion},
		Steps: []cortex.ExecutionStep{
			{ID: "audit-frames", Name: "Audit frames", Action: "audit-frames", Surface: Figma},
			{ID: "file-findings", Name: "File findings", Action: "create-page", Surface: Notion},
		},
	},
	{
		ID:          "research-sync",
		Name:        "Research sync",
		Description: "Combine analytics funnels with Notion research notes and brief the team in Slack.",
		Surfaces:    []cortex.Surface{Analytics, Notion, Slack},
		Steps: []cortex.ExecutionStep{
			{ID: "pull-funnels", Name: "Pull funnel metrics", Action: "pull-funnels", Surface: Analytics},
			{ID: "collect-notes", Name: "Collect research notes", Action: "query-database", Surface: Notion},
			{ID: "post-brief", Name: "Post research brief", Action: "post-message", Surface: Slack},
		},
	},
}
