package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/fyrsmithlabs/cortexd/internal/surface"
)

// tokensPath is where synced design tokens land in the repository.
const tokensPath = "design/tokens.json"

// buildExecutors wires one executor per step of the named template,
// binding each action to its surface adapter.
func buildExecutors(m *cortex.Machine, c *surface.Coordinator, workflowID string) (map[string]cortex.StepExecutor, error) {
	tpl, ok := surface.TemplateByID(workflowID)
	if !ok {
		return nil, fmt.Errorf("unknown workflow template %q", workflowID)
	}

	executors := make(map[string]cortex.StepExecutor, len(tpl.Steps))
	for _, step := range tpl.Steps {
		executor, err := executorForAction(m, c, tpl, step)
		if err != nil {
			return nil, err
		}
		executors[step.ID] = executor
	}
	return executors, nil
}

func executorForAction(m *cortex.Machine, c *surface.Coordinator, tpl surface.WorkflowTemplate, step cortex.ExecutionStep) (cortex.StepExecutor, error) {
	adapter, ok := c.Adapter(step.Surface)
	if !ok {
		return nil, fmt.Errorf("step %s needs unregistered surface %s", step.ID, step.Surface)
	}

	switch step.Action {
	case "fetch-file":
		figma := adapter.(*surface.FigmaAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			return figma.File(ctx)
		}, nil

	case "analyze-layout", "audit-frames":
		figma := adapter.(*surface.FigmaAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			doc, err := figma.File(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"file":   doc["name"],
				"frames": countFrames(doc),
			}, nil
		}, nil

	case "extract-tokens":
		figma := adapter.(*surface.FigmaAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			return figma.Styles(ctx)
		}, nil

	case "diff-tokens":
		gh := adapter.(*surface.GitHubAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			tokens := stepOutput(m, "extract-tokens")
			encoded, err := json.MarshalIndent(tokens, "", "  ")
			if err != nil {
				return nil, err
			}
			existing, err := gh.FileContent(ctx, tokensPath)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"path":    tokensPath,
				"bytes":   len(encoded),
				"changed": existing != string(encoded),
			}, nil
		}, nil

	case "commit-tokens":
		gh := adapter.(*surface.GitHubAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			tokens := stepOutput(m, "extract-tokens")
			encoded, err := json.MarshalIndent(tokens, "", "  ")
			if err != nil {
				return nil, err
			}
			resp, err := gh.CommitFile(ctx, tokensPath, "chore: sync design tokens", encoded)
			if err != nil {
				return nil, err
			}
			return map[string]any{"commit": resp.GetSHA()}, nil
		}, nil

	case "open-pr":
		gh := adapter.(*surface.GitHubAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			branch := fmt.Sprintf("cortex/%s-%s", tpl.ID, time.Now().Format("20060102"))
			pr, err := gh.OpenPullRequest(ctx, tpl.Name, tpl.Description, branch, "main")
			if err != nil {
				return nil, err
			}
			return map[string]any{"number": pr.GetNumber(), "url": pr.GetHTMLURL()}, nil
		}, nil

	case "post-message":
		slack := adapter.(*surface.SlackAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			text := fmt.Sprintf("cortexd finished workflow %q", tpl.Name)
			if err := slack.PostMessage(ctx, text); err != nil {
				return nil, err
			}
			return map[string]any{"posted": true}, nil
		}, nil

	case "create-page":
		notion := adapter.(*surface.NotionAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			title := fmt.Sprintf("%s findings %s", tpl.Name, time.Now().Format("2006-01-02"))
			return notion.CreatePage(ctx, title)
		}, nil

	case "query-database":
		notion := adapter.(*surface.NotionAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			return notion.QueryDatabase(ctx)
		}, nil

	case "pull-funnels":
		analytics := adapter.(*surface.AnalyticsAdapter)
		return func(ctx context.Context, _ *cortex.ExecutionStep) (any, error) {
			return analytics.Funnels(ctx)
		}, nil

	default:
		return nil, fmt.Errorf("no executor for action %q (step %s)", step.Action, step.ID)
	}
}

// stepOutput returns an earlier step's output from the active plan.
func stepOutput(m *cortex.Machine, stepID string) any {
	plan := m.Plan()
	if plan == nil {
		return nil
	}
	for _, s := range plan.Steps {
		if s.ID == stepID {
			return s.Output
		}
	}
	return nil
}

// countFrames counts FRAME nodes in a Figma document tree.
func countFrames(node map[string]any) int {
	count := 0
	if node["type"] == "FRAME" {
		count++
	}
	if doc, ok := node["document"].(map[string]any); ok {
		count += countFrames(doc)
	}
	if children, ok := node["children"].([]any); ok {
		for _, child := range children {
			if childMap, ok := child.(map[string]any); ok {
				count += countFrames(childMap)
			}
		}
	}
	return count
}
