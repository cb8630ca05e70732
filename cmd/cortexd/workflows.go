package main

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/cortexd/internal/surface"
	"github.com/spf13/cobra"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List workflow templates and their availability",
	RunE:  runWorkflows,
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}

	available := make(map[string]bool)
	for _, w := range s.coordinator.AvailableWorkflows() {
		available[w.ID] = true
	}

	for _, tpl := range surface.Templates() {
		marker := " "
		if available[tpl.ID] {
			marker = "*"
		}
		surfaces := make([]string, 0, len(tpl.Surfaces))
		for _, sf := range tpl.Surfaces {
			surfaces = append(surfaces, string(sf))
		}
		fmt.Printf("%s %-16s %-10s [%s]\n", marker, tpl.ID, fmt.Sprintf("%d steps", len(tpl.Steps)), strings.Join(surfaces, ", "))
		fmt.Printf("  %s\n", tpl.Description)
	}
	fmt.Println("\n* = all required surfaces configured")
	return nil
}
