package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/fyrsmithlabs/cortexd/internal/httpapi"
	"github.com/fyrsmithlabs/cortexd/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenFlag bool

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Run a workflow template",
	Long: `Run a workflow template end to end. Approval-gated steps prompt on
the terminal; with --listen the pending approvals are also served over
HTTP so another surface can answer them.

Examples:
  # Sync design tokens from Figma into the repository
  cortexd run token-sync

  # Run with the approval API exposed
  cortexd run design-refresh --listen`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().BoolVar(&listenFlag, "listen", false, "serve the approval API while the workflow runs")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render.New(os.Stdout).Attach(s.machine.Bus())
	go respondFromTerminal(s.machine)

	if listenFlag {
		server, err := httpapi.NewServer(s.machine, s.logger, &httpapi.Config{
			Host: "localhost",
			Port: s.cfg.Server.Port,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := server.Start(); err != nil {
				s.logger.Warn(ctx, "approval api stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration())
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	executors, err := buildExecutors(s.machine, s.coordinator, args[0])
	if err != nil {
		return err
	}

	result, err := s.coordinator.ExecuteWorkflow(ctx, args[0], executors)
	if err != nil {
		return err
	}

	if !result.Success {
		for _, cerr := range result.Errors {
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", cerr.Code, cerr.Message)
		}
		return fmt.Errorf("workflow %s finished with %d error(s)", args[0], len(result.Errors))
	}

	fmt.Printf("workflow %s complete, %d step result(s)\n", args[0], len(result.Results))
	return nil
}

// respondFromTerminal answers approval requests from stdin. One request is
// handled at a time, matching the machine's sequential runner.
func respondFromTerminal(m *cortex.Machine) {
	requests := make(chan cortex.ApprovalRequest, 4)
	m.Bus().Subscribe(cortex.EventApprovalRequired, func(e cortex.Event) {
		requests <- e.Payload.(cortex.ApprovalRequest)
	})

	scanner := bufio.NewScanner(os.Stdin)
	for req := range requests {
		fmt.Printf("choose an option for %q: ", req.Title)
		if !scanner.Scan() {
			return
		}
		choice := strings.TrimSpace(scanner.Text())
		if !m.RespondToApproval(req.ID, choice) {
			fmt.Printf("option %q not accepted (request may have expired)\n", choice)
		}
	}
}
