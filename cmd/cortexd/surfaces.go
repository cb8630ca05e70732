package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var surfacesCmd = &cobra.Command{
	Use:   "surfaces",
	Short: "Show the readiness of every surface adapter",
	Long: `Show every registered surface adapter, whether it is configured,
and whether a live connectivity test passes.`,
	RunE: runSurfaces,
}

func runSurfaces(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}

	statuses := s.coordinator.CheckReadiness(context.Background())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SURFACE\tADAPTER\tCONFIGURED\tREADY\tERROR")
	for _, st := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%s\n", st.Surface, st.Adapter, st.Configured, st.Ready, st.Error)
	}
	return w.Flush()
}
