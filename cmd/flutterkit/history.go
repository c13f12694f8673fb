package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/flutterkit/flutterkit/internal/journal"
	"github.com/flutterkit/flutterkit/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent setup runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")

	return cmd
}

func runHistory(ctx context.Context, out io.Writer, limit int) error {
	jr, err := journal.OpenDefault(ctx)
	if err != nil {
		return err
	}
	defer jr.Close()

	runs, err := jr.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	for _, run := range runs {
		status := "ok"
		if run.ExitCode != 0 {
			status = "failed"
		}
		fmt.Fprintf(out, "%s  %s  %s  %s (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ID, run.Project, status, run.Duration.Truncate(time.Millisecond))

		stages, err := jr.Stages(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, st := range stages {
			line := fmt.Sprintf("    %s %s", report.StatusIcon(st.Status), st.Stage)
			if st.Error != "" {
				line = fmt.Sprintf("%s — %s", line, st.Error)
			}
			fmt.Fprintln(out, line)
		}
	}

	return nil
}
