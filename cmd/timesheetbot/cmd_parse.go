package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timesheetbot/internal/attendance"
	"timesheetbot/internal/logging"
	"timesheetbot/internal/notify"
	"timesheetbot/internal/portal"
	"timesheetbot/internal/report"
)

var parseSend bool

// parseCmd re-runs extraction and classification on a saved page
var parseCmd = &cobra.Command{
	Use:   "parse <file.html>",
	Short: "Classify the summary table of a saved report page",
	Long: `Reads an HTML snapshot of the report frame, extracts the summary table and
prints the report that a live run would send. With --send the report is pushed
to LINE as well.`,
	Args: cobra.ExactArgs(1),
	RunE: parseSnapshot,
}

func init() {
	parseCmd.Flags().BoolVar(&parseSend, "send", false, "Push the report to LINE")
}

func parseSnapshot(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	rows, err := portal.ParseTable(f, cfg.Portal.TableClass)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	s := attendance.NewClassifier(cfg.Classifier.Labels).Classify(rows)
	if s.Empty() {
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows, none matched a known label\n", len(rows))
		return nil
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	msg := report.Format(s, time.Now().In(loc))
	fmt.Fprintln(cmd.OutOrStdout(), renderPreview(msg, fmt.Sprintf("%d rows, matched %s", len(rows), s.Matched)))

	if !parseSend {
		return nil
	}
	if err := cfg.ValidateNotify(); err != nil {
		return err
	}
	ctx, cancel := runContext(cmd.Context())
	defer cancel()
	res := notify.NewClient(cfg.Notify.ClientConfig(), logging.For(logger, logging.CategoryNotify)).Send(ctx, msg)
	fmt.Fprintln(cmd.OutOrStdout(), "LINE:", res)
	return nil
}
