package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timesheetbot/internal/browser"
	"timesheetbot/internal/config"
	"timesheetbot/internal/logging"
	"timesheetbot/internal/notify"
	"timesheetbot/internal/pipeline"
	"timesheetbot/internal/portal"
)

var dryRun bool

// runCmd performs one report run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sign in, read the attendance summary and push it to LINE",
	Long: `Runs the whole job once:
  1. Sign in through ADFS and wait for the redirect back to Humatrix
  2. Open the calendar report and search every frame for the summary table
  3. Classify the table rows and format the report
  4. Push the report to LINE (skipped with --dry-run)

If the table never appears a screenshot is saved and nothing is sent.
Run outcomes, including failures, exit 0; only configuration errors exit non-zero.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report instead of sending it")
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(!dryRun); err != nil {
		return err
	}
	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	var notifier pipeline.Notifier
	if !dryRun {
		notifier = notify.NewClient(cfg.Notify.ClientConfig(), logging.For(logger, logging.CategoryNotify))
	}

	o := pipeline.New(newOpener(cfg, logger), notifier, pipeline.Options{
		Labels:          cfg.Classifier.Labels,
		Location:        loc,
		ScreenshotPath:  cfg.Report.ScreenshotPath,
		NotifyOnFailure: cfg.Notify.OnFailure,
		DryRun:          dryRun,
	}, logger)

	out := o.Run(ctx, cfg.Portal.Credentials())
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

// newOpener launches a dedicated browser per session; closing the session shuts it down.
func newOpener(cfg *config.Config, log *zap.Logger) pipeline.SessionOpener {
	return pipeline.OpenerFunc(func(ctx context.Context) (pipeline.Session, error) {
		mgr := browser.NewManager(cfg.Browser.ManagerConfig(), logging.For(log, logging.CategoryBrowser))
		if err := mgr.Start(ctx); err != nil {
			return nil, err
		}
		logging.For(log, logging.CategoryBrowser).Info("browser ready", zap.String("control_url", mgr.ControlURL()))
		page, err := mgr.NewPage(ctx)
		if err != nil {
			if serr := mgr.Shutdown(); serr != nil {
				log.Warn("failed to shut down browser", zap.Error(serr))
			}
			return nil, fmt.Errorf("open page: %w", err)
		}
		return portal.NewSession(page, mgr.Shutdown, cfg.Portal.SessionConfig(), logging.For(log, logging.CategoryPortal)), nil
	})
}
