// Command timesheetbot signs in to the HR portal, reads the monthly attendance summary, and
// pushes it to LINE. It is meant to run from cron or a CI schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// The report date is stamped in Asia/Bangkok; CI images often ship without a zoneinfo db.
	_ "time/tzdata"

	"timesheetbot/internal/config"
	"timesheetbot/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Populated by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timesheetbot",
	Short: "Push the monthly attendance summary from the HR portal to LINE",
	Long: `timesheetbot signs in through the hospital's ADFS sign-on, opens the Humatrix
calendar report, reads the attendance summary table and pushes a short Thai report
to a LINE user.

Credentials come from the environment (MY_USER, MY_PASSWORD, LINE_TOKEN,
LINE_USER_ID); everything else can be set in the YAML config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		opts := cfg.Logging.Options()
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.For(logger, logging.CategoryBoot).Debug("configuration loaded",
			zap.String("config", configPath),
			zap.Bool("headless", cfg.Browser.Headless))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "timesheetbot", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "timesheetbot.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Upper bound for the whole run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runContext bounds a command by --timeout and cancels it on SIGINT or SIGTERM.
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
