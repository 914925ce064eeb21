// Package cli implements the jobtrack command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwygoda/jobtrack/internal/config"
	"github.com/cwygoda/jobtrack/internal/logging"
)

type rootOptions struct {
	configPath  string
	dbPath      string
	timeout     time.Duration
	headless    bool
	verbose     bool
	metricsFile string

	app *App
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobtrack",
		Short: "Track job postings from their URLs",
		Long: `jobtrack fetches a job posting, extracts title, company, location,
salary and dates from its structured data or page metadata, and keeps
the result in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Development)
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, log)
			if err != nil {
				return err
			}
			opts.app = app
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/jobtrack/config.toml)")
	flags.StringVar(&opts.dbPath, "db", "", "database path (default $XDG_DATA_HOME/jobtrack/jobs.db)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "page fetch timeout (default 10s)")
	flags.BoolVar(&opts.headless, "headless", false, "render pages with headless Chrome")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose development logging")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	cmd.AddCommand(
		newAddCmd(),
		newImportCmd(),
		newListCmd(),
		newExportCmd(),
		newStatusCmd(),
		newNoteCmd(),
		newDeleteCmd(),
		newCountCmd(),
	)
	return cmd
}

// loadConfig reads the config file and environment, then applies flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	flags := cmd.Flags()
	cfg, err := config.Load(opts.configPath, flags.Changed("config"))
	if err != nil {
		return nil, err
	}
	if flags.Changed("db") {
		cfg.DBPath = config.ExpandPath(opts.dbPath)
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = config.Duration{Duration: opts.timeout}
	}
	if flags.Changed("headless") {
		cfg.Fetch.Headless = opts.headless
	}
	if flags.Changed("verbose") {
		cfg.Log.Development = opts.verbose
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = config.ExpandPath(opts.metricsFile)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the command line in args, writing command output to stdout.
// The app built for the command is closed before Run returns.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defer func() {
		if opts.app == nil {
			return
		}
		if cerr := opts.app.Close(); cerr != nil {
			opts.app.Log.Warn("close failed", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
	}()

	return cmd.ExecuteContext(ctx)
}

// Execute runs jobtrack with the process arguments and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
