package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pmig/internal/files/filesystem"
	"github.com/vvka-141/pmig/internal/logging"
	"github.com/vvka-141/pmig/internal/metrics"
	"github.com/vvka-141/pmig/internal/report"
	"github.com/vvka-141/pmig/internal/retry"
	"github.com/vvka-141/pmig/internal/services"
	"github.com/vvka-141/pmig/internal/store/memory"
	"github.com/vvka-141/pmig/internal/store/postgres"
	"github.com/vvka-141/pmig/internal/store/sqlite"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// publishTimeout bounds the Pushgateway push, which runs after the
// migration context may already be done.
const publishTimeout = 15 * time.Second

const migrateLong = `Migrate reads the legacy dump and writes its records into the target store.

Tables are processed in dependency order: cobradores, clientes, prestamos,
pagos. Selecting a table with --tables also parses the tables it references;
those are used for lookups only and are not written.

Arguments:
  dump-file    Path to the legacy SQL dump (UTF-8 or Windows-1252)

Database URL:
  For postgres the DSN is taken from, in order: --dsn, $PMIG_DATABASE_URL,
  $DATABASE_URL, store.dsn in pmig.yaml. For sqlite the DSN is a file path.
  A .env file in the working directory is loaded first.

Examples:
  # Parse and report without writing anything
  pmig migrate backup.sql --dry-run

  # Migrate everything into Postgres
  pmig migrate backup.sql --store postgres --dsn postgres://app@localhost/backoffice

  # Rehearse loans and payments only into a local SQLite file
  pmig migrate backup.sql --store sqlite --dsn rehearsal.db --tables prestamos,pagos

  # Keep a machine-readable report and push counters to a Pushgateway
  pmig migrate backup.sql --report-json report.json --pushgateway-url http://pushgateway:9091`

func newMigrateCmd() *cobra.Command {
	flags := &migrateFlagValues{}

	cmd := &cobra.Command{
		Use:               "migrate <dump-file>",
		Short:             "Migrate a legacy SQL dump into the back office",
		Long:              migrateLong,
		Args:              RequireDumpPath,
		ValidArgsFunction: completeDumpFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args[0], *flags)
		},
	}
	bindMigrateFlags(cmd, flags)

	_ = cmd.RegisterFlagCompletionFunc("tables", completeTables)
	_ = cmd.RegisterFlagCompletionFunc("store", completeFrom(storeKinds))
	_ = cmd.RegisterFlagCompletionFunc("escape", completeFrom(escapeModes))
	_ = cmd.RegisterFlagCompletionFunc("encoding", completeFrom(encodings))
	_ = cmd.RegisterFlagCompletionFunc("log-format", completeFrom(logFormats))

	return cmd
}

func bindMigrateFlags(cmd *cobra.Command, flags *migrateFlagValues) {
	f := cmd.Flags()
	f.StringSliceVar(&flags.tables, "tables", nil,
		"Tables to migrate (comma-separated): cobradores, clientes, prestamos, pagos\n"+
			"Referenced tables are parsed for lookups but not written (default: all)")
	f.BoolVar(&flags.dryRun, "dry-run", false,
		"Parse, link and report without any store calls")
	f.StringVar(&flags.store, "store", storeMemory,
		"Target store: memory|postgres|sqlite")
	f.StringVar(&flags.dsn, "dsn", "",
		"Target store DSN (postgres URL or sqlite file path)\n"+
			"Precedence: --dsn > $PMIG_DATABASE_URL > $DATABASE_URL > pmig.yaml")
	f.IntVar(&flags.workers, "workers", pmig.DefaultWorkers,
		"Concurrent store calls per table")
	f.StringVar(&flags.escape, "escape", "both",
		"Quote escape convention inside string literals: both|backslash|doubled")
	f.StringVar(&flags.encoding, "encoding", string(pmig.EncodingAuto),
		"Dump character encoding: auto|utf8|windows1252")
	f.StringVar(&flags.timezone, "timezone", pmig.DefaultTimeZone,
		"IANA time zone used to turn legacy epoch seconds into dates")
	f.IntVar(&flags.maxSamples, "max-samples", pmig.DefaultMaxSamples,
		"Skipped records kept verbatim per table in the report")
	f.StringVar(&flags.reportJSON, "report-json", "",
		"Also write the report as JSON to this path")
	f.StringVar(&flags.logFormat, "log-format", logFormatText,
		"Log format on stderr: text|json")
	f.StringVar(&flags.pushgatewayURL, "pushgateway-url", "",
		"Push run counters to this Prometheus Pushgateway")
	f.StringVar(&flags.configPath, "config", "",
		"Config file (default: ./pmig.yaml when present)")
	f.DurationVar(&flags.timeout, "timeout", pmig.DefaultTimeout,
		"Catastrophic failure protection timeout for the whole run\n"+
			"Examples: 30s, 5m, 1h30m\n"+
			"0 disables the timeout")
}

func runMigrate(cmd *cobra.Command, dumpPath string, flags migrateFlagValues) error {
	verbose := getVerboseFlag(cmd)

	settings, err := buildMigrateSettings(cmd, dumpPath, flags, verbose)
	if err != nil {
		return err
	}

	logger, closeLogger, err := newLogger(cmd.ErrOrStderr(), settings.LogFormat, verbose)
	if err != nil {
		return err
	}
	defer closeLogger()

	// Setup context with timeout and signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if settings.Migration.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, settings.Migration.Timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\n[INTERRUPT] Received interrupt signal, cancelling migration...")
			cancel()
		case <-ctx.Done():
		}
	}()

	store, classifier, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer store.Close()

	executor := retry.NewExecutor(classifier, retry.NewExponentialBackoff(
		pmig.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(pmig.DefaultRetryInitialDelay),
		retry.WithMaxDelay(pmig.DefaultRetryMaxDelay),
	)).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Store call failed (attempt %d), retrying in %s: %v", attempt, delay, err)
	})

	svc := services.NewMigrationService(filesystem.NewOSFileSystem(), store, executor, logger)
	rep, migrateErr := svc.Migrate(ctx, settings.Migration)
	if rep != nil {
		if err := publishReport(cmd.OutOrStdout(), rep, settings, logger); err != nil {
			if migrateErr == nil {
				return err
			}
			logger.Error("%v", err)
		}
	}
	if migrateErr != nil {
		return fmt.Errorf("migration failed: %w", migrateErr)
	}
	return nil
}

// publishReport renders the report and writes its optional JSON file and
// metrics. A failed push is logged; the migration itself already succeeded.
func publishReport(out io.Writer, rep *pmig.MigrationReport, settings migrateSettings, logger pmig.Logger) error {
	report.NewRenderer(out).Render(rep)

	if settings.ReportJSON != "" {
		if err := report.WriteJSONFile(settings.ReportJSON, rep); err != nil {
			return err
		}
		logger.Verbose("Report written to %s", settings.ReportJSON)
	}

	var publisher metrics.Publisher = metrics.Nop{}
	if settings.PushgatewayURL != "" {
		pg, err := metrics.NewPushgateway(settings.PushgatewayURL, settings.Job)
		if err != nil {
			return err
		}
		publisher = pg
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, rep); err != nil {
		logger.Error("Metrics not published: %v", err)
	}
	return nil
}

// openStore connects the configured target store. Dry runs never touch a
// store, so they get an in-memory one whatever --store says.
func openStore(ctx context.Context, settings migrateSettings) (pmig.Store, pmig.ErrorClassifier, error) {
	if settings.Migration.DryRun {
		return memory.New(), retry.NeverRetry{}, nil
	}

	switch settings.Store {
	case storePostgres:
		s, err := postgres.Open(ctx, settings.DSN, settings.Migration.Workers)
		if err != nil {
			return nil, nil, err
		}
		return s, retry.NewPostgreSQLErrorClassifier(), nil
	case storeSQLite:
		s, err := sqlite.Open(ctx, settings.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, retry.NewSQLiteErrorClassifier(), nil
	default:
		return memory.New(), retry.NeverRetry{}, nil
	}
}

// newLogger selects the console logger or the JSON zap logger. The returned
// func flushes buffered entries.
func newLogger(errOut io.Writer, format string, verbose bool) (pmig.Logger, func(), error) {
	if format == logFormatJSON {
		zl, err := logging.NewZapLogger(verbose)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build logger: %w", err)
		}
		return zl, func() { _ = zl.Sync() }, nil
	}
	return logging.NewConsoleLoggerTo(errOut, verbose), func() {}, nil
}
