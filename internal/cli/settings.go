package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pmig/internal/config"
	"github.com/vvka-141/pmig/pkg/pmig"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeSQLite   = "sqlite"

	logFormatText = "text"
	logFormatJSON = "json"

	// envDSN and envDatabaseURL are consulted, in that order, when --dsn
	// is not given.
	envDSN         = "PMIG_DATABASE_URL"
	envDatabaseURL = "DATABASE_URL"
)

type migrateFlagValues struct {
	tables         []string
	dryRun         bool
	store, dsn     string
	workers        int
	escape         string
	encoding       string
	timezone       string
	maxSamples     int
	reportJSON     string
	logFormat      string
	pushgatewayURL string
	configPath     string
	timeout        time.Duration
}

// migrateSettings is everything a migrate run needs after flags, pmig.yaml
// and the environment are merged.
type migrateSettings struct {
	Migration      pmig.MigrationConfig
	Store          string
	DSN            string
	ReportJSON     string
	LogFormat      string
	PushgatewayURL string
	Job            string
}

// buildMigrateSettings merges configuration sources. Precedence, highest
// first: explicitly set flags, environment (DSN only), pmig.yaml, flag
// defaults.
func buildMigrateSettings(cmd *cobra.Command, dumpPath string, flags migrateFlagValues, verbose bool) (migrateSettings, error) {
	_ = godotenv.Load()

	projectCfg, err := loadProjectConfig(flags.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return migrateSettings{}, err
	}
	changed := cmd.Flags().Changed

	tableNames := flags.tables
	if !changed("tables") && len(projectCfg.Migrate.Tables) > 0 {
		tableNames = projectCfg.Migrate.Tables
	}
	tables, err := pmig.ParseTables(tableNames)
	if err != nil {
		return migrateSettings{}, err
	}

	escape, err := pmig.ParseEscapeMode(fromFile(changed("escape"), flags.escape, projectCfg.Migrate.Escape))
	if err != nil {
		return migrateSettings{}, err
	}

	encoding, err := pmig.ParseEncoding(fromFile(changed("encoding"), flags.encoding, projectCfg.Migrate.Encoding))
	if err != nil {
		return migrateSettings{}, err
	}

	tz := fromFile(changed("timezone"), flags.timezone, projectCfg.Migrate.Timezone)
	location, err := time.LoadLocation(tz)
	if err != nil {
		return migrateSettings{}, fmt.Errorf("timezone %q: %w: %w", tz, pmig.ErrInvalidConfig, err)
	}

	timeout := flags.timeout
	if projectCfg.Migrate.Timeout != "" && !changed("timeout") {
		parsed, parseErr := time.ParseDuration(projectCfg.Migrate.Timeout)
		if parseErr != nil {
			return migrateSettings{}, fmt.Errorf("invalid timeout in %s: %w: %w", config.ConfigFileName, pmig.ErrInvalidConfig, parseErr)
		}
		timeout = parsed
	}

	settings := migrateSettings{
		Migration: pmig.MigrationConfig{
			DumpPath:   dumpPath,
			Tables:     tables,
			DryRun:     flags.dryRun,
			Workers:    fromFile(changed("workers"), flags.workers, projectCfg.Migrate.Workers),
			Escape:     escape,
			Encoding:   encoding,
			Location:   location,
			MaxSamples: fromFile(changed("max-samples"), flags.maxSamples, projectCfg.Migrate.MaxSamples),
			Timeout:    timeout,
			Verbose:    verbose,
		},
		Store:          strings.ToLower(fromFile(changed("store"), flags.store, projectCfg.Store.Kind)),
		DSN:            resolveDSN(flags.dsn, projectCfg.Store.DSN),
		ReportJSON:     fromFile(changed("report-json"), flags.reportJSON, projectCfg.Report.JSON),
		LogFormat:      strings.ToLower(fromFile(changed("log-format"), flags.logFormat, projectCfg.Log.Format)),
		PushgatewayURL: fromFile(changed("pushgateway-url"), flags.pushgatewayURL, projectCfg.Report.PushgatewayURL),
		Job:            projectCfg.Report.Job,
	}

	if err := settings.validate(); err != nil {
		return migrateSettings{}, err
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] Settings resolved:\n")
		fmt.Fprintf(cmd.ErrOrStderr(), "  Dump: %s\n", dumpPath)
		fmt.Fprintf(cmd.ErrOrStderr(), "  Store: %s\n", settings.Store)
		fmt.Fprintf(cmd.ErrOrStderr(), "  Tables: %v\n", tables)
		fmt.Fprintf(cmd.ErrOrStderr(), "  Escape: %s, Encoding: %s, Timezone: %s\n", escape, encoding, location)
		fmt.Fprintf(cmd.ErrOrStderr(), "  Workers: %d, Timeout: %s\n", settings.Migration.Workers, timeout)
	}

	return settings, nil
}

func (s migrateSettings) validate() error {
	var errs []error

	if err := s.Migration.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch s.Store {
	case storeMemory:
	case storePostgres, storeSQLite:
		if s.DSN == "" && !s.Migration.DryRun {
			errs = append(errs, fmt.Errorf("store %s needs --dsn, $%s or $%s: %w", s.Store, envDSN, envDatabaseURL, pmig.ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("store %q must be one of %s: %w", s.Store, strings.Join(storeKinds, ", "), pmig.ErrInvalidConfig))
	}

	if s.LogFormat != logFormatText && s.LogFormat != logFormatJSON {
		errs = append(errs, fmt.Errorf("log format %q must be text or json: %w", s.LogFormat, pmig.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// loadProjectConfig reads the file named by --config, or pmig.yaml in the
// working directory when present. A missing default file is not an error.
func loadProjectConfig(path string, explicit bool) (*config.ProjectConfig, error) {
	if path == "" {
		path = config.ConfigFileName
	}

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound) && !explicit:
		return &config.ProjectConfig{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load %s: %w: %w", path, pmig.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// resolveDSN applies --dsn > $PMIG_DATABASE_URL > $DATABASE_URL > pmig.yaml.
func resolveDSN(flagDSN, fileDSN string) string {
	if flagDSN != "" {
		return flagDSN
	}
	if v := os.Getenv(envDSN); v != "" {
		return v
	}
	if v := os.Getenv(envDatabaseURL); v != "" {
		return v
	}
	return fileDSN
}

// fromFile returns the config file value unless the flag was set explicitly
// or the file leaves it empty.
func fromFile[T comparable](flagChanged bool, flagValue, fileValue T) T {
	var zero T
	if flagChanged || fileValue == zero {
		return flagValue
	}
	return fileValue
}
