package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/aggregate/internal/aggregator"
	"github.com/cleared-dev/aggregate/internal/buildinfo"
	"github.com/cleared-dev/aggregate/internal/config"
	"github.com/cleared-dev/aggregate/internal/export"
	"github.com/cleared-dev/aggregate/internal/importer"
	"github.com/cleared-dev/aggregate/internal/logging"
	"github.com/cleared-dev/aggregate/internal/runlog"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running the root command itself performs an aggregation.
func NewRootCommand() *cobra.Command {
	v := config.NewViper()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge transaction CSV files into one normalized file",
		Long: `Merge every <files_prefix>*.csv in --files_folder into one file with the columns
timestamp, date_readable, transaction, amount, from, to.

Split currency columns (euro/usd + cents) are merged into a single amount and
dates are normalized. At least two input files are required.`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, cfg, err := resolveConfig(v, configFile)
			if err != nil {
				return err
			}
			log := logging.Setup(cfg.LogLevel)
			return runAggregate(cmd.OutOrStdout(), wd, cfg, log)
		},
	}

	d := config.Default()
	flags := rootCmd.Flags()
	flags.String(config.KeyFilesFolder, d.FilesFolder, "folder with the input CSV files, relative to the current directory")
	flags.String(config.KeyFilesPrefix, d.FilesPrefix, "only read files named <files_prefix>*.csv")
	flags.String(config.KeyFilename, d.Filename, "output file name without extension (default result<timestamp>)")
	flags.String(config.KeyCurrency, d.Currency, "currency of split amount columns (euro, usd)")
	flags.String(config.KeyFormat, d.Format, "output format (csv, json, xml, yaml, sqlite)")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&configFile, "config", "", "config file (default ./"+config.FileName+" if present)")
	persistent.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	persistent.String(config.KeyRunLog, d.RunLog, "append a line per run to this CSV file")

	for _, key := range []string{config.KeyFilesFolder, config.KeyFilesPrefix, config.KeyFilename, config.KeyCurrency, config.KeyFormat} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	_ = v.BindPFlag(config.KeyLogLevel, persistent.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyRunLog, persistent.Lookup(config.KeyRunLog))

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newHistoryCommand(v, &configFile))

	return rootCmd
}

// resolveConfig resolves the effective config against the working directory.
func resolveConfig(v *viper.Viper, configFile string) (string, *config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("resolving working directory: %w", err)
	}
	cfg, err := config.Resolve(v, configFile, wd)
	if err != nil {
		return "", nil, err
	}
	return wd, cfg, nil
}

func runAggregate(out io.Writer, baseDir string, cfg *config.Config, log zerolog.Logger) error {
	ex, err := export.DefaultRegistry().Lookup(cfg.Format)
	if err != nil {
		return err
	}

	agg := aggregator.New(baseDir, log)
	if err := agg.Aggregate(cfg.FilesFolder, cfg.FilesPrefix, cfg.Currency); err != nil {
		return err
	}

	path, err := agg.Save(cfg.Filename, ex)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	fmt.Fprintf(out, "File %s was created in %s\n", filepath.Base(path), filepath.Dir(path))

	if cfg.RunLog == "" {
		return nil
	}
	// A failed history write does not undo a written result.
	runID, err := runlog.Record(resolvePath(baseDir, cfg.RunLog), runlog.Entry{
		Timestamp: time.Now().UTC(),
		Folder:    importer.ResolveDir(baseDir, cfg.FilesFolder),
		Prefix:    cfg.FilesPrefix,
		Files:     len(agg.Sources()),
		Rows:      len(agg.Data()),
		Output:    path,
	})
	if err != nil {
		log.Warn().Err(err).Str("run_log", cfg.RunLog).Msg("recording run failed")
		return nil
	}
	log.Debug().Str("run_id", runID).Msg("run recorded")
	return nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
