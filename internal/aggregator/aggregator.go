// Package aggregator merges a directory of transaction CSV files into one
// normalized table.
//
// Aggregate discovers <prefix>*.csv files, renames legacy columns, merges
// split currency columns into a single amount, parses every timestamp and
// keeps the canonical columns. It needs at least two input files: a single
// match is reported as ErrSingleFileOnly rather than passed through.
package aggregator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/aggregate/internal/export"
	"github.com/cleared-dev/aggregate/internal/importer"
	"github.com/cleared-dev/aggregate/internal/model"
)

// DefaultFolder is the input directory used when none is given.
const DefaultFolder = "files"

// resultStampFormat names default output files, e.g. result20230305T101500.000000.csv.
const resultStampFormat = "20060102T150405.000000"

// Aggregator holds the result of the last successful Aggregate call.
// It is not safe for concurrent use.
type Aggregator struct {
	baseDir string
	log     zerolog.Logger
	now     func() time.Time
	data    []model.Transaction
	sources []string
}

// New creates an Aggregator resolving relative paths against baseDir and
// writing output there.
func New(baseDir string, log zerolog.Logger) *Aggregator {
	return &Aggregator{baseDir: baseDir, log: log, now: time.Now}
}

// NewFromWorkingDir creates an Aggregator rooted at the process working directory.
func NewFromWorkingDir(log zerolog.Logger) (*Aggregator, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return New(wd, log), nil
}

// BaseDir returns the directory paths are resolved against.
func (a *Aggregator) BaseDir() string { return a.baseDir }

// Data returns a copy of the aggregated transactions.
func (a *Aggregator) Data() []model.Transaction {
	return slices.Clone(a.data)
}

// Sources returns the input files behind the current result.
func (a *Aggregator) Sources() []string {
	return slices.Clone(a.sources)
}

// Aggregate reads every <prefix>*.csv in path and replaces the stored result.
// On error the previous result is left untouched.
func (a *Aggregator) Aggregate(path, prefix, currency string) error {
	cur, err := model.LookupCurrency(currency)
	if err != nil {
		return err
	}

	dir := importer.ResolveDir(a.baseDir, path)
	files, err := importer.Discover(dir, prefix)
	if err != nil {
		return err
	}
	for _, f := range files {
		a.log.Debug().Str("file", f.Path).Int64("size", f.Size).Msg("matched input")
	}

	tbl, err := importer.Load(files)
	if err != nil {
		return err
	}
	a.log.Debug().Int("files", len(files)).Int("rows", len(tbl.Rows)).Strs("columns", tbl.Columns).Msg("loaded table")

	txns, err := normalize(tbl, cur)
	if err != nil {
		return err
	}

	a.data = txns
	a.sources = make([]string, len(files))
	for i, f := range files {
		a.sources[i] = f.Path
	}
	a.log.Info().Str("dir", dir).Int("files", len(files)).Int("rows", len(txns)).Str("currency", cur.Name).Msg("aggregated")
	return nil
}

// ToCSV writes the result as CSV. See Save.
func (a *Aggregator) ToCSV(filename string) (string, error) {
	return a.Save(filename, &export.CSVExporter{})
}

// Save writes the result into the base directory using ex and returns the
// written path. filename gets ex's extension unless it already has it; an
// empty filename becomes result<timestamp>. Nothing is written, and the
// returned path is empty, when there is no result.
func (a *Aggregator) Save(filename string, ex export.Exporter) (string, error) {
	if len(a.data) == 0 {
		a.log.Warn().Msg("no aggregated data, nothing written")
		return "", nil
	}

	name := a.outputName(filename, ex.Ext())
	path := filepath.Join(a.baseDir, name)
	if err := ex.Export(path, a.data); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	a.log.Info().Str("path", path).Str("format", ex.Format()).Int("rows", len(a.data)).Msg("result written")
	return path, nil
}

func (a *Aggregator) outputName(filename, ext string) string {
	if filename == "" {
		return "result" + a.now().Format(resultStampFormat) + ext
	}
	if strings.HasSuffix(filename, ext) {
		return filename
	}
	return filename + ext
}
