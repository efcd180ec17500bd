package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/aggregate/internal/commands"
	"github.com/cleared-dev/aggregate/internal/export"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "aggregate-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "aggregate")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/aggregate")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runAggregate runs the binary in dir with a clean AGGREGATE_* environment.
func runAggregate(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "AGGREGATE_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, "AGGREGATE_LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// workspace lays out files/bank1.csv and files/bank2.csv under a temp dir.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "files", "bank1.csv"),
		"date,type,amounts,from,to\n2023-03-05,add,100.5,198,182\n")
	writeFile(t, filepath.Join(dir, "files", "bank2.csv"),
		"date_readable,type,euro,cents,from,to\n08 March 2023,remove,12,50,198,182\n")
	return dir
}

func TestAggregate_DefaultCSV(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--filename", "merged")
	require.NoError(t, err, out)
	assert.Contains(t, out, "File merged.csv was created in "+dir)

	f, err := os.Open(filepath.Join(dir, "merged.csv"))
	require.NoError(t, err)
	defer f.Close()

	txns, err := export.ReadTransactions(f)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "100.5", txns[0].Amount.String())
	assert.Equal(t, "add", txns[0].Transaction)
	assert.Equal(t, "12.5", txns[1].Amount.String())
	assert.Equal(t, "08 March 2023", txns[1].DateReadable)
}

func TestAggregate_GeneratedName(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir)
	require.NoError(t, err, out)

	matches, err := filepath.Glob(filepath.Join(dir, "result*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, out, "File "+filepath.Base(matches[0])+" was created in")
}

func TestAggregate_JSONFormat(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--filename", "merged", "--format", "json")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "merged.json"))
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 2)
}

func TestAggregate_ConfigFile(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "aggregate.yaml"), "files_prefix: bank1\nfilename: from_config\n")
	writeFile(t, filepath.Join(dir, "files", "bank1b.csv"),
		"date,type,amounts,from,to\n2023-03-06,add,1,198,182\n")

	out, err := runAggregate(t, dir)
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(dir, "from_config.csv"))
}

func TestAggregate_WrongPath(t *testing.T) {
	dir := t.TempDir()

	out, err := runAggregate(t, dir, "--files_folder", "missing")
	require.Error(t, err)
	assert.Contains(t, out, "Wrong path")
}

func TestAggregate_SingleFile(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--files_prefix", "bank1")
	require.Error(t, err)
	assert.Contains(t, out, "only one file")
}

func TestAggregate_NoFiles(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--files_prefix", "card")
	require.Error(t, err)
	assert.Contains(t, out, "There are no files")
}

func TestAggregate_UnknownFormat(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--format", "parquet")
	require.Error(t, err)
	assert.Contains(t, out, `unknown format "parquet"`)
}

func TestAggregate_UnknownCurrency(t *testing.T) {
	dir := workspace(t)

	out, err := runAggregate(t, dir, "--currency", "yen")
	require.Error(t, err)
	assert.Contains(t, out, "unknown currency")
}

func TestVersion(t *testing.T) {
	out, err := runAggregate(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "aggregate version")
}

func TestInit_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runAggregate(t, dir, "init")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "aggregate.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "files_folder: files")
	assert.Contains(t, contents, "currency: euro")

	info, err := os.Stat(filepath.Join(dir, "files"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runAggregate(t, dir, "init")
	require.NoError(t, err)

	out, err := runAggregate(t, dir, "init")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runAggregate(t, dir, "init", "--force")
	require.NoError(t, err)
}

func TestInit_Directory(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "project")
	require.NoError(t, os.Mkdir(target, 0o755))

	_, err := runAggregate(t, parent, "init", "project")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, "aggregate.yaml"))
}

func TestInit_WritesToCommandOutput(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	cmd := commands.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"init", dir})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Initialized "+filepath.Join(dir, "aggregate.yaml")+"\n", out.String())
}
