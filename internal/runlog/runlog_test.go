package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		RunID:     "20250115-001",
		Timestamp: testTime,
		Folder:    "/data/files",
		Prefix:    "bank",
		Files:     2,
		Rows:      5,
		Output:    "/data/result.csv",
	}
}

func logPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "logs", "runs.csv")
}

func TestAppend_NewFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, []Entry{testEntry()}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bank", entries[0].Prefix)
}

func TestAppend_ExistingFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.RunID = "20250115-002"
	e2.Prefix = "card"
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bank", entries[0].Prefix)
	assert.Equal(t, "card", entries[1].Prefix)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header written once")
}

func TestRead_RoundTrip(t *testing.T) {
	path := logPath(t)
	original := testEntry()
	require.NoError(t, Append(path, []Entry{original}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(logPath(t))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadRow(t *testing.T) {
	path := logPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(Header+"\nx,2025-01-15T10:30:00Z,f,p,two,5,o\n"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing files")
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 fields")
}

func TestTimestampFormat(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])
}

func TestRecord_AssignsSequentialIDs(t *testing.T) {
	path := logPath(t)
	e := testEntry()
	e.RunID = ""

	first, err := Record(path, e)
	require.NoError(t, err)
	assert.Equal(t, "20250115-001", first)

	second, err := Record(path, e)
	require.NoError(t, err)
	assert.Equal(t, "20250115-002", second)

	e.Timestamp = testTime.AddDate(0, 0, 1)
	next, err := Record(path, e)
	require.NoError(t, err)
	assert.Equal(t, "20250116-001", next)

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestDecode_Empty(t *testing.T) {
	entries, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestDecode_WrongHeader(t *testing.T) {
	_, err := Decode(strings.NewReader("a,b,c,d,e,f,g\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected run log header")
}

func TestAppend_EmptyExistingFileGetsHeader(t *testing.T) {
	path := logPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, Append(path, []Entry{testEntry()}))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
