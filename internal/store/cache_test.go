package store

import (
	"path/filepath"
	"testing"

	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func decode(t *testing.T, rt source.RecordType, line string, lineNo int) source.Record {
	t.Helper()
	rec, err := source.DecodeRecord(rt, []byte(line))
	require.NoError(t, err)
	rec.Line = lineNo
	return rec
}

func TestOpen_MigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err, "reopening an up-to-date database must not fail")
	require.NoError(t, c.Close())
}

func TestSaveFileAndLoadRecords(t *testing.T) {
	c := openTestCache(t)

	records := []source.Record{
		decode(t, source.TypeCategory, `{"type":"category","id":1,"name":"Food"}`, 1),
		decode(t, source.TypeEntry, `{"type":"entry","id":"e1","amount":"12.34","kind":"expense","date":"2024-01-15","category_id":1}`, 2),
	}
	require.NoError(t, c.SaveFile("/data/a.jsonl", records, FileInfo{MtimeNs: 10, SizeBytes: 200, ParseErrors: 1}))

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 10, SizeBytes: 200, ParseErrors: 1}, tracked["/data/a.jsonl"])

	loaded, err := c.LoadRecords([]string{"/data/a.jsonl"})
	require.NoError(t, err)
	require.Len(t, loaded["/data/a.jsonl"], 2)

	got := loaded["/data/a.jsonl"][1]
	assert.Equal(t, 2, got.Line)
	entry, ok := got.Value.(model.Entry)
	require.True(t, ok)
	assert.Equal(t, "12.34", entry.Amount.String())
	assert.Equal(t, model.ID("1"), entry.CategoryID)
}

func TestSaveFile_ReplacesPreviousRecords(t *testing.T) {
	c := openTestCache(t)

	first := []source.Record{
		decode(t, source.TypeTag, `{"type":"tag","id":1,"name":"a"}`, 1),
		decode(t, source.TypeTag, `{"type":"tag","id":2,"name":"b"}`, 2),
	}
	require.NoError(t, c.SaveFile("/data/a.jsonl", first, FileInfo{MtimeNs: 1, SizeBytes: 1}))

	second := []source.Record{decode(t, source.TypeTag, `{"type":"tag","id":3,"name":"c"}`, 1)}
	require.NoError(t, c.SaveFile("/data/a.jsonl", second, FileInfo{MtimeNs: 2, SizeBytes: 2}))

	n, err := c.RecordCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadRecords_OnlyRequestedFiles(t *testing.T) {
	c := openTestCache(t)

	rec := decode(t, source.TypeTag, `{"type":"tag","id":1,"name":"a"}`, 1)
	require.NoError(t, c.SaveFile("/data/a.jsonl", []source.Record{rec}, FileInfo{}))
	require.NoError(t, c.SaveFile("/data/b.jsonl", []source.Record{rec}, FileInfo{}))

	loaded, err := c.LoadRecords([]string{"/data/b.jsonl"})
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Contains(t, loaded, "/data/b.jsonl")
}

func TestDeleteFileAndClear(t *testing.T) {
	c := openTestCache(t)

	rec := decode(t, source.TypeTag, `{"type":"tag","id":1,"name":"a"}`, 1)
	require.NoError(t, c.SaveFile("/data/a.jsonl", []source.Record{rec}, FileInfo{}))
	require.NoError(t, c.SaveFile("/data/b.jsonl", []source.Record{rec}, FileInfo{}))

	require.NoError(t, c.DeleteFile("/data/a.jsonl"))
	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.NotContains(t, tracked, "/data/a.jsonl")

	require.NoError(t, c.Clear())
	n, err := c.RecordCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}
