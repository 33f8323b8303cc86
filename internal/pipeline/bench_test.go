package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/store"
)

func benchSnapshot(n int) *Snapshot {
	kinds := model.Kinds
	lk := NewLookups()
	for i := 0; i < 20; i++ {
		id := model.ID(fmt.Sprint(i))
		lk.Categories[id] = model.Category{ID: id, Name: fmt.Sprintf("cat-%d", i)}
	}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]model.Entry, n)
	for i := range entries {
		entries[i] = model.Entry{
			ID:         model.ID(fmt.Sprint(i)),
			Amount:     dec(fmt.Sprintf("%d.%02d", i%1000, i%100)),
			Currency:   "TRY",
			Kind:       kinds[i%len(kinds)],
			Date:       start.AddDate(0, 0, i%1500),
			CategoryID: model.ID(fmt.Sprint(i % 23)),
		}
	}
	return &Snapshot{Entries: entries, Lookups: lk, Revision: 1}
}

func BenchmarkCompose(b *testing.B) {
	snap := benchSnapshot(50_000)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	req := ReportRequest{Window: Window{Range: Range12M}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compose(snap, req, now, config.LocaleEnglish)
	}
}

func BenchmarkReportCache(b *testing.B) {
	snap := benchSnapshot(50_000)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	req := ReportRequest{Window: Window{Range: Range12M}}
	cache := NewReportCache(16, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Report(snap, req, now, config.LocaleEnglish)
	}
}

func BenchmarkLoadWithCache(b *testing.B) {
	dir := b.TempDir()
	var lines []string
	for i := 0; i < 5000; i++ {
		lines = append(lines, fmt.Sprintf(`{"type":"entry","id":"%d","amount":"%d.50","kind":"expense","date":"2024-01-%02d"}`, i, i, i%28+1))
	}
	for f := 0; f < 8; f++ {
		path := filepath.Join(dir, fmt.Sprintf("%02d.jsonl", f))
		if err := writeBenchFile(path, strings.Join(lines, "\n")); err != nil {
			b.Fatal(err)
		}
	}

	cache, err := store.Open(filepath.Join(b.TempDir(), "cache.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadWithCache(dir, cache, nil); err != nil {
			b.Fatal(err)
		}
	}
}
