package pipeline

import (
	"testing"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
)

func TestReportCache_HitsAndRevisionPurge(t *testing.T) {
	cache := NewReportCache(8, time.Hour)
	now := day(t, "2024-02-01")
	req := ReportRequest{Window: Window{Range: RangeAll}}

	snap := &Snapshot{Entries: scenarioEntries(t), Lookups: lookupsWith(food), Revision: 1}

	first := cache.Report(snap, req, now, config.LocaleEnglish)
	second := cache.Report(snap, req, now, config.LocaleEnglish)
	assertDec(t, "cached income", second.Income.Total, first.Income.Total.String())

	st := cache.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss size 1", st)
	}

	changed := &Snapshot{
		Entries:  append(scenarioEntries(t), entry(t, "4", "50", model.KindIncome, "2024-01-25", "")),
		Lookups:  lookupsWith(food),
		Revision: 2,
	}
	r := cache.Report(changed, req, now, config.LocaleEnglish)
	assertDec(t, "income after mutation", r.Income.Total, "250")
	if st := cache.Stats(); st.Revision != 2 || st.Size != 1 {
		t.Errorf("stats after revision change = %+v", st)
	}
}

func TestReportCache_KeyIncludesRequestAndLocale(t *testing.T) {
	cache := NewReportCache(8, time.Hour)
	now := day(t, "2024-02-01")
	snap := &Snapshot{Entries: scenarioEntries(t), Lookups: lookupsWith(food), Revision: 7}

	all := ReportRequest{Window: Window{Range: RangeAll}}
	foodOnly := ReportRequest{Window: Window{Range: RangeAll}, CategoryID: "food"}

	_ = cache.Report(snap, all, now, config.LocaleEnglish)
	r := cache.Report(snap, foodOnly, now, config.LocaleEnglish)
	assertDec(t, "food income", r.Income.Total, "0")

	tr := cache.Report(snap, all, now, config.LocaleTurkish)
	if tr.Trend.Labels[0] != "Ocak 2024" {
		t.Errorf("label = %q, want Ocak 2024", tr.Trend.Labels[0])
	}
	if st := cache.Stats(); st.Misses != 3 || st.Hits != 0 {
		t.Errorf("stats = %+v, want 3 misses", st)
	}
}

func TestReportCache_EvictsAndExpires(t *testing.T) {
	cache := NewReportCache(1, time.Minute)
	now := day(t, "2024-02-01")
	snap := &Snapshot{Entries: scenarioEntries(t), Revision: 1}

	a := ReportRequest{Window: Window{Range: RangeAll}}
	b := ReportRequest{Window: Window{Range: Range6M}}

	cache.Report(snap, a, now, config.LocaleEnglish)
	cache.Report(snap, b, now, config.LocaleEnglish)
	cache.Report(snap, a, now, config.LocaleEnglish)
	if st := cache.Stats(); st.Hits != 0 || st.Size != 1 {
		t.Errorf("after eviction stats = %+v", st)
	}

	cache.Report(snap, a, now.Add(2*time.Minute), config.LocaleEnglish)
	if st := cache.Stats(); st.Hits != 0 {
		t.Errorf("expired entry served: %+v", st)
	}

	cache.Purge()
	if st := cache.Stats(); st.Size != 0 {
		t.Errorf("size after purge = %d", st.Size)
	}
}
