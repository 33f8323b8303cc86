package pipeline

import (
	"container/list"
	"sync"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/mitchellh/hashstructure/v2"
)

// ReportCache memoizes composed reports for one snapshot revision. When a
// lookup arrives with a different revision every cached report is dropped,
// so a mutation of any journal invalidates all derived figures at once.
type ReportCache struct {
	mu       sync.Mutex
	maxSize  int
	ttl      time.Duration
	revision uint64
	items    map[uint64]*list.Element
	lru      *list.List

	hits   int64
	misses int64
}

type reportKey struct {
	Range         string
	From          string
	CategoryID    string
	Uncategorized bool
	Locale        string
}

type cachedReport struct {
	key       uint64
	report    model.Report
	expiresAt time.Time
}

// NewReportCache creates a cache holding up to maxSize reports for ttl.
func NewReportCache(maxSize int, ttl time.Duration) *ReportCache {
	if maxSize < 1 {
		maxSize = 64
	}
	return &ReportCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[uint64]*list.Element),
		lru:     list.New(),
	}
}

// Report returns the composed report for req, computing it on a miss.
func (c *ReportCache) Report(snap *Snapshot, req ReportRequest, now time.Time, loc config.Locale) model.Report {
	key, err := signature(req, now, loc)
	if err != nil {
		return Compose(snap, req, now, loc)
	}

	if r, ok := c.get(snap.Revision, key, now); ok {
		return r
	}

	r := Compose(snap, req, now, loc)
	c.set(snap.Revision, key, r, now)
	return r
}

// signature hashes the request after resolving its window, so the same
// "6m" request maps to a new key once the calendar day changes.
func signature(req ReportRequest, now time.Time, loc config.Locale) (uint64, error) {
	k := reportKey{
		Range:         string(req.Window.Range),
		CategoryID:    string(req.CategoryID),
		Uncategorized: req.Uncategorized,
		Locale:        string(loc),
	}
	if from := req.Window.From(now); from != nil {
		k.From = from.Format("2006-01-02")
	}
	return hashstructure.Hash(k, hashstructure.FormatV2, nil)
}

func (c *ReportCache) get(revision, key uint64, now time.Time) (model.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if revision != c.revision {
		c.resetLocked(revision)
	}

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return model.Report{}, false
	}
	item := elem.Value.(*cachedReport)
	if c.ttl > 0 && now.After(item.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return model.Report{}, false
	}
	c.lru.MoveToFront(elem)
	c.hits++
	return item.report, true
}

func (c *ReportCache) set(revision, key uint64, r model.Report, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer snapshot may have been seen while this report was computed.
	if revision != c.revision {
		return
	}

	item := &cachedReport{key: key, report: r, expiresAt: now.Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(item)
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}
}

func (c *ReportCache) removeLocked(elem *list.Element) {
	item := elem.Value.(*cachedReport)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

func (c *ReportCache) resetLocked(revision uint64) {
	c.revision = revision
	c.items = make(map[uint64]*list.Element)
	c.lru.Init()
}

// Purge drops every cached report.
func (c *ReportCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(c.revision)
}

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	Hits     int64  `json:"hits"`
	Misses   int64  `json:"misses"`
	Size     int    `json:"size"`
	Revision uint64 `json:"revision"`
}

// Stats returns hit and miss counters and the current size.
func (c *ReportCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len(), Revision: c.revision}
}
