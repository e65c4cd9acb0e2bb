// Package statfeed loads the static JSON stat tables and serves point
// lookups keyed by player id.
package statfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/sync/errgroup"

	"github.com/kabile/matchnight/internal/domain/stats"
	"github.com/kabile/matchnight/pkg/metrics"
)

// Table names one of the three independently loaded stat tables.
type Table string

const (
	Season Table = "season"
	Last10 Table = "last10"
	Night  Table = "night"
)

// Sentinel kinds for feed errors.
var (
	ErrNotFound    = errors.New("player not found in table")
	ErrTableAbsent = errors.New("stat table not loaded")
	ErrNoURL       = errors.New("no URL configured for table")
)

// Record is one player's row in a stat table, reduced to the metrics this
// service consumes. Any metric may be absent.
type Record struct {
	PlayerID string
	Name     string
	HLTV2    *float64
	ADR      *float64
	KD       *float64
}

const defaultTimeout = 15 * time.Second

// Feed fetches and indexes the stat tables. A successful load replaces the
// whole per-table index; there is no incremental rebuild.
type Feed struct {
	mu     sync.RWMutex
	tables map[Table]map[string]Record

	urls   map[Table]string
	client *http.Client
}

// Option configures a Feed.
type Option func(*Feed)

// WithTableURL sets the fetch URL for a table.
func WithTableURL(table Table, url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.urls[table] = url
		}
	}
}

// WithHTTPClient overrides the HTTP client, e.g. in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Feed) {
		if c != nil {
			f.client = c
		}
	}
}

// New creates a Feed. Fetches go through an in-memory caching transport so
// repeated reloads of unchanged tables stay cheap.
func New(opts ...Option) *Feed {
	f := &Feed{
		tables: make(map[Table]map[string]Record),
		urls:   make(map[Table]string),
		client: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// rawRecord accepts both header conventions seen across the feeds: the
// season/last10 tables use snake_case keys, the per-night table ships
// display-cased keys. Exact-match JSON fields win over the case-insensitive
// fallback, so declaring both shapes side by side disambiguates them.
type rawRecord struct {
	SteamID    json.RawMessage `json:"steam_id"`
	Name       string          `json:"name"`
	HLTV2      *float64        `json:"hltv_2"`
	ADR        *float64        `json:"adr"`
	KD         *float64        `json:"kd"`
	NightHLTV2 *float64        `json:"HLTV 2"`
	NightADR   *float64        `json:"ADR"`
	NightKD    *float64        `json:"K/D"`
}

// Load fetches one table and swaps in a fresh id-indexed map. On failure
// the previous contents for that table (possibly absent) are left as-is.
func (f *Feed) Load(ctx context.Context, table Table) error {
	url, ok := f.urls[table]
	if !ok {
		return fmt.Errorf("%s: %w", table, ErrNoURL)
	}

	start := time.Now()
	rows, err := f.fetch(ctx, url)
	if err != nil {
		metrics.RecordFeedLoadError(string(table))
		return fmt.Errorf("load %s: %w", table, err)
	}
	metrics.ObserveFeedLoad(string(table), time.Since(start).Seconds())

	index := make(map[string]Record, len(rows))
	for _, row := range rows {
		id := steamIDString(row.SteamID)
		if id == "" {
			continue
		}
		index[id] = Record{
			PlayerID: id,
			Name:     row.Name,
			HLTV2:    firstOf(row.HLTV2, row.NightHLTV2),
			ADR:      firstOf(row.ADR, row.NightADR),
			KD:       firstOf(row.KD, row.NightKD),
		}
	}

	f.mu.Lock()
	f.tables[table] = index
	f.mu.Unlock()
	return nil
}

// LoadAll fetches every configured table concurrently. Per-table failures
// are isolated: a failed table stays absent while the others load.
func (f *Feed) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	for table := range f.urls {
		table := table
		g.Go(func() error { return f.Load(ctx, table) })
	}
	return g.Wait()
}

// Lookup returns the record for playerID in table. ErrTableAbsent means the
// table never loaded; ErrNotFound means the player is not in it.
func (f *Feed) Lookup(table Table, playerID string) (Record, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	index, ok := f.tables[table]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", table, ErrTableAbsent)
	}
	rec, ok := index[playerID]
	if !ok {
		return Record{}, fmt.Errorf("%s/%s: %w", table, playerID, ErrNotFound)
	}
	return rec, nil
}

// PlayerStats merges the season and last-10 lookups for a player. Missing
// tables or rows simply leave the corresponding fields absent.
func (f *Feed) PlayerStats(playerID string) stats.PlayerStats {
	var out stats.PlayerStats
	if rec, err := f.Lookup(Last10, playerID); err == nil {
		out.L10HLTV2 = rec.HLTV2
		out.L10ADR = rec.ADR
		out.L10KD = rec.KD
	}
	if rec, err := f.Lookup(Season, playerID); err == nil {
		out.SHLTV2 = rec.HLTV2
		out.SADR = rec.ADR
		out.SKD = rec.KD
	}
	return out
}

func (f *Feed) fetch(ctx context.Context, url string) ([]rawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var rows []rawRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// steamIDString normalizes the id field, which historical exports stored as
// either a JSON string or a bare number.
func steamIDString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstOf(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
