// Package app wires the state mirrors, the reconciliation engine, and the
// comparison renderer into one service that implements the dependencies
// required by the HTTP API.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kabile/matchnight/internal/adapters/matchapi"
	"github.com/kabile/matchnight/internal/adapters/statfeed"
	"github.com/kabile/matchnight/internal/adapters/store"
	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/compare"
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
	"github.com/kabile/matchnight/pkg/debounce"
	"github.com/kabile/matchnight/pkg/logger"
	"github.com/kabile/matchnight/pkg/metrics"
)

// Store paths mirrored by the service. Writes always use the canonical
// id-keyed shape; reads tolerate the legacy shapes via the decoder.
const (
	pathAttendance = "attendance"
	pathMoods      = "moods"
	pathTeamA      = "picker/team_a"
	pathTeamB      = "picker/team_b"
	pathMaps       = "picker/maps"
)

// mapSlotCount is the number of orderable map slots in a series.
const mapSlotCount = 3

// MapSlot is one picked map with its starting-side choices. Empty team
// fields mean undecided (knife round).
type MapSlot struct {
	Map string      `json:"map"`
	T   roster.Team `json:"t"`
	CT  roster.Team `json:"ct"`
}

// teamNode is the store shape of one team subtree.
type teamNode struct {
	Kabile  string                  `json:"kabile"`
	Players map[string]stats.Player `json:"players"`
}

// Service mirrors the shared store, keeps rosters consistent with
// attendance, and maintains the comparison snapshot.
type Service struct {
	mu sync.RWMutex

	// Wiring
	store  store.Store
	feed   *statfeed.Feed
	static *statfeed.StaticFeeds
	match  *matchapi.Client

	// Configuration
	quiet      time.Duration
	maxPerTeam int

	// Mirrors. Written only by the mutation loop.
	attendance map[string]attendance.Entry
	moods      map[string]attendance.MoodEntry
	rosterA    roster.Roster
	rosterB    roster.Roster
	kabileA    string
	kabileB    string
	mapSlots   [mapSlotCount]MapSlot

	// Session-only stat edits overlaying the feed tables.
	edits map[string]map[stats.Key]*float64

	// Comparison snapshot, rebuilt whole on each debounce fire.
	comparison compare.Comparison
	revision   uint64
	trigger    *debounce.Trigger
	onChange   func()

	// Counters for GetStats.
	snapshotsSeen    uint64
	decodeDrops      uint64
	evictionsApplied uint64
	redraws          uint64

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the shared state store.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithFeed sets the stat feed.
func WithFeed(f *statfeed.Feed) Option {
	return func(s *Service) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithStaticFeeds sets the kabile/map catalogue source.
func WithStaticFeeds(f *statfeed.StaticFeeds) Option {
	return func(s *Service) {
		s.static = f
	}
}

// WithMatchClient sets the match orchestration client.
func WithMatchClient(c *matchapi.Client) Option {
	return func(s *Service) {
		s.match = c
	}
}

// WithQuietPeriod sets the debounce window for comparison rebuilds.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.quiet = d
		}
	}
}

// WithMaxPlayersPerTeam sets the advisory roster capacity.
func WithMaxPlayersPerTeam(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPerTeam = n
		}
	}
}

// WithChangeListener registers a callback fired after each comparison
// rebuild. Used to push fresh snapshots to websocket clients.
func WithChangeListener(fn func()) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		quiet:      100 * time.Millisecond,
		maxPerTeam: 15,
		attendance: make(map[string]attendance.Entry),
		moods:      make(map[string]attendance.MoodEntry),
		rosterA:    make(roster.Roster),
		rosterB:    make(roster.Roster),
		edits:      make(map[string]map[stats.Key]*float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the store paths and begins processing snapshots.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.trigger = debounce.New(s.quiet, s.rebuildComparison)

	events := make(chan store.Snapshot, 256)
	paths := []string{pathAttendance, pathMoods, pathTeamA, pathTeamB, pathMaps}
	for _, path := range paths {
		ch, err := s.store.Subscribe(runCtx, path)
		if err != nil {
			cancel()
			return fmt.Errorf("subscribe %s: %w", path, err)
		}
		s.wg.Add(1)
		go s.forward(runCtx, ch, events)
	}

	s.wg.Add(1)
	go s.loop(runCtx, events)

	if s.feed != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.feed.LoadAll(runCtx); err != nil {
				s.logger.Warn(runCtx, "stat table load incomplete", logger.Error(err))
			}
		}()
	}

	s.started = true
	s.logger.Info(ctx, "match night service started",
		logger.Duration("quietPeriod", s.quiet),
		logger.Int("maxPlayersPerTeam", s.maxPerTeam),
	)
	return nil
}

// Stop shuts down the listeners and the mutation loop.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	trigger := s.trigger
	s.mu.Unlock()

	cancel()
	if trigger != nil {
		trigger.Stop()
	}
	s.wg.Wait()
	s.logger.Info(context.Background(), "match night service stopped")
}

// forward relays one subscription into the shared event channel.
func (s *Service) forward(ctx context.Context, ch <-chan store.Snapshot, events chan<- store.Snapshot) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			select {
			case events <- snap:
			case <-ctx.Done():
				return
			}
		}
	}
}

// loop is the single writer of all mirrors. Every store snapshot flows
// through here, keeping the data flow unidirectional.
func (s *Service) loop(ctx context.Context, events <-chan store.Snapshot) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-events:
			s.apply(ctx, snap)
		}
	}
}

func (s *Service) apply(ctx context.Context, snap store.Snapshot) {
	metrics.RecordSnapshot(snap.Path)

	s.mu.Lock()
	s.snapshotsSeen++
	switch {
	case snap.Path == pathAttendance:
		s.applyAttendance(ctx, snap.Value)
	case snap.Path == pathMoods:
		s.applyMoods(ctx, snap.Value)
	case snap.Path == pathTeamA:
		s.kabileA, s.rosterA = decodeTeam(snap.Value)
		metrics.UpdateRosterSize(string(roster.TeamA), len(s.rosterA))
	case snap.Path == pathTeamB:
		s.kabileB, s.rosterB = decodeTeam(snap.Value)
		metrics.UpdateRosterSize(string(roster.TeamB), len(s.rosterB))
	case strings.HasPrefix(snap.Path, pathMaps):
		s.mapSlots = decodeMapSlots(snap.Value)
	}
	evictions := roster.Reconcile(s.attendance, s.rosterA, s.rosterB)
	s.mu.Unlock()

	if len(evictions) > 0 {
		s.applyEvictions(ctx, evictions)
	}
	s.armComparison()
}

func (s *Service) applyAttendance(ctx context.Context, value any) {
	raw, ok := value.(map[string]any)
	if !ok {
		s.attendance = make(map[string]attendance.Entry)
		return
	}
	entries, dropped := attendance.DecodeState(raw)
	if dropped > 0 {
		s.decodeDrops += uint64(dropped)
		metrics.RecordDecodeDrops(dropped)
		s.logger.Warn(ctx, "attendance batch had undecodable entries",
			logger.Int("dropped", dropped),
			logger.Int("decoded", len(entries)),
		)
	}
	s.attendance = entries
}

func (s *Service) applyMoods(ctx context.Context, value any) {
	raw, ok := value.(map[string]any)
	if !ok {
		s.moods = make(map[string]attendance.MoodEntry)
		return
	}
	entries, dropped := attendance.DecodeMoods(raw)
	if dropped > 0 {
		s.decodeDrops += uint64(dropped)
		metrics.RecordDecodeDrops(dropped)
		s.logger.Warn(ctx, "mood batch had undecodable entries",
			logger.Int("dropped", dropped),
			logger.Int("decoded", len(entries)),
		)
	}
	s.moods = entries
}

// applyEvictions removes no-longer-coming players from both rosters in one
// atomic batch. On failure nothing is applied; the next snapshot retries
// the same recompute.
func (s *Service) applyEvictions(ctx context.Context, evictions []roster.Eviction) {
	patch := make(map[string]any, len(evictions))
	for _, ev := range evictions {
		patch[teamPath(ev.Team)+"/players/"+ev.PlayerID] = nil
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordEvictionBatchFailure()
		s.logger.Error(ctx, "eviction batch failed",
			logger.Int("evictions", len(evictions)),
			logger.Error(err),
		)
		return
	}
	s.mu.Lock()
	s.evictionsApplied += uint64(len(evictions))
	s.mu.Unlock()
	metrics.RecordEvictions(len(evictions))
	s.logger.Info(ctx, "evicted absent players from rosters",
		logger.Int("evictions", len(evictions)),
	)
}

// armComparison schedules a comparison rebuild after the quiet period.
func (s *Service) armComparison() {
	s.mu.RLock()
	trigger := s.trigger
	s.mu.RUnlock()
	if trigger == nil {
		return
	}
	if trigger.Arm() {
		metrics.RecordChartCoalesced()
	}
}

// rebuildComparison replaces the comparison snapshot wholesale.
func (s *Service) rebuildComparison() {
	s.mu.Lock()
	s.revision++
	s.comparison = compare.Build(
		s.revision,
		s.teamLabelLocked(roster.TeamA),
		s.teamLabelLocked(roster.TeamB),
		s.averagesLocked(s.rosterA),
		s.averagesLocked(s.rosterB),
	)
	s.redraws++
	onChange := s.onChange
	s.mu.Unlock()

	metrics.RecordChartRedraw()
	if onChange != nil {
		onChange()
	}
}

func teamPath(t roster.Team) string {
	if t == roster.TeamB {
		return pathTeamB
	}
	return pathTeamA
}

// decodeTeam converts a team subtree snapshot into its mirror form.
func decodeTeam(value any) (string, roster.Roster) {
	var node teamNode
	if !reencode(value, &node) {
		return "", make(roster.Roster)
	}
	r := make(roster.Roster, len(node.Players))
	for id, p := range node.Players {
		if p.ID == "" {
			p.ID = id
		}
		r[p.ID] = p
	}
	return node.Kabile, r
}

// decodeMapSlots converts the maps subtree into the three ordered slots.
// Slot keys are "1".."3"; missing slots stay zero.
func decodeMapSlots(value any) [mapSlotCount]MapSlot {
	var out [mapSlotCount]MapSlot
	var raw map[string]MapSlot
	if !reencode(value, &raw) {
		return out
	}
	for i := 0; i < mapSlotCount; i++ {
		if slot, ok := raw[fmt.Sprintf("%d", i+1)]; ok {
			out[i] = slot
		}
	}
	return out
}

// reencode converts a store JSON-shaped value into dst. Store values are
// already JSON-canonical so a round-trip is lossless.
func reencode(value any, dst any) bool {
	if value == nil {
		return false
	}
	buf, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(buf, dst) == nil
}
