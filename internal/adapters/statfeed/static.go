package statfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kabile/matchnight/pkg/logger"
)

// Built-in fallbacks used whenever the static feeds are unreachable or
// malformed. The night must go on without them.
var (
	defaultKabileNames = []string{
		"Team A",
		"Team B",
		"Kabile 1",
		"HilingTurimik",
		"Kianlar",
		"ShilkadinoguflarI",
	}
	defaultMapPool = []string{
		"de_anubis",
		"de_ancient",
		"de_dust2",
		"de_inferno",
		"de_mirage",
		"de_nuke",
		"de_overpass",
	}
)

// StaticFeeds serves the team-name catalogue and the active map pool. Both
// degrade to built-in defaults rather than failing.
type StaticFeeds struct {
	kabileURL string
	mapsURL   string
	client    *http.Client
	log       logger.Logger
}

// NewStatic creates a StaticFeeds sharing the caching client of feed. URLs
// may be empty, in which case only the defaults are served.
func NewStatic(feed *Feed, kabileURL, mapsURL string) *StaticFeeds {
	return &StaticFeeds{
		kabileURL: kabileURL,
		mapsURL:   mapsURL,
		client:    feed.client,
		log:       logger.Named("statfeed"),
	}
}

// KabileNames returns the selectable team names.
func (s *StaticFeeds) KabileNames(ctx context.Context) []string {
	names, err := s.fetchStrings(ctx, s.kabileURL)
	if err != nil {
		if !errors.Is(err, ErrNoURL) {
			s.log.Warn(ctx, "kabile feed unavailable, using defaults", logger.Error(err))
		}
		return append([]string(nil), defaultKabileNames...)
	}
	return names
}

// MapPool returns the active competitive map pool.
func (s *StaticFeeds) MapPool(ctx context.Context) []string {
	maps, err := s.fetchStrings(ctx, s.mapsURL)
	if err != nil {
		if !errors.Is(err, ErrNoURL) {
			s.log.Warn(ctx, "map feed unavailable, using defaults", logger.Error(err))
		}
		return append([]string(nil), defaultMapPool...)
	}
	return maps
}

func (s *StaticFeeds) fetchStrings(ctx context.Context, url string) ([]string, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
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
	var out []string
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty feed")
	}
	return out, nil
}
