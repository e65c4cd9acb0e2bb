// Package matchapi builds and submits match configurations to the external
// match orchestration endpoint.
package matchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kabile/matchnight/internal/domain/roster"
)

// Sentinel kinds for match submission errors.
var (
	ErrNoEndpoint   = errors.New("no match endpoint configured")
	ErrEmptyTeam    = errors.New("team has no players")
	ErrInvalidEntry = errors.New("rostered player missing id or name")
	ErrRejected     = errors.New("match endpoint rejected the request")
)

// Side is the starting-side choice for one map slot.
type Side string

const (
	SideTeamACT Side = "team_a_ct"
	SideTeamBCT Side = "team_b_ct"
	SideKnife   Side = "knife"
)

// TeamConfig is one side of the match request.
type TeamConfig struct {
	Name    string            `json:"name"`
	Players map[string]string `json:"players"`
}

// Request is the wire shape the orchestration endpoint expects.
type Request struct {
	Team1          TeamConfig     `json:"team1"`
	Team2          TeamConfig     `json:"team2"`
	NumMaps        int            `json:"num_maps"`
	MapList        []string       `json:"maplist"`
	MapSides       []string       `json:"map_sides"`
	ClinchSeries   bool           `json:"clinch_series"`
	PlayersPerTeam int            `json:"players_per_team"`
	CVars          map[string]any `json:"cvars"`
}

const defaultTimeout = 30 * time.Second

// Client submits match requests over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// New creates a Client targeting endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildRequest assembles the wire request from the drafted rosters and the
// chosen map slots. Side picks translate per slot: a slot whose CT pick is
// team A maps to "team1_ct", team B to "team2_ct", anything else to a knife
// round. Slots beyond the picked maps pad out with knife rounds.
func BuildRequest(nameA, nameB string, a, b roster.Roster, maps []string, sides []Side) (Request, error) {
	team1, err := teamConfig(nameA, a)
	if err != nil {
		return Request{}, fmt.Errorf("team1: %w", err)
	}
	team2, err := teamConfig(nameB, b)
	if err != nil {
		return Request{}, fmt.Errorf("team2: %w", err)
	}

	mapSides := make([]string, len(maps))
	for i := range maps {
		side := SideKnife
		if i < len(sides) {
			side = sides[i]
		}
		switch side {
		case SideTeamACT:
			mapSides[i] = "team1_ct"
		case SideTeamBCT:
			mapSides[i] = "team2_ct"
		default:
			mapSides[i] = "knife"
		}
	}

	return Request{
		Team1:          team1,
		Team2:          team2,
		NumMaps:        len(maps),
		MapList:        append([]string(nil), maps...),
		MapSides:       mapSides,
		ClinchSeries:   true,
		PlayersPerTeam: len(a),
		CVars: map[string]any{
			"tv_enable": 1,
			"hostname":  fmt.Sprintf("%s vs %s", nameA, nameB),
		},
	}, nil
}

// Submit posts the request and returns the endpoint's raw response body.
func (c *Client) Submit(ctx context.Context, req Request) ([]byte, error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode match request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit match: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return body, nil
}

func teamConfig(name string, r roster.Roster) (TeamConfig, error) {
	if len(r) == 0 {
		return TeamConfig{}, ErrEmptyTeam
	}
	players := make(map[string]string, len(r))
	for id, p := range r {
		if id == "" || p.Name == "" {
			return TeamConfig{}, fmt.Errorf("%w: %q", ErrInvalidEntry, id)
		}
		players[id] = p.Name
	}
	return TeamConfig{Name: name, Players: players}, nil
}
