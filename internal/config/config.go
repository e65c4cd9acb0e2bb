// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Stat table endpoints. An empty URL leaves that table unloaded.
	SeasonStatsURL string `koanf:"season_stats_url"`
	Last10StatsURL string `koanf:"last10_stats_url"`
	NightStatsURL  string `koanf:"night_stats_url"`

	// Static catalogue endpoints; built-in defaults apply when unreachable.
	KabileURL  string `koanf:"kabile_url"`
	MapPoolURL string `koanf:"map_pool_url"`

	// MatchAPIURL is the match orchestration endpoint match requests POST to.
	MatchAPIURL string `koanf:"match_api_url"`

	// CompareQuietMS is the debounce window for comparison rebuilds.
	CompareQuietMS int `koanf:"compare_quiet_ms"`

	// MaxPlayersPerTeam is advisory; rosters are never truncated to it.
	MaxPlayersPerTeam int `koanf:"max_players_per_team"`

	// StoreBufferSize bounds each store subscriber's delivery channel.
	StoreBufferSize int `koanf:"store_buffer_size"`

	// EnableWS toggles the websocket push endpoint.
	EnableWS bool `koanf:"enable_ws"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		CompareQuietMS:    100,
		MaxPlayersPerTeam: 15,
		StoreBufferSize:   64,
		EnableWS:          true,
	}
}
