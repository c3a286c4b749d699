package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Travel cost policies the schedule routers support.
const (
	TravelCostLinkLength = "linkLength"
	TravelCostTravelTime = "travelTime"
)

// MapperConfig represents the complete mapper configuration
type MapperConfig struct {
	Mapper MapperSettings `yaml:"mapper"`
	Log    LogConfig      `yaml:"log"`
	Output OutputConfig   `yaml:"output"`
}

// MapperSettings contains the schedule-to-network mapping settings
type MapperSettings struct {
	// ModeRoutingAssignment maps each schedule transport mode to the
	// set of network modes its routes may be routed on. Schedule modes
	// without an assignment are skipped during mapping.
	ModeRoutingAssignment map[string][]string `yaml:"modeRoutingAssignment"`

	// MaxLinkCandidateDistance is the initial search radius in meters
	// for stop link candidates.
	MaxLinkCandidateDistance float64 `yaml:"maxLinkCandidateDistance"`

	// MaxExpandedRadius caps the candidate search radius; the radius
	// doubles from MaxLinkCandidateDistance up to this value while the
	// candidate count stays below NLinkThreshold.
	MaxExpandedRadius float64 `yaml:"maxExpandedRadius"`

	// MaxNClosestLinks is the upper bound on candidates per stop.
	MaxNClosestLinks int `yaml:"maxNClosestLinks"`

	// NLinkThreshold is the minimum acceptable candidate count before
	// the search radius grows.
	NLinkThreshold int `yaml:"nLinkThreshold"`

	// TravelCostType selects the router cost policy: "linkLength" or
	// "travelTime".
	TravelCostType string `yaml:"travelCostType"`

	// UseArtificialLinks enables synthesizing artificial links when a
	// stop has no usable candidates or no path joins two consecutive
	// stop links. When false such routes are unmappable.
	UseArtificialLinks bool `yaml:"useArtificialLinks"`

	// AllowLoopLinks permits loop links (from == to) as candidates.
	AllowLoopLinks bool `yaml:"allowLoopLinks"`

	// ScheduleFreespeedModes lists the network modes whose link
	// freespeeds the finalizer may raise to satisfy schedule timings.
	ScheduleFreespeedModes []string `yaml:"scheduleFreespeedModes"`

	// RoutingWithCandidateDistance adds the stop-attachment penalty to
	// pseudo-graph edge weights.
	RoutingWithCandidateDistance bool `yaml:"routingWithCandidateDistance"`

	// RemoveNotUsedStopFacilities drops stop facilities no route
	// references after mapping.
	RemoveNotUsedStopFacilities bool `yaml:"removeNotUsedStopFacilities"`

	// PruneUnreachableNetwork removes nodes and links not reachable
	// from any schedule-used link.
	PruneUnreachableNetwork bool `yaml:"pruneUnreachableNetwork"`

	// NThreads is the worker count of the parallel solve phase.
	NThreads int `yaml:"nThreads"`

	// RouteTimeoutSeconds is the per-route wall-clock budget; on
	// expiry the route is marked unmappable. 0 disables the budget.
	RouteTimeoutSeconds int `yaml:"routeTimeoutSeconds"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text or json
}

// OutputConfig configures output artifacts
type OutputConfig struct {
	ScheduleFile      string   `yaml:"scheduleFile"`
	NetworkFile       string   `yaml:"networkFile"`
	ReportFile        string   `yaml:"reportFile"`
	StreetNetworkFile string   `yaml:"streetNetworkFile"`
	StreetModes       []string `yaml:"streetModes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *MapperConfig {
	return &MapperConfig{
		Mapper: MapperSettings{
			ModeRoutingAssignment: map[string][]string{
				"bus":  {"bus", "car"},
				"rail": {"rail"},
				"tram": {"tram"},
			},
			MaxLinkCandidateDistance:     300,
			MaxExpandedRadius:            1200,
			MaxNClosestLinks:             16,
			NLinkThreshold:               2,
			TravelCostType:               TravelCostLinkLength,
			UseArtificialLinks:           true,
			AllowLoopLinks:               false,
			ScheduleFreespeedModes:       []string{"rail"},
			RoutingWithCandidateDistance: true,
			RemoveNotUsedStopFacilities:  true,
			PruneUnreachableNetwork:      false,
			NThreads:                     4,
			RouteTimeoutSeconds:          0,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
		Output: OutputConfig{
			ScheduleFile: "mapped_schedule.xml",
			NetworkFile:  "mapped_network.xml",
			StreetModes:  []string{"car"},
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*MapperConfig, error) {
	// Start with default config
	config := DefaultConfig()

	// If no config file specified, return default
	if configPath == "" {
		return config, nil
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// Validate file path to prevent path traversal
	if !filepath.IsAbs(configPath) && strings.Contains(configPath, "..") {
		return nil, fmt.Errorf("invalid config file path: %s", configPath)
	}

	// Read file
	data, err := os.ReadFile(configPath) //nolint:gosec // Path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func (c *MapperConfig) SaveConfig(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	// Write file
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors
func (c *MapperConfig) Validate() error {
	m := &c.Mapper

	if len(m.ModeRoutingAssignment) == 0 {
		return fmt.Errorf("modeRoutingAssignment must define at least one schedule mode")
	}
	for mode, networkModes := range m.ModeRoutingAssignment {
		if len(networkModes) == 0 {
			return fmt.Errorf("modeRoutingAssignment for %q is empty", mode)
		}
	}

	if m.TravelCostType != TravelCostLinkLength && m.TravelCostType != TravelCostTravelTime {
		return fmt.Errorf("unknown travelCostType %q, want %q or %q",
			m.TravelCostType, TravelCostLinkLength, TravelCostTravelTime)
	}

	if m.MaxLinkCandidateDistance <= 0 {
		return fmt.Errorf("maxLinkCandidateDistance must be positive, got %g", m.MaxLinkCandidateDistance)
	}
	if m.MaxExpandedRadius < m.MaxLinkCandidateDistance {
		return fmt.Errorf("maxExpandedRadius (%g) must be >= maxLinkCandidateDistance (%g)",
			m.MaxExpandedRadius, m.MaxLinkCandidateDistance)
	}
	if m.MaxNClosestLinks < 1 {
		return fmt.Errorf("maxNClosestLinks must be at least 1, got %d", m.MaxNClosestLinks)
	}
	if m.NLinkThreshold < 1 {
		return fmt.Errorf("nLinkThreshold must be at least 1, got %d", m.NLinkThreshold)
	}
	if m.NThreads < 1 {
		return fmt.Errorf("nThreads must be at least 1, got %d", m.NThreads)
	}
	if m.RouteTimeoutSeconds < 0 {
		return fmt.Errorf("routeTimeoutSeconds must not be negative, got %d", m.RouteTimeoutSeconds)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q, want text or json", c.Log.Format)
	}

	return nil
}

// ScheduleModes returns the schedule modes with a routing assignment
// in sorted order.
func (c *MapperConfig) ScheduleModes() []string {
	modes := make([]string, 0, len(c.Mapper.ModeRoutingAssignment))
	for mode := range c.Mapper.ModeRoutingAssignment {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return modes
}

// IsScheduleFreespeedMode reports whether the given network mode is in
// the schedule-freespeed set.
func (c *MapperConfig) IsScheduleFreespeedMode(mode string) bool {
	for _, m := range c.Mapper.ScheduleFreespeedModes {
		if m == mode {
			return true
		}
	}
	return false
}
