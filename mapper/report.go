package mapper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// RouteStatus is the mapping outcome of one transit route.
type RouteStatus string

const (
	// StatusMapped marks a route whose link sequence was committed.
	StatusMapped RouteStatus = "mapped"
	// StatusUnmappable marks a route excluded from the output because
	// no candidate combination connects it (or its budget expired).
	StatusUnmappable RouteStatus = "unmappable"
	// StatusSkipped marks a route whose schedule mode has no routing
	// assignment.
	StatusSkipped RouteStatus = "skipped"
)

// RouteEntry records the mapping outcome of a single transit route.
type RouteEntry struct {
	LineID   string         `json:"lineId"`
	RouteID  string         `json:"routeId"`
	Status   RouteStatus    `json:"status"`
	Reason   string         `json:"reason,omitempty"`
	Severity types.Severity `json:"severity"`
}

// MappingResult represents the outcome of a mapping batch
type MappingResult struct {
	// Batch metadata
	ReportID     string    `json:"reportId"`
	CreationDate time.Time `json:"creationDate"`

	// Per-route entries in deterministic (line, route) order
	Entries []RouteEntry `json:"entries"`

	// Artificial links present in the final network
	ArtificialLinks []string `json:"artificialLinks"`

	// Summary statistics
	RoutesMapped     int `json:"routesMapped"`
	RoutesUnmappable int `json:"routesUnmappable"`
	RoutesSkipped    int `json:"routesSkipped"`

	// Processing statistics
	ProcessingTime time.Duration `json:"processingTimeMs"`
}

// NewMappingResult creates an empty result with a fresh report id.
func NewMappingResult() *MappingResult {
	return &MappingResult{
		ReportID:     uuid.New().String(),
		CreationDate: time.Now(),
	}
}

// AddEntry appends a route entry and updates the counters.
func (r *MappingResult) AddEntry(entry RouteEntry) {
	r.Entries = append(r.Entries, entry)
	switch entry.Status {
	case StatusMapped:
		r.RoutesMapped++
	case StatusUnmappable:
		r.RoutesUnmappable++
	case StatusSkipped:
		r.RoutesSkipped++
	}
}

// Summary returns a one-line human-readable summary.
func (r *MappingResult) Summary() string {
	return fmt.Sprintf("%d routes mapped, %d unmappable, %d skipped, %d artificial links (%s)",
		r.RoutesMapped, r.RoutesUnmappable, r.RoutesSkipped, len(r.ArtificialLinks),
		r.ProcessingTime.Round(time.Millisecond))
}

// MarshalJSON renders ProcessingTime in whole milliseconds, matching its
// processingTimeMs key.
func (r *MappingResult) MarshalJSON() ([]byte, error) {
	type plain MappingResult
	return json.Marshal(&struct {
		*plain
		ProcessingTime int64 `json:"processingTimeMs"`
	}{plain: (*plain)(r), ProcessingTime: r.ProcessingTime.Milliseconds()})
}

// ToJSON renders the result as indented JSON.
func (r *MappingResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteJSONFile writes the result as JSON to the given path.
func (r *MappingResult) WriteJSONFile(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal mapping result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write mapping result: %w", err)
	}
	return nil
}

// ToText renders a plain-text report listing every non-mapped route.
func (r *MappingResult) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mapping report %s\n", r.ReportID)
	fmt.Fprintf(&b, "%s\n", r.Summary())
	for _, e := range r.Entries {
		if e.Status == StatusMapped {
			continue
		}
		fmt.Fprintf(&b, "  [%s] line %s route %s: %s\n", e.Status, e.LineID, e.RouteID, e.Reason)
	}
	if len(r.ArtificialLinks) > 0 {
		fmt.Fprintf(&b, "  artificial links: %s\n", strings.Join(r.ArtificialLinks, ", "))
	}
	return b.String()
}
