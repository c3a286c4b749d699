package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coord is a planar coordinate in the projection the input artifacts use.
// The mapper never re-projects; distances are Euclidean in that plane.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewCoord creates a coordinate from x/y values.
func NewCoord(x, y float64) Coord {
	return Coord{X: x, Y: y}
}

// DistanceTo returns the Euclidean distance to another coordinate.
func (c Coord) DistanceTo(other Coord) float64 {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%g,%g)", c.X, c.Y)
}

// EntityRef identifies a schedule or network entity in error messages
// and report entries.
type EntityRef struct {
	Kind string `json:"kind"` // e.g. "link", "node", "stopFacility", "transitRoute"
	ID   string `json:"id"`
}

func (e EntityRef) String() string {
	return e.Kind + " " + e.ID
}

// Severity represents the severity level of a mapping issue
type Severity int

const (
	INFO Severity = iota
	WARNING
	ERROR
	CRITICAL
)

func (s Severity) String() string {
	switch s {
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalYAML implements the yaml.Marshaler interface
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (s *Severity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	return s.parseFromString(str)
}

// MarshalJSON encodes severity as its string label (e.g., "ERROR")
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes severity from its string label
func (s *Severity) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	return s.parseFromString(str)
}

func (s *Severity) parseFromString(str string) error {
	switch str {
	case "INFO":
		*s = INFO
	case "WARNING":
		*s = WARNING
	case "ERROR":
		*s = ERROR
	case "CRITICAL":
		*s = CRITICAL
	default:
		return fmt.Errorf("invalid severity: %s", str)
	}
	return nil
}
