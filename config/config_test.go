package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should be valid, got: %v", err)
	}

	if cfg.Mapper.MaxNClosestLinks != 16 {
		t.Errorf("expected maxNClosestLinks 16, got %d", cfg.Mapper.MaxNClosestLinks)
	}
	if cfg.Mapper.NLinkThreshold != 2 {
		t.Errorf("expected nLinkThreshold 2, got %d", cfg.Mapper.NLinkThreshold)
	}
	if !cfg.Mapper.UseArtificialLinks {
		t.Error("expected useArtificialLinks to default to true")
	}
	if !cfg.Mapper.RoutingWithCandidateDistance {
		t.Error("expected routingWithCandidateDistance to default to true")
	}
	if cfg.Mapper.TravelCostType != TravelCostLinkLength {
		t.Errorf("expected travelCostType %q, got %q", TravelCostLinkLength, cfg.Mapper.TravelCostType)
	}
}

func TestValidate(t *testing.T) {
	t.Run("Empty mode assignment", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.ModeRoutingAssignment = nil
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty modeRoutingAssignment")
		}
	})

	t.Run("Empty network mode set", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.ModeRoutingAssignment = map[string][]string{"bus": {}}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty network mode set")
		}
	})

	t.Run("Unknown travel cost type", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.TravelCostType = "beeline"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown travelCostType")
		}
	})

	t.Run("Negative candidate distance", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.MaxLinkCandidateDistance = -5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for negative maxLinkCandidateDistance")
		}
	})

	t.Run("Expanded radius below initial radius", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.MaxExpandedRadius = cfg.Mapper.MaxLinkCandidateDistance / 2
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for maxExpandedRadius < maxLinkCandidateDistance")
		}
	})

	t.Run("Zero threads", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapper.NThreads = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero nThreads")
		}
	})

	t.Run("Unknown log format", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Log.Format = "xml"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown log format")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Mapper.MaxNClosestLinks != 16 {
			t.Errorf("expected default maxNClosestLinks, got %d", cfg.Mapper.MaxNClosestLinks)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/mapper.yaml"); err == nil {
			t.Error("expected error for missing configuration file")
		}
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mapper.yaml")
		content := `mapper:
  maxNClosestLinks: 8
  travelCostType: travelTime
  modeRoutingAssignment:
    bus: [bus, car]
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Mapper.MaxNClosestLinks != 8 {
			t.Errorf("expected maxNClosestLinks 8, got %d", cfg.Mapper.MaxNClosestLinks)
		}
		if cfg.Mapper.TravelCostType != TravelCostTravelTime {
			t.Errorf("expected travelCostType travelTime, got %q", cfg.Mapper.TravelCostType)
		}
		// untouched settings keep their defaults
		if cfg.Mapper.NLinkThreshold != 2 {
			t.Errorf("expected default nLinkThreshold, got %d", cfg.Mapper.NLinkThreshold)
		}
	})

	t.Run("Invalid file rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mapper.yaml")
		content := `mapper:
  travelCostType: nonsense
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "mapper.yaml")

	cfg := DefaultConfig()
	cfg.Mapper.NThreads = 7
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Mapper.NThreads != 7 {
		t.Errorf("expected nThreads 7 after round trip, got %d", loaded.Mapper.NThreads)
	}
}

func TestScheduleModes(t *testing.T) {
	cfg := DefaultConfig()
	modes := cfg.ScheduleModes()
	if len(modes) != 3 {
		t.Fatalf("expected 3 schedule modes, got %d", len(modes))
	}
	// sorted order
	if modes[0] != "bus" || modes[1] != "rail" || modes[2] != "tram" {
		t.Errorf("expected sorted modes [bus rail tram], got %v", modes)
	}
}

func TestIsScheduleFreespeedMode(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsScheduleFreespeedMode("rail") {
		t.Error("expected rail to be a schedule-freespeed mode")
	}
	if cfg.IsScheduleFreespeedMode("bus") {
		t.Error("did not expect bus to be a schedule-freespeed mode")
	}
}
