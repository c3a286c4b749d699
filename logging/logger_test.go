package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	config := LoggerConfig{
		Level:         LevelInfo,
		Format:        "json",
		Output:        &buf,
		IncludeSource: false,
		Component:     "test-component",
	}

	logger := NewLogger(config)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}

	if !strings.Contains(output, "test-component") {
		t.Errorf("Expected log output to contain component name, got: %s", output)
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, want %s", test.level, got, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, test := range tests {
		if got := ParseLevel(test.name); got != test.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", test.name, got, test.expected)
		}
	}
}

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	if logger == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}

	// Test that it doesn't panic
	logger.Info("test message")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	logger.Info("test json message", "key", "value")

	output := buf.String()

	// Verify it's valid JSON
	var jsonData map[string]interface{}
	if err := json.Unmarshal([]byte(output), &jsonData); err != nil {
		t.Errorf("Output is not valid JSON: %v\nOutput: %s", err, output)
	}

	if jsonData["msg"] != "test json message" {
		t.Errorf("Expected message 'test json message', got: %v", jsonData["msg"])
	}

	if jsonData["key"] != "value" {
		t.Errorf("Expected key 'value', got: %v", jsonData["key"])
	}
}

func TestLogger_WithMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	// Test WithRoute
	routeLogger := logger.WithRoute("line1", "routeA")
	routeLogger.Info("route test")

	output := buf.String()
	if !strings.Contains(output, "line1") || !strings.Contains(output, "routeA") {
		t.Errorf("Expected route context in output, got: %s", output)
	}

	// Reset buffer
	buf.Reset()

	// Test WithMode
	modeLogger := logger.WithMode("bus")
	modeLogger.Info("mode test")

	output = buf.String()
	if !strings.Contains(output, "bus") {
		t.Errorf("Expected mode in output, got: %s", output)
	}

	// Reset buffer
	buf.Reset()

	// Test WithError
	err := errors.New("test error")
	errorLogger := logger.WithError(err)
	errorLogger.Info("error test")

	output = buf.String()
	if !strings.Contains(output, "test error") {
		t.Errorf("Expected error message in output, got: %s", output)
	}

	// Reset buffer
	buf.Reset()

	// Test WithDuration
	duration := 150 * time.Millisecond
	durationLogger := logger.WithDuration("routing", duration)
	durationLogger.Info("duration test")

	output = buf.String()
	if !strings.Contains(output, "150") {
		t.Errorf("Expected duration in output, got: %s", output)
	}
}

func TestLogger_MappingMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:  LevelDebug,
		Format: "json",
		Output: &buf,
	})

	// Test MappingStart
	logger.MappingStart(2, 10, 500)
	output := buf.String()
	if !strings.Contains(output, "Starting schedule mapping") {
		t.Errorf("Expected mapping start message, got: %s", output)
	}
	buf.Reset()

	// Test MappingComplete
	logger.MappingComplete(time.Second, 8, 1, 1)
	output = buf.String()
	if !strings.Contains(output, "Mapping completed") {
		t.Errorf("Expected mapping complete message, got: %s", output)
	}
	buf.Reset()

	// Test RouteUnmappable
	logger.RouteUnmappable("line1", "routeA", "no path to sink")
	output = buf.String()
	if !strings.Contains(output, "Route cannot be mapped") || !strings.Contains(output, "no path to sink") {
		t.Errorf("Expected unmappable route message, got: %s", output)
	}
	buf.Reset()

	// Test ArtificialLinkCreated
	logger.ArtificialLinkCreated("pt_stop1", "stop1")
	output = buf.String()
	if !strings.Contains(output, "Created artificial link") {
		t.Errorf("Expected artificial link message, got: %s", output)
	}
	buf.Reset()

	// Test FreespeedRaised
	logger.FreespeedRaised("link3", 10, 20)
	output = buf.String()
	if !strings.Contains(output, "Raised link freespeed") {
		t.Errorf("Expected freespeed message, got: %s", output)
	}
}

func TestLogger_IsLevelEnabled(t *testing.T) {
	logger := NewLogger(LoggerConfig{Level: LevelWarn})

	if !logger.IsLevelEnabled(LevelError) {
		t.Error("Expected ERROR level to be enabled for WARN logger")
	}

	if !logger.IsLevelEnabled(LevelWarn) {
		t.Error("Expected WARN level to be enabled for WARN logger")
	}

	if logger.IsLevelEnabled(LevelInfo) {
		t.Error("Expected INFO level to be disabled for WARN logger")
	}

	if logger.IsLevelEnabled(LevelDebug) {
		t.Error("Expected DEBUG level to be disabled for WARN logger")
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := defaultLogger
	defer func() { defaultLogger = originalLogger }()

	// Set a test logger as default
	testLogger := NewLogger(LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})
	SetDefaultLogger(testLogger)

	if GetDefaultLogger() != testLogger {
		t.Error("GetDefaultLogger did not return the expected logger")
	}

	// Test global convenience functions
	Info("test info", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "test info") {
		t.Errorf("Expected global Info to work, got: %s", output)
	}
	buf.Reset()

	Warn("test warning")
	output = buf.String()
	if !strings.Contains(output, "test warning") {
		t.Errorf("Expected global Warn to work, got: %s", output)
	}
	buf.Reset()

	Error("test error")
	output = buf.String()
	if !strings.Contains(output, "test error") {
		t.Errorf("Expected global Error to work, got: %s", output)
	}
	buf.Reset()

	RouteUnmappable("line1", "routeA", "timeout")
	output = buf.String()
	if !strings.Contains(output, "Route cannot be mapped") {
		t.Errorf("Expected global RouteUnmappable to work, got: %s", output)
	}
}
