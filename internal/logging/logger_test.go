package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestAllCategoriesLog verifies every category creates a log file with content.
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()

	reset()
	if err := Initialize(tempDir, "debug"); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	categories := []Category{
		CategoryBoot,
		CategoryConfig,
		CategoryStore,
		CategoryObjects,
		CategoryGateway,
		CategorySurveil,
		CategorySweep,
		CategoryIntake,
		CategoryServer,
	}

	for _, cat := range categories {
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	// Convenience functions too
	Boot("convenience boot log")
	Config("convenience config log")
	Store("convenience store log")
	Objects("convenience objects log")
	Gateway("convenience gateway log")
	Surveil("convenience surveil log")
	Sweep("convenience sweep log")
	Intake("convenience intake log")
	Server("convenience server log")

	CloseAll()

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(tempDir, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}

	reset()
}

// TestDisabled verifies that no files are created when no directory is set.
func TestDisabled(t *testing.T) {
	reset()
	if err := Initialize("", "debug"); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if Enabled() {
		t.Error("Expected logging to be disabled with empty dir")
	}

	// All of these should be no-ops, not panics.
	Boot("this should NOT be written anywhere")
	Gateway("this should NOT be written anywhere")
	logger := Get(CategorySweep)
	logger.Info("no-op")
	logger.Error("no-op")

	reset()
}

// TestLevelGating verifies debug messages are suppressed at info level.
func TestLevelGating(t *testing.T) {
	tempDir := t.TempDir()

	reset()
	if err := Initialize(tempDir, "info"); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	logger := Get(CategoryStore)
	logger.Debug("suppressed debug line")
	logger.Info("visible info line")
	CloseAll()

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	var content []byte
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "store.log") {
			content, err = os.ReadFile(filepath.Join(tempDir, entry.Name()))
			if err != nil {
				t.Fatalf("Failed to read store log: %v", err)
			}
		}
	}
	if strings.Contains(string(content), "suppressed debug line") {
		t.Error("Debug message should be suppressed at info level")
	}
	if !strings.Contains(string(content), "visible info line") {
		t.Error("Info message should be written at info level")
	}

	reset()
}

// TestTimerLogging verifies the timing helper records a duration.
func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()

	reset()
	if err := Initialize(tempDir, "debug"); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	timer := StartTimer(CategorySweep, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	slow := StartTimer(CategorySweep, "SlowOperation")
	time.Sleep(time.Millisecond)
	if got := slow.StopWithThreshold(time.Nanosecond); got <= 0 {
		t.Error("Threshold timer should have recorded non-zero duration")
	}

	reset()
}
