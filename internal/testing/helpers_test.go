package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUnit(t *testing.T) {
	tests := []struct {
		name                string
		unitTestsOnly       string
		runIntegrationTests string
		expectedUnit        bool
	}{
		{
			name:          "explicit unit tests only",
			unitTestsOnly: "true",
			expectedUnit:  true,
		},
		{
			name:                "explicit integration tests enabled",
			runIntegrationTests: "true",
			expectedUnit:        false,
		},
		{
			name:                "explicit integration tests disabled",
			runIntegrationTests: "false",
			expectedUnit:        true,
		},
		{
			name:         "default configuration",
			expectedUnit: true,
		},
		{
			name:                "unit tests override integration tests",
			unitTestsOnly:       "true",
			runIntegrationTests: "true",
			expectedUnit:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvUnitOnly, tt.unitTestsOnly)
			t.Setenv(EnvRunIntegration, tt.runIntegrationTests)

			if got := Unit(); got != tt.expectedUnit {
				t.Errorf("Unit() = %v, want %v", got, tt.expectedUnit)
			}
			if got := Integration(); got == tt.expectedUnit {
				t.Errorf("Integration() = %v, want %v", got, !tt.expectedUnit)
			}
		})
	}
}

func TestSkipIfUnit(t *testing.T) {
	t.Setenv(EnvUnitOnly, "true")

	ran := false
	t.Run("skipped", func(t *testing.T) {
		SkipIfUnit(t)
		ran = true
	})
	if ran {
		t.Error("SkipIfUnit should have skipped in unit mode")
	}
}

func TestEventually(t *testing.T) {
	start := time.Now()
	Eventually(t, time.Second, func() bool {
		return time.Since(start) > 30*time.Millisecond
	}, "clock advances")
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()

	if lines := ReadLines(t, filepath.Join(dir, "missing.log")); lines != nil {
		t.Errorf("missing file should yield nil, got %v", lines)
	}

	path := filepath.Join(dir, "a.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lines := ReadLines(t, path)
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("ReadLines() = %v", lines)
	}
}
