package testing

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Unit returns true if running in unit test mode.
// Unit tests should be fast and stay inside the test process.
// This is determined by LUMEN_UNIT_TESTS_ONLY, LUMEN_RUN_INTEGRATION_TESTS
// and the -short flag, in that order.
func Unit() bool {
	if os.Getenv("LUMEN_UNIT_TESTS_ONLY") == "true" {
		return true
	}

	switch os.Getenv("LUMEN_RUN_INTEGRATION_TESTS") {
	case "true":
		return false
	case "false":
		return true
	}

	if testing.Short() {
		return true
	}

	// Default to unit mode if not explicitly running integration tests
	return true
}

// Integration returns true if running in integration test mode.
// Integration tests spawn helper processes and share files between them.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips the test if running in unit test mode.
func SkipIfUnit(t testing.TB, message ...string) {
	t.Helper()
	if Unit() {
		msg := "Skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// SkipIfIntegration skips the test if running in integration test mode.
func SkipIfIntegration(t testing.TB, message ...string) {
	t.Helper()
	if Integration() {
		msg := "Skipping unit-only test in integration mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// TempLogPath returns the path of a not yet existing log file inside a
// per-test temporary directory.
func TempLogPath(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// ReadLines returns the lines of the file at path without their newline.
// A missing file fails the test.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()

	f, err := os.Open(path) // #nosec G304 - test helper reads test output
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}

// SplitLines splits s into lines, dropping the final empty line.
func SplitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ListDir returns the names of the entries in dir matching pattern.
func ListDir(t testing.TB, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		t.Fatalf("glob %s: %v", pattern, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}
