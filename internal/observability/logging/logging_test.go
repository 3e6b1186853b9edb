package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func logLine(t *testing.T, cfg Config) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	newLogger(&buf, cfg).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	return line
}

func TestLoggerCarriesServiceFields(t *testing.T) {
	line := logLine(t, Config{ServiceName: "notifications", Environment: "dev", Version: "1.2.3"})

	if line["service"] != "notifications" || line["env"] != "dev" {
		t.Fatalf("missing service fields: %v", line)
	}
	if line["version"] != "1.2.3" {
		t.Fatalf("version = %v, want 1.2.3", line["version"])
	}
}

func TestLoggerOmitsEmptyVersion(t *testing.T) {
	line := logLine(t, Config{ServiceName: "notifications", Environment: "dev"})

	if _, ok := line["version"]; ok {
		t.Fatalf("version must be omitted when unset: %v", line)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, Config{ServiceName: "notifications", Level: "warn"}).Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info line must be dropped at warn level, got %q", buf.String())
	}
}
