package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("scheduler")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("capture loop started", "monitor", 0)

	out := buf.String()
	if strings.Contains(out, `msg="INFO capture`) {
		t.Fatalf("unexpected nested severity prefix in message: %s", out)
	}
	if !strings.Contains(out, `msg="capture loop started"`) {
		t.Fatalf("expected plain message, got: %s", out)
	}
	if !strings.Contains(out, "component=scheduler") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "monitor=0") {
		t.Fatalf("expected monitor field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("scheduler")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "info", &buf)
	t.Cleanup(func() { Init("text", "info", nil) })

	L("compositor").Info("frame composed")

	out := buf.String()
	if !strings.Contains(out, `"component":"compositor"`) {
		t.Fatalf("expected JSON component field, got: %s", out)
	}
	if !strings.Contains(out, `"msg":"frame composed"`) {
		t.Fatalf("expected JSON msg field, got: %s", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	for _, in := range []string{"", "bogus", "  INFO  "} {
		if got := parseLevel(in); got.String() != "INFO" {
			t.Errorf("parseLevel(%q) = %v, want INFO", in, got)
		}
	}
}
