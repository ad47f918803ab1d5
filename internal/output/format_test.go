package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

func TestOutputMode(t *testing.T) {
	defer SetOutputMode(false)

	SetOutputMode(true)
	if !IsJSON() {
		t.Error("IsJSON() = false after SetOutputMode(true)")
	}
	if CurrentMode() != ModeJSON {
		t.Errorf("mode = %s, want json", CurrentMode())
	}

	SetOutputMode(false)
	if IsJSON() {
		t.Error("IsJSON() = true after SetOutputMode(false)")
	}
	if CurrentMode().String() != "text" {
		t.Errorf("mode = %s, want text", CurrentMode())
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"TIER", "TRIGGER"}, [][]string{
		{"L1", "pr_ready_label"},
		{"L2", "pr_merged"},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "TIER") || !strings.Contains(lines[0], "TRIGGER") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "pr_merged") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestTierBadgePlainWithoutColor(t *testing.T) {
	SetColor("never")
	defer SetColor("auto")

	if got := TierBadge(tier.L3); got != "L3" {
		t.Errorf("TierBadge(L3) = %q, want plain L3", got)
	}
	if got := TierBadge(tier.ID("L9")); got != "L9" {
		t.Errorf("TierBadge(unknown) = %q", got)
	}
}

func TestTierBadgeColored(t *testing.T) {
	SetColor("always")
	defer SetColor("auto")

	got := TierBadge(tier.L5)
	if !strings.Contains(got, "L5") {
		t.Errorf("TierBadge(L5) = %q, should contain L5", got)
	}
}
