package ui

import (
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	original := "bones:\n  - name: J_Bip_C_Hips\n  - name: J_Bip_C_Spine"
	updated := "bones:\n  - name: Hips\n  - name: Spine"

	diff := Diff(original, updated)

	if !diff.Changed {
		t.Errorf("Expected diff to detect changes")
	}

	diffStr := diff.String()
	if !strings.Contains(diffStr, "-   - name: J_Bip_C_Hips") {
		t.Errorf("Diff should show removed line, got:\n%s", diffStr)
	}
	if !strings.Contains(diffStr, "+   - name: Spine") {
		t.Errorf("Diff should show added line, got:\n%s", diffStr)
	}
	if strings.Contains(diffStr, "bones:") {
		t.Errorf("Diff should not show unchanged lines")
	}
}

func TestDiffNoChanges(t *testing.T) {
	diff := Diff("line1\nline2", "line1\nline2")

	if diff.Changed {
		t.Errorf("Expected no changes")
	}
	if !strings.Contains(diff.String(), "No changes") {
		t.Errorf("Diff should indicate no changes")
	}
	if diff.Stats() != "No changes" {
		t.Errorf("unexpected stats %q", diff.Stats())
	}
}

func TestDiffRemovedLineKeepsAlignment(t *testing.T) {
	original := "Hips\nSpine\nUpperArm_end\nHead\nNeck"
	updated := "Hips\nSpine\nHead\nNeck"

	diff := Diff(original, updated)

	if got := diff.Stats(); got != "0 line(s) added, 1 line(s) removed" {
		t.Errorf("expected a single removal, got %q", got)
	}
	if strings.Contains(diff.String(), "Head") {
		t.Errorf("lines after the removal should match, got:\n%s", diff.String())
	}
}

func TestDiffUnifiedDiff(t *testing.T) {
	diff := Diff("a\nb\nc\nd", "a\nB\nc\nd\ne")
	unified := diff.UnifiedDiff("avatar.rig.yml")

	expected := "--- a/avatar.rig.yml\n+++ b/avatar.rig.yml\n" +
		"@@ -2 @@\n-b\n+B\n" +
		"@@ +5 @@\n+e\n"
	if unified != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, unified)
	}
}

func TestDiffUnifiedDiffNoChanges(t *testing.T) {
	if unified := Diff("a", "a").UnifiedDiff("avatar.rig.yml"); unified != "" {
		t.Errorf("Unified diff should be empty when no changes")
	}
}
