package extraction

import (
	"strings"
	"testing"
)

// The prompt text is an interface to the model: dropping a rule block
// silently degrades accuracy with no compile error. These tests pin the
// blocks that cover historically mis-extracted cases.
func TestBuildPrompt_PinnedRuleBlocks(t *testing.T) {
	now := testNow(t, "2025-10-10 12:00")
	prompt := BuildPrompt("פגישה מחר", IntentCreateEvent, now)

	pinned := []string{
		`"11 בלילה" -> 23:00`,
		`"12 בלילה" is ambiguous`,
		`"5 שעות לפני" -> 5*60 = 300`,
		`"2 ימים לפני" -> 2*24*60 = 2880`,
		`title "לנסוע הביתה"`,
		"date_text only",
		"exactly ONE JSON object",
		"Never invent values",
	}
	for _, p := range pinned {
		if !strings.Contains(prompt, p) {
			t.Errorf("prompt missing pinned block %q", p)
		}
	}
}

func TestBuildPrompt_Context(t *testing.T) {
	now := testNow(t, "2025-10-10 12:00") // a Friday
	prompt := BuildPrompt("קבע פגישה ביום ראשון", IntentCreateEvent, now)

	for _, want := range []string{
		"TODAY: 2025-10-10 (יום שישי)",
		"CURRENT YEAR: 2025",
		"TIMEZONE: Asia/Jerusalem",
		"יום ראשון=2025-10-12",
		"שבת=2025-10-11",
		"INTENT: create_event",
		"Text:\nקבע פגישה ביום ראשון",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
