package extraction

import (
	"testing"
	"time"
)

func testNow(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	now, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatalf("ParseInLocation(%q) error = %v", value, err)
	}
	return now
}

func TestResolve_AbsoluteDate(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	tests := []struct {
		name     string
		text     string
		wantDate string
		wantConf float64
		wantText string
	}{
		{"dot separator", "פגישה ב 18.10", "2025-10-18", confAbsoluteDate, "18.10"},
		{"slash separator", "פגישה ב 18/10", "2025-10-18", confAbsoluteDate, "18/10"},
		{"dash separator", "פגישה ב 18-10", "2025-10-18", confAbsoluteDate, "18-10"},
		{"explicit year", "טקס בתאריך 08.11.2025", "2025-11-08", confAbsoluteDate, "08.11.2025"},
		{"two digit year", "08.11.25", "2025-11-08", confAbsoluteDate, "08.11.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.text, now)
			if got.Date == nil {
				t.Fatalf("Resolve(%q) date = nil", tt.text)
			}
			if d := got.Date.Format("2006-01-02"); d != tt.wantDate {
				t.Errorf("date = %s, want %s", d, tt.wantDate)
			}
			if got.DateConfidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.DateConfidence, tt.wantConf)
			}
			if got.DateText != tt.wantText {
				t.Errorf("dateText = %q, want %q", got.DateText, tt.wantText)
			}
		})
	}
}

func TestResolve_YearlessPastDateAdvances(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-11-01 12:00")

	got := r.Resolve("פגישה ב 18.10", now)
	if got.Date == nil {
		t.Fatal("date = nil")
	}
	if d := got.Date.Format("2006-01-02"); d != "2026-10-18" {
		t.Errorf("date = %s, want 2026-10-18 (auto-advanced)", d)
	}

	// Dates with an explicit year are taken as written, even in the past.
	got = r.Resolve("טקס ב 18.10.2024", now)
	if d := got.Date.Format("2006-01-02"); d != "2024-10-18" {
		t.Errorf("date = %s, want 2024-10-18", d)
	}
}

func TestResolve_InvalidCompositeDropped(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	got := r.Resolve("פגישה ב 31.02", now)
	if got.Date != nil {
		t.Errorf("date = %v, want nil for 31.02", got.Date)
	}
	if got.DateConfidence != 0 {
		t.Errorf("confidence = %v, want 0", got.DateConfidence)
	}
}

func TestResolve_ExplicitTime(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	tests := []struct {
		text string
		want string
	}{
		{"פגישה בשעה 15:00", "15:00"},
		{"פגישה לשעה 14", "14:00"}, // bare hour resolves to HH:00
		{"פגישה בשעה 9.30", "09:30"},
		{"בשעה 7", "07:00"},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.text, now)
		if got.Time != tt.want {
			t.Errorf("Resolve(%q) time = %q, want %q", tt.text, got.Time, tt.want)
		}
		if got.TimeConfidence != confExplicitTime {
			t.Errorf("Resolve(%q) confidence = %v, want %v", tt.text, got.TimeConfidence, confExplicitTime)
		}
	}
}

func TestResolve_DayPeriod(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	tests := []struct {
		text string
		want string
	}{
		{"11 בלילה", "23:00"},
		{"8 בערב", "20:00"},
		{"10 בבוקר", "10:00"}, // morning numbers stay as given
		{"2 בצהריים", "14:00"},
		{"נתראה בערב", "19:00"}, // period word alone uses defaults
		{"נתראה בבוקר", "09:00"},
		{"נתראה בצהריים", "14:00"},
		{"נתראה בלילה", "22:00"},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.text, now)
		if got.Time != tt.want {
			t.Errorf("Resolve(%q) time = %q, want %q", tt.text, got.Time, tt.want)
		}
	}
}

func TestResolve_RelativeDays(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-06-10 12:00")

	tests := []struct {
		text     string
		wantDate string
		wantConf float64
	}{
		{"פגישה מחר", "2025-06-11", confRelativeDay},
		{"פגישה מחרתיים", "2025-06-12", confRelativeDay},
		{"מה היה היום", "2025-06-10", confRelativeDay},
		{"מה קרה שלשום", "2025-06-08", confRelativeDay},
		{"פגישה בשבוע הבא", "2025-06-17", confRelativeSpan},
		{"פגישה בחודש הבא", "2025-07-10", confRelativeSpan},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.text, now)
		if got.Date == nil {
			t.Fatalf("Resolve(%q) date = nil", tt.text)
		}
		if d := got.Date.Format("2006-01-02"); d != tt.wantDate {
			t.Errorf("Resolve(%q) date = %s, want %s", tt.text, d, tt.wantDate)
		}
		if got.DateConfidence != tt.wantConf {
			t.Errorf("Resolve(%q) confidence = %v, want %v", tt.text, got.DateConfidence, tt.wantConf)
		}
	}
}

func TestResolve_RelativeRoundTrip(t *testing.T) {
	r := newDateTimeResolver()
	target := testNow(t, "2025-06-11 00:00")
	now := target.AddDate(0, 0, -1).Add(9 * time.Hour)

	got := r.Resolve("תזכיר לי מחר", now)
	if got.Date == nil {
		t.Fatal("date = nil")
	}
	if !dayOf(*got.Date).Equal(dayOf(target)) {
		t.Errorf("round trip: got %v, want day %v", got.Date, target)
	}
}

func TestResolve_WeekdaySetsDateTextOnly(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-06-10 12:00")

	got := r.Resolve("פגישה ביום רביעי", now)
	if got.Date != nil {
		t.Errorf("date = %v, want nil (weekday resolution is deferred)", got.Date)
	}
	if got.DateText != "יום רביעי" {
		t.Errorf("dateText = %q, want %q", got.DateText, "יום רביעי")
	}
	if got.DateConfidence != confWeekday {
		t.Errorf("confidence = %v, want %v", got.DateConfidence, confWeekday)
	}
}

func TestNextWeekday(t *testing.T) {
	// 2025-06-10 is a Tuesday.
	now := testNow(t, "2025-06-10 12:00")

	if d := nextWeekday(now, time.Wednesday); d.Format("2006-01-02") != "2025-06-11" {
		t.Errorf("next Wednesday = %s, want 2025-06-11", d.Format("2006-01-02"))
	}
	// Today's own weekday rolls a full week forward, never "today".
	if d := nextWeekday(now, time.Tuesday); d.Format("2006-01-02") != "2025-06-17" {
		t.Errorf("next Tuesday = %s, want 2025-06-17", d.Format("2006-01-02"))
	}
}

func TestResolve_FreeTextFallback(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	t.Run("iso date", func(t *testing.T) {
		got := r.Resolve("אירוע בתאריך 2025-11-08", now)
		if got.Date == nil {
			t.Fatal("date = nil")
		}
		if d := got.Date.Format("2006-01-02"); d != "2025-11-08" {
			t.Errorf("date = %s, want 2025-11-08", d)
		}
		if got.DateConfidence != confFreeText {
			t.Errorf("confidence = %v, want %v", got.DateConfidence, confFreeText)
		}
	})

	t.Run("iso datetime carries time", func(t *testing.T) {
		got := r.Resolve("2025-11-08T09:30", now)
		if got.Time != "09:30" {
			t.Errorf("time = %q, want 09:30", got.Time)
		}
	})

	t.Run("hebrew month name", func(t *testing.T) {
		got := r.Resolve("פגישה 18 באוקטובר", now)
		if got.Date == nil {
			t.Fatal("date = nil")
		}
		if d := got.Date.Format("2006-01-02"); d != "2025-10-18" {
			t.Errorf("date = %s, want 2025-10-18", d)
		}
	})
}

func TestResolve_NoMatch(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	got := r.Resolve("תזכיר לי לנסוע הביתה", now)
	if got.Date != nil || got.Time != "" || got.DateText != "" {
		t.Errorf("Resolve() = %+v, want empty result", got)
	}
	if got.DateConfidence != 0 || got.TimeConfidence != 0 {
		t.Errorf("confidences = %v/%v, want 0/0", got.DateConfidence, got.TimeConfidence)
	}
}

func TestResolve_CollisionFirstMatchWins(t *testing.T) {
	r := newDateTimeResolver()
	now := testNow(t, "2025-01-01 12:00")

	// Absolute dates outrank relative keywords in the precedence order.
	got := r.Resolve("מחר 18.10", now)
	if got.Date == nil {
		t.Fatal("date = nil")
	}
	if d := got.Date.Format("2006-01-02"); d != "2025-10-18" {
		t.Errorf("date = %s, want 2025-10-18 (absolute wins)", d)
	}
	if got.DateConfidence != confAbsoluteDate {
		t.Errorf("confidence = %v, want %v", got.DateConfidence, confAbsoluteDate)
	}
}

func TestMergeDateTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	date := time.Date(2025, 10, 18, 0, 0, 0, 0, loc)

	merged := mergeDateTime(date, "15:00")
	if merged.Hour() != 15 || merged.Minute() != 0 {
		t.Errorf("clock = %02d:%02d, want 15:00", merged.Hour(), merged.Minute())
	}
	if merged.Year() != 2025 || merged.Month() != time.October || merged.Day() != 18 {
		t.Errorf("calendar fields changed: %v", merged)
	}
	if merged.Location() != loc {
		t.Errorf("zone changed: %v", merged.Location())
	}

	// DST boundary: merging stays on the same calendar day in-zone.
	dst := time.Date(2025, 10, 26, 0, 0, 0, 0, loc)
	merged = mergeDateTime(dst, "09:00")
	if merged.Day() != 26 || merged.Hour() != 9 {
		t.Errorf("DST merge = %v, want Oct 26 09:00", merged)
	}

	// Garbage clock strings leave the date untouched.
	if got := mergeDateTime(date, "25:99"); !got.Equal(date) {
		t.Errorf("invalid clock mutated date: %v", got)
	}
}
