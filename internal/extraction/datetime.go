package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pattern confidences, ordered by specificity. Collisions resolve
// first-match-wins down the precedence list.
const (
	confAbsoluteDate = 0.98
	confExplicitTime = 0.95
	confRelativeDay  = 0.99
	confRelativeSpan = 0.90
	confWeekday      = 0.95
	confFreeText     = 0.85
	confDayPeriod    = 0.85
)

// dateTimeResult is the resolver output. Date is nil when nothing
// matched; weekday references set DateText only and leave Date nil.
type dateTimeResult struct {
	Date           *time.Time
	Time           string // HH:MM
	DateText       string
	TimeText       string // matched time substring, for title stripping
	DateConfidence float64
	TimeConfidence float64
}

var (
	// DD.MM, DD/MM, DD-MM with optional year. All three separators are
	// accepted; dot is the common one in Hebrew chat.
	reAbsoluteDate = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})(?:[./-](\d{2,4}))?`)

	// "בשעה 15:00", "לשעה 14", "בשעה 9.30". Colon and minutes are both
	// optional; a bare hour resolves to HH:00.
	reExplicitTime = regexp.MustCompile(`(?:בשעה|לשעה)\s*(\d{1,2})(?:[:.](\d{2}))?`)

	// A bare hour next to a day-period word: "11 בלילה", "8 בערב".
	reHourPeriod = regexp.MustCompile(`(\d{1,2})\s*(בבוקר|בצהריים|אחר הצהריים|אחרי הצהריים|בערב|בלילה)`)

	// A day-period word standing alone, no number.
	rePeriodOnly = regexp.MustCompile(`בבוקר|בצהריים|אחר הצהריים|אחרי הצהריים|בערב|בלילה`)

	// Weekday names, with or without the ב prefix.
	reWeekday = regexp.MustCompile(`ב?יום\s+(ראשון|שני|שלישי|רביעי|חמישי|שישי|שבת)|ב?שבת`)

	// ISO date, optionally with a clock component.
	reISODate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?`)

	// "18 באוקטובר", optionally with a year.
	reHebrewMonthDate = regexp.MustCompile(`(\d{1,2})\s+ב?(ינואר|פברואר|מרץ|אפריל|מאי|יוני|יולי|אוגוסט|ספטמבר|אוקטובר|נובמבר|דצמבר)(?:\s+(\d{4}))?`)
)

// relativeDays maps relative-day keywords to day offsets. Longer words
// come first so "מחרתיים" is not shadowed by its "מחר" prefix.
var relativeDays = []struct {
	word string
	days int
}{
	{"מחרתיים", 2},
	{"מחר", 1},
	{"היום", 0},
	{"שלשום", -2},
	{"אתמול", -1},
}

// relativeSpans maps week/month relatives to day offsets.
var relativeSpans = []struct {
	word string
	days int
}{
	{"בשבוע הבא", 7},
	{"שבוע הבא", 7},
	{"בחודש הבא", 30},
	{"חודש הבא", 30},
}

// dayPeriods maps period words to their PM shift behavior and their
// no-number default hour. Morning numbers stay as given; afternoon,
// evening and night add 12 to hours 11 and below.
var dayPeriods = map[string]struct {
	pm          bool
	defaultHour int
}{
	"בבוקר":        {pm: false, defaultHour: 9},
	"בצהריים":      {pm: true, defaultHour: 14},
	"אחר הצהריים":  {pm: true, defaultHour: 14},
	"אחרי הצהריים": {pm: true, defaultHour: 14},
	"בערב":         {pm: true, defaultHour: 19},
	"בלילה":        {pm: true, defaultHour: 22},
}

// hebrewMonths maps Hebrew month names to month numbers.
var hebrewMonths = map[string]time.Month{
	"ינואר": time.January, "פברואר": time.February, "מרץ": time.March,
	"אפריל": time.April, "מאי": time.May, "יוני": time.June,
	"יולי": time.July, "אוגוסט": time.August, "ספטמבר": time.September,
	"אוקטובר": time.October, "נובמבר": time.November, "דצמבר": time.December,
}

// hebrewWeekdays maps weekday names to time.Weekday.
var hebrewWeekdays = map[string]time.Weekday{
	"ראשון": time.Sunday, "שני": time.Monday, "שלישי": time.Tuesday,
	"רביעי": time.Wednesday, "חמישי": time.Thursday, "שישי": time.Friday,
	"שבת": time.Saturday,
}

// hebrewWeekdayNames maps time.Weekday back to Hebrew, for prompts.
var hebrewWeekdayNames = map[time.Weekday]string{
	time.Sunday: "יום ראשון", time.Monday: "יום שני", time.Tuesday: "יום שלישי",
	time.Wednesday: "יום רביעי", time.Thursday: "יום חמישי",
	time.Friday: "יום שישי", time.Saturday: "שבת",
}

// dateTimeResolver turns raw text into date/time candidates. Pure
// function of (text, now); safe for concurrent use.
type dateTimeResolver struct{}

func newDateTimeResolver() *dateTimeResolver { return &dateTimeResolver{} }

// Resolve extracts the best date and time candidates from text. now must
// already carry the caller's zone; all produced instants live in that
// zone. A text with no date/time expression yields zero confidences and
// nil/empty fields, never an error.
func (r *dateTimeResolver) Resolve(text string, now time.Time) dateTimeResult {
	var res dateTimeResult
	r.resolveDate(text, now, &res)
	r.resolveTime(text, &res)
	return res
}

func (r *dateTimeResolver) resolveDate(text string, now time.Time, res *dateTimeResult) {
	if r.matchAbsoluteDate(text, now, res) {
		return
	}
	for _, rd := range relativeDays {
		if strings.Contains(text, rd.word) {
			d := dayOf(now).AddDate(0, 0, rd.days)
			res.Date = &d
			res.DateText = rd.word
			res.DateConfidence = confRelativeDay
			return
		}
	}
	for _, rs := range relativeSpans {
		if strings.Contains(text, rs.word) {
			d := dayOf(now).AddDate(0, 0, rs.days)
			res.Date = &d
			res.DateText = rs.word
			res.DateConfidence = confRelativeSpan
			return
		}
	}
	if m := reWeekday.FindStringSubmatch(text); m != nil {
		// Weekday-to-calendar-date resolution is deferred to the caller;
		// only the reference text is kept.
		res.DateText = strings.TrimPrefix(m[0], "ב")
		res.DateConfidence = confWeekday
		return
	}
	r.matchFreeText(text, now, res)
}

// matchAbsoluteDate handles DD.MM[.YYYY] and its slash/dash variants.
// Matches whose first digit continues a longer number run are rejected so
// ISO dates ("2025-11-08") do not misparse as DD-MM-YY.
func (r *dateTimeResolver) matchAbsoluteDate(text string, now time.Time, res *dateTimeResult) bool {
	for _, idx := range reAbsoluteDate.FindAllStringSubmatchIndex(text, -1) {
		if idx[0] > 0 && isDigit(text[idx[0]-1]) {
			continue
		}
		day, _ := strconv.Atoi(text[idx[2]:idx[3]])
		month, _ := strconv.Atoi(text[idx[4]:idx[5]])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		year := 0
		hasYear := idx[6] >= 0
		if hasYear {
			year, _ = strconv.Atoi(text[idx[6]:idx[7]])
			if year < 100 {
				year += 2000
			}
		} else {
			year = now.Year()
		}
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		if d.Day() != day || d.Month() != time.Month(month) {
			// Rolled over an invalid composite like 31.02; drop it.
			continue
		}
		if !hasYear && d.Before(dayOf(now)) {
			d = d.AddDate(1, 0, 0)
		}
		res.Date = &d
		res.DateText = text[idx[0]:idx[1]]
		res.DateConfidence = confAbsoluteDate
		return true
	}
	return false
}

// matchFreeText is the fallback parser for date shapes the dedicated
// patterns miss: ISO dates and Hebrew month names.
func (r *dateTimeResolver) matchFreeText(text string, now time.Time, res *dateTimeResult) {
	if m := reISODate.FindString(text); m != "" {
		for _, spec := range isoLayouts {
			t, err := time.ParseInLocation(spec.layout, m, now.Location())
			if err != nil {
				continue
			}
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			res.Date = &d
			res.DateText = m
			res.DateConfidence = confFreeText
			if spec.hasClock {
				res.Time = fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
				res.TimeText = m
				res.TimeConfidence = confFreeText
			}
			return
		}
	}
	if m := reHebrewMonthDate.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := hebrewMonths[m[2]]
		year := now.Year()
		hasYear := m[3] != ""
		if hasYear {
			year, _ = strconv.Atoi(m[3])
		}
		d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		if d.Day() != day {
			return
		}
		if !hasYear && d.Before(dayOf(now)) {
			d = d.AddDate(1, 0, 0)
		}
		res.Date = &d
		res.DateText = m[0]
		res.DateConfidence = confFreeText
	}
}

var isoLayouts = []struct {
	layout   string
	hasClock bool
}{
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", false},
}

func (r *dateTimeResolver) resolveTime(text string, res *dateTimeResult) {
	if res.Time != "" {
		return
	}
	if m := reExplicitTime.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour <= 23 && minute <= 59 {
			res.Time = fmt.Sprintf("%02d:%02d", hour, minute)
			res.TimeText = m[0]
			res.TimeConfidence = confExplicitTime
			return
		}
	}
	if m := reHourPeriod.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		period := dayPeriods[m[2]]
		// Asymmetric conversion: "11 בלילה" is 23:00, but "14 בצהריים"
		// is already 24-hour and stays as given.
		if period.pm && hour <= 11 {
			hour += 12
		}
		if hour <= 23 {
			res.Time = fmt.Sprintf("%02d:00", hour)
			res.TimeText = m[0]
			res.TimeConfidence = confDayPeriod
			return
		}
	}
	if m := rePeriodOnly.FindString(text); m != "" {
		res.Time = fmt.Sprintf("%02d:00", dayPeriods[m].defaultHour)
		res.TimeText = m
		res.TimeConfidence = confDayPeriod
	}
}

// nextWeekday returns the next calendar date falling on wd, strictly
// after today: when today already is wd, it rolls a full week forward.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return dayOf(now).AddDate(0, 0, delta)
}

// dayOf truncates t to midnight in its own zone.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mergeDateTime overwrites only the clock fields of date with hhmm,
// staying in date's zone. Merging in UTC would shift dates that sit on a
// DST boundary by the zone offset.
func mergeDateTime(date time.Time, hhmm string) time.Time {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return date
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour > 23 || minute > 59 {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
