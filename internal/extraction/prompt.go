package extraction

import (
	"fmt"
	"strings"
	"time"
)

// promptHeader states the task and the output contract. The prompt text
// is a versioned interface: adding a rule or example is backward
// compatible, removing one can silently degrade accuracy, so every block
// below is pinned by a regression test.
const promptHeader = `You are an expert extraction engine for Hebrew calendar messages.
Extract event/reminder fields from the user text below. The text is Hebrew, possibly mixed with digits and Latin names.

Respond with exactly ONE JSON object and nothing else, no prose, no markdown. Shape:
{
  "title": string,
  "date": "YYYY-MM-DD",
  "time": "HH:MM",
  "date_text": string,
  "location": string,
  "contact_names": [string],
  "duration_minutes": number,
  "lead_time_minutes": number,
  "priority": "low"|"normal"|"high"|"urgent",
  "notes": string,
  "confidence": {"title": 0..1, "date": 0..1, "time": 0..1, "location": 0..1}
}
Omit fields that are absent from the text. Never invent values.`

// promptRules carries the extraction rule set. Worked examples cover the
// cases pattern matching historically got wrong.
const promptRules = `Rules:
1. Relative dates convert using TODAY below: היום = today, מחר = +1 day, מחרתיים = +2 days, אתמול = -1 day, שלשום = -2 days, שבוע הבא = +7 days, חודש הבא = +30 days.
2. Day-period words disambiguate bare hours asymmetrically: for צהריים/ערב/לילה add 12 when the hour is 11 or less; בוקר keeps the hour as written. Examples: "11 בלילה" -> 23:00, "8 בערב" -> 20:00, "10 בבוקר" -> 10:00. A period word with no number uses defaults: בבוקר 09:00, בצהריים 14:00, בערב 19:00, בלילה 22:00. "12 בלילה" is ambiguous between midnight and noon: keep 12:00 and lower the time confidence.
3. A date with no explicit year that already passed this year belongs to next year.
4. A weekday name (יום רביעי) goes into date_text only; do not resolve it into date.
5. Participants follow עם and chain with the ו conjunction: "פגישה עם מיכאל ודימה" -> contact_names ["מיכאל","דימה"], and the title must contain neither name.
6. lead_time_minutes is pure arithmetic on quantity and unit, never a guess: "5 שעות לפני" -> 5*60 = 300; "30 דקות לפני" -> 30; "2 ימים לפני" -> 2*24*60 = 2880. A lead-time quantity is not a date and not a duration.
7. Titles keep infinitive verb prefixes: "תזכיר לי לנסוע הביתה" -> title "לנסוע הביתה", not "נסוע הביתה". Strip command verbs, dates, times, locations and עם-phrases from the title.
8. When the text references an event in a parenthetical (בהקשר לאירוע: ...), date and time describe that referenced event.`

// BuildPrompt constructs the model instruction for one extraction call.
// now anchors every relative-date judgment and is read by the caller
// exactly once per extraction.
func BuildPrompt(text string, intent Intent, now time.Time) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")
	b.WriteString(promptRules)
	b.WriteString("\n\nContext:\n")
	fmt.Fprintf(&b, "TODAY: %s (%s)\n", now.Format("2006-01-02"), hebrewWeekdayNames[now.Weekday()])
	fmt.Fprintf(&b, "CURRENT YEAR: %d\n", now.Year())
	fmt.Fprintf(&b, "TIMEZONE: %s\n", now.Location())
	b.WriteString("Upcoming weekdays: ")
	for i, wd := range []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	} {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", hebrewWeekdayNames[wd], nextWeekday(now, wd).Format("2006-01-02"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "INTENT: %s\n", intent)
	fmt.Fprintf(&b, "\nText:\n%s\n", text)
	return b.String()
}
