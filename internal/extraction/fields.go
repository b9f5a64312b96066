package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extractor confidences.
const (
	confLocation    = 0.85
	confTitle       = 0.80
	confSearchTitle = 0.70
)

// Hebrew has no case to signal names and ASCII \b does not work on this
// script, so every boundary below is an explicit Unicode letter-class
// check rather than a word-boundary primitive.
var (
	// "עם מיכאל ודימה" is a participant chain. Continuations must start
	// with the ו conjunction so trailing prepositions stop the chain.
	reContacts = regexp.MustCompile(`עם\s+([\p{Hebrew}A-Za-z][\p{Hebrew}A-Za-z'׳"-]*(?:\s+ו[\p{Hebrew}A-Za-z][\p{Hebrew}A-Za-z'׳"-]*)*)`)

	// "מיקום: משרד" and the ב prefix form "במשרד".
	reLocationLabel  = regexp.MustCompile(`מיקום:?\s*([\p{Hebrew}A-Za-z0-9]+)`)
	reLocationPrefix = regexp.MustCompile(`(?:^|\s)ב([\p{Hebrew}][\p{Hebrew}A-Za-z]+)`)

	reDurationHours   = regexp.MustCompile(`(\d+)\s*(?:שעות|שעה)`)
	reDurationMinutes = regexp.MustCompile(`(\d+)\s*(?:דקות|דקה)`)

	reLeadTime = regexp.MustCompile(`(\d+)\s*(שעות|שעה|דקות|דקה|ימים|יום)\s+לפני`)

	// Reminder context annotation appended by the conversation layer,
	// e.g. "(בהקשר לאירוע: טקס בתאריך 08.11.2025)". Dates inside it are
	// resolved first; the whole parenthetical is dropped from titles.
	reEventContext = regexp.MustCompile(`\(בהקשר לאירוע:?[^)]*\)`)

	rePunctRuns  = regexp.MustCompile(`[,.:;!?()\[\]"”“]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// locationStopWords are time/day nouns that follow the ב prefix without
// naming a place.
var locationStopWords = map[string]bool{
	"שעה": true, "בוקר": true, "צהריים": true, "ערב": true, "לילה": true,
	"שבוע": true, "חודש": true, "שנה": true, "יום": true, "ימים": true,
	"תאריך": true, "הקשר": true, "דחיפות": true, "שעות": true, "דקות": true,
	"ראשון": true, "שני": true, "שלישי": true, "רביעי": true,
	"חמישי": true, "שישי": true, "שבת": true,
}

// commandVerbs are stripped from titles. Longer phrases first: Go regex
// alternation is leftmost-first, so "תזכיר לי" must precede "תזכיר".
var commandVerbs = []string{
	"תזכיר לי", "תזכירי לי", "תזכיר", "תזכורת",
	"תקבע", "קבע", "קבעי",
	"צור", "תוסיף", "הוסף", "הוסיפי",
	"חפש", "תחפש", "מצא", "תמצא", "הצג", "תציג", "תראה",
	"עדכן", "תעדכן", "שנה", "תשנה",
	"מחק", "תמחק", "בטל", "תבטל", "הסר", "תסיר",
}

var reCommandVerbs = regexp.MustCompile(`(^|[^\p{L}])(` + strings.Join(commandVerbs, "|") + `)([^\p{L}]|$)`)

// strayTokens are single prepositions and markers left dangling once the
// phrase they introduced has been stripped.
var strayTokens = map[string]bool{
	"ב": true, "ל": true, "מ": true, "ו": true, "את": true, "בשעה": true, "לשעה": true,
}

// extractContacts returns participant names following "עם", ordered and
// de-duplicated, plus the matched phrase for later title stripping.
func extractContacts(text string) (names []string, phrase string) {
	m := reContacts.FindStringSubmatch(text)
	if m == nil {
		return nil, ""
	}
	seen := map[string]bool{}
	for i, tok := range strings.Fields(m[1]) {
		if i > 0 {
			tok = strings.TrimPrefix(tok, "ו")
		}
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		names = append(names, tok)
	}
	return names, m[0]
}

// extractLocation finds a place phrase, preferring the explicit מיקום
// label over the ב prefix form. The prefix form is filtered against
// time/day stop-words. Returns the place and the matched phrase.
func extractLocation(text string) (location, phrase string) {
	if m := reLocationLabel.FindStringSubmatch(text); m != nil {
		return m[1], m[0]
	}
	for _, m := range reLocationPrefix.FindAllStringSubmatch(text, -1) {
		if locationStopWords[m[1]] {
			continue
		}
		return m[1], strings.TrimSpace(m[0])
	}
	return "", ""
}

// extractDuration converts duration phrases to whole minutes. Quantities
// that belong to a lead-time phrase ("5 שעות לפני") are skipped; they are
// reminder offsets, not event lengths.
func extractDuration(text string) int {
	switch {
	case strings.Contains(text, "שעתיים"):
		return 120
	case strings.Contains(text, "שעה וחצי"):
		return 90
	case strings.Contains(text, "חצי שעה"):
		return 30
	case strings.Contains(text, "רבע שעה"):
		return 15
	}
	if minutes := matchDuration(text, reDurationHours, 60); minutes > 0 {
		return minutes
	}
	return matchDuration(text, reDurationMinutes, 1)
}

func matchDuration(text string, re *regexp.Regexp, unitMinutes int) int {
	for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
		rest := strings.TrimLeft(text[idx[1]:], " ")
		if strings.HasPrefix(rest, "לפני") {
			continue
		}
		n, err := strconv.Atoi(text[idx[2]:idx[3]])
		if err != nil || n <= 0 {
			continue
		}
		return n * unitMinutes
	}
	return 0
}

// extractLeadTime converts "N שעות/דקות/ימים לפני" into minutes before
// the referenced event, returning the matched phrase for title
// stripping. Always derived arithmetically; zero means no lead-time
// phrase was found.
func extractLeadTime(text string) (minutes int, phrase string) {
	m := reLeadTime.FindStringSubmatch(text)
	if m == nil {
		return 0, ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, ""
	}
	switch m[2] {
	case "שעות", "שעה":
		return n * 60, m[0]
	case "ימים", "יום":
		return n * 24 * 60, m[0]
	default:
		return n, m[0]
	}
}

// extractPriority spots urgency keywords. The negated form is checked
// first so "לא דחוף" does not read as urgent.
func extractPriority(text string) Priority {
	switch {
	case strings.Contains(text, "לא דחוף"):
		return PriorityLow
	case strings.Contains(text, "דחוף"), strings.Contains(text, "בדחיפות"):
		return PriorityUrgent
	case strings.Contains(text, "חשוב"):
		return PriorityHigh
	case strings.Contains(text, "רגיל"):
		return PriorityNormal
	}
	return ""
}

// cleanTitle removes command verbs and collapses what the earlier
// extraction stages left behind. Infinitive prefixes survive because
// verb stripping requires a non-letter on both sides: "לנסוע" is not
// a hit for any verb alternative.
func cleanTitle(text string) string {
	s := reEventContext.ReplaceAllString(text, " ")
	for {
		next := reCommandVerbs.ReplaceAllString(s, "$1$3")
		if next == s {
			break
		}
		s = next
	}
	s = rePunctRuns.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strayTokens[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.TrimSpace(reWhitespace.ReplaceAllString(strings.Join(kept, " "), " "))
}

// removePhrase blanks the first occurrence of phrase in text, keeping a
// single space so neighbors do not fuse.
func removePhrase(text, phrase string) string {
	if phrase == "" {
		return text
	}
	return strings.Replace(text, phrase, " ", 1)
}
