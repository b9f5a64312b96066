package extraction

import (
	"regexp"
	"strings"
	"time"
)

// reUpdateTarget captures the search term of an "עדכן X ל..." message:
// the phrase between the update verb and the first ל-prefixed new value.
var reUpdateTarget = regexp.MustCompile(`(?:עדכן|תעדכן|שנה|תשנה)\s+(?:את\s+)?(.+?)\s+ל`)

// DeterministicExtractor is the offline pattern pass. It is pure and
// stateless: identical (text, intent, now) input produces identical
// output, and concurrent calls share nothing mutable.
type DeterministicExtractor struct {
	dates *dateTimeResolver
}

// NewDeterministicExtractor creates the pattern-based extractor.
func NewDeterministicExtractor() *DeterministicExtractor {
	return &DeterministicExtractor{dates: newDateTimeResolver()}
}

// Extract runs the pattern pass. now must already be in the caller's
// zone. The returned entities carry per-field confidence; the overall
// score is the orchestrator's job. Never fails: text with nothing to
// extract yields an empty record.
func (d *DeterministicExtractor) Extract(text string, intent Intent, now time.Time) Entities {
	switch intent {
	case IntentSearchEvent, IntentListEvents:
		return d.extractSearch(text, now)
	case IntentUpdateEvent, IntentUpdateReminder:
		return d.extractUpdate(text, intent, now)
	case IntentDeleteEvent, IntentDeleteReminder:
		return d.extractDelete(text, now)
	default:
		return d.extractCreate(text, intent, now)
	}
}

// extractCreate handles create_event/create_reminder (and "other", which
// gets the same best-effort treatment). Order matters: each stage strips
// the substring it claimed so later stages cannot re-read it; contacts
// must go before the title or names leak into it.
func (d *DeterministicExtractor) extractCreate(text string, intent Intent, now time.Time) Entities {
	var e Entities
	working := text

	names, phrase := extractContacts(working)
	e.ContactNames = names
	working = removePhrase(working, phrase)

	working = d.claimDateTime(working, now, &e)

	loc, locPhrase := extractLocation(working)
	if loc != "" {
		e.Location = loc
		e.Confidence.Location = confLocation
		working = removePhrase(working, locPhrase)
	}

	if intent == IntentCreateReminder {
		var leadPhrase string
		e.LeadTimeMinutes, leadPhrase = extractLeadTime(text)
		working = removePhrase(working, leadPhrase)
	}

	if title := cleanTitle(working); title != "" {
		e.Title = title
		e.Confidence.Title = confTitle
	}

	e.DurationMinutes = extractDuration(text)
	e.Priority = extractPriority(text)
	return e
}

// extractSearch scopes a range by date/time; whatever remains becomes
// the search term.
func (d *DeterministicExtractor) extractSearch(text string, now time.Time) Entities {
	var e Entities
	working := d.claimDateTime(text, now, &e)
	if title := cleanTitle(working); title != "" {
		e.Title = title
		e.Confidence.Title = confSearchTitle
	}
	return e
}

// extractUpdate parses date/time/location as the new values, then a
// second pass pulls the update target out of the "עדכן X ל..." shape.
func (d *DeterministicExtractor) extractUpdate(text string, intent Intent, now time.Time) Entities {
	var e Entities
	working := text

	names, phrase := extractContacts(working)
	e.ContactNames = names
	working = removePhrase(working, phrase)

	working = d.claimDateTime(working, now, &e)

	loc, locPhrase := extractLocation(working)
	if loc != "" {
		e.Location = loc
		e.Confidence.Location = confLocation
		working = removePhrase(working, locPhrase)
	}

	if m := reUpdateTarget.FindStringSubmatch(text); m != nil {
		if target := cleanTitle(removePhrase(m[1], phrase)); target != "" {
			e.Title = target
			e.Confidence.Title = confTitle
		}
	}
	if e.Title == "" {
		if title := cleanTitle(working); title != "" {
			e.Title = title
			e.Confidence.Title = confSearchTitle
		}
	}

	if intent == IntentUpdateReminder {
		e.LeadTimeMinutes, _ = extractLeadTime(text)
	}
	e.Priority = extractPriority(text)
	return e
}

// extractDelete scopes by optional date/time; the remainder after
// stripping delete verbs and the date text is the deletion target.
func (d *DeterministicExtractor) extractDelete(text string, now time.Time) Entities {
	var e Entities
	working := d.claimDateTime(text, now, &e)

	names, phrase := extractContacts(working)
	e.ContactNames = names
	working = removePhrase(working, phrase)

	if title := cleanTitle(working); title != "" {
		e.Title = title
		e.Confidence.Title = confSearchTitle
	}
	return e
}

// claimDateTime resolves date/time from working text, records the result
// on e, and returns the text with the matched substrings stripped.
func (d *DeterministicExtractor) claimDateTime(working string, now time.Time, e *Entities) string {
	dt := d.dates.Resolve(working, now)
	e.Date = dt.Date
	e.Time = dt.Time
	e.DateText = dt.DateText
	e.Confidence.Date = dt.DateConfidence
	e.Confidence.Time = dt.TimeConfidence
	working = removePhrase(working, dt.TimeText)
	if dt.DateText != "" {
		// The date text may carry the ב prefix in the original.
		if !strings.Contains(working, dt.DateText) && strings.Contains(working, "ב"+dt.DateText) {
			working = removePhrase(working, "ב"+dt.DateText)
		} else {
			working = removePhrase(working, dt.DateText)
		}
	}
	return working
}
