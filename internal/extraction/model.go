package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ModelExtractor is the generative-model pass. It shares the
// deterministic extractor's signature and entity shape; the provider is
// injected so tests substitute a deterministic fake.
type ModelExtractor struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewModelExtractor creates a model-backed extractor. logger may be nil.
func NewModelExtractor(completer Completer, timeout time.Duration, logger *zap.Logger) *ModelExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ModelExtractor{completer: completer, timeout: timeout, logger: logger}
}

// Available reports whether a model pass can run at all.
func (m *ModelExtractor) Available() bool {
	return m.completer != nil && m.completer.Available()
}

// Extract runs one model completion under a bounded timeout and parses
// the result. Every failure mode (network, timeout, malformed JSON,
// provider error) is absorbed into an empty record with overall
// confidence 0; the raw provider error never reaches the caller.
func (m *ModelExtractor) Extract(ctx context.Context, text string, intent Intent, now time.Time) Entities {
	if !m.Available() {
		return Entities{}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	out, err := m.completer.Complete(ctx, BuildPrompt(text, intent, now))
	if err != nil {
		m.logger.Warn("model extraction failed, falling back",
			zap.String("intent", string(intent)), zap.Error(err))
		return Entities{}
	}

	raw := extractJSONObject(out)
	if raw == "" {
		m.logger.Warn("model response contained no JSON object")
		return Entities{}
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		m.logger.Warn("model response JSON did not parse", zap.Error(err))
		return Entities{}
	}

	return m.postProcess(resp, now)
}

// modelResponse is the wire shape the prompt demands.
type modelResponse struct {
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	DateText        string   `json:"date_text"`
	Location        string   `json:"location"`
	ContactNames    []string `json:"contact_names"`
	DurationMinutes float64  `json:"duration_minutes"`
	LeadTimeMinutes float64  `json:"lead_time_minutes"`
	Priority        string   `json:"priority"`
	Notes           string   `json:"notes"`
	Confidence      struct {
		Title    float64 `json:"title"`
		Date     float64 `json:"date"`
		Time     float64 `json:"time"`
		Location float64 `json:"location"`
	} `json:"confidence"`
}

// modelDateLayouts are the date shapes models actually produce despite
// the prompt demanding YYYY-MM-DD.
var modelDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// postProcess is the mandatory safety net. It runs regardless of how
// well the model followed instructions: trims strings, drops empties,
// corrects past dates, merges time zone-aware and floors lead time.
func (m *ModelExtractor) postProcess(resp modelResponse, now time.Time) Entities {
	var e Entities

	e.Title = strings.TrimSpace(resp.Title)
	e.DateText = strings.TrimSpace(resp.DateText)
	e.Location = strings.TrimSpace(resp.Location)
	e.Notes = strings.TrimSpace(resp.Notes)

	seen := map[string]bool{}
	for _, n := range resp.ContactNames {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		e.ContactNames = append(e.ContactNames, n)
	}

	if d := strings.TrimSpace(resp.Date); d != "" {
		for _, layout := range modelDateLayouts {
			t, err := time.ParseInLocation(layout, d, now.Location())
			if err != nil {
				continue
			}
			day := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
			if dayOf(day).Before(dayOf(now)) {
				day = day.AddDate(1, 0, 0)
				m.logger.Info("corrected past date from model",
					zap.String("given", d), zap.Time("corrected", day))
			}
			e.Date = &day
			break
		}
	}

	if hhmm := normalizeClock(resp.Time); hhmm != "" {
		e.Time = hhmm
		if e.Date != nil {
			merged := mergeDateTime(*e.Date, hhmm)
			e.Date = &merged
		}
	}

	if resp.DurationMinutes > 0 {
		e.DurationMinutes = int(resp.DurationMinutes)
	}
	if resp.LeadTimeMinutes > 0 {
		e.LeadTimeMinutes = int(resp.LeadTimeMinutes)
	}

	switch Priority(strings.TrimSpace(resp.Priority)) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		e.Priority = Priority(strings.TrimSpace(resp.Priority))
	}

	e.Confidence.Title = clamp01(resp.Confidence.Title)
	e.Confidence.Date = clamp01(resp.Confidence.Date)
	e.Confidence.Time = clamp01(resp.Confidence.Time)
	e.Confidence.Location = clamp01(resp.Confidence.Location)

	// A model may claim confidence for fields it did not return.
	if e.Title == "" {
		e.Confidence.Title = 0
	}
	if e.Date == nil && e.DateText == "" {
		e.Confidence.Date = 0
	}
	if e.Time == "" {
		e.Confidence.Time = 0
	}
	if e.Location == "" {
		e.Confidence.Location = 0
	}

	return e
}

// normalizeClock validates HH:MM / HH:MM:SS and returns HH:MM, or ""
// when the value cannot form a valid clock time.
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// extractJSONObject pulls the first top-level JSON object out of model
// output, tolerating prose and markdown fences around it.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
