package extraction

import (
	"context"
	"fmt"
	"time"
)

// Intent is the classified purpose of a message, decided upstream.
type Intent string

// Supported intents.
const (
	IntentCreateEvent    Intent = "create_event"
	IntentCreateReminder Intent = "create_reminder"
	IntentSearchEvent    Intent = "search_event"
	IntentListEvents     Intent = "list_events"
	IntentUpdateEvent    Intent = "update_event"
	IntentUpdateReminder Intent = "update_reminder"
	IntentDeleteEvent    Intent = "delete_event"
	IntentDeleteReminder Intent = "delete_reminder"
	IntentOther          Intent = "other"
)

// ParseIntent validates a wire-level intent string.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentCreateEvent, IntentCreateReminder, IntentSearchEvent,
		IntentListEvents, IntentUpdateEvent, IntentUpdateReminder,
		IntentDeleteEvent, IntentDeleteReminder, IntentOther:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unsupported intent: %q", s)
}

// DateSensitive reports whether a wrong or missing date materially breaks
// the downstream action for this intent. The orchestrator always runs the
// model pass for these.
func (i Intent) DateSensitive() bool {
	switch i {
	case IntentCreateEvent, IntentCreateReminder, IntentUpdateEvent,
		IntentUpdateReminder, IntentSearchEvent, IntentListEvents:
		return true
	}
	return false
}

// Priority is the urgency level spotted in text.
type Priority string

// Priority levels.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Confidence weights for the overall score.
const (
	weightTitle    = 0.4
	weightDate     = 0.3
	weightTime     = 0.2
	weightLocation = 0.1
)

// Confidence holds per-field scores in [0,1] plus the weighted overall.
type Confidence struct {
	Title    float64 `json:"title"`
	Date     float64 `json:"date"`
	Time     float64 `json:"time"`
	Location float64 `json:"location"`
	Overall  float64 `json:"overall"`
}

// Weighted returns the weighted mean of the four sub-scores. Overall is
// never assigned independently of this.
func (c Confidence) Weighted() float64 {
	return weightTitle*c.Title + weightDate*c.Date + weightTime*c.Time + weightLocation*c.Location
}

// Entities is the structured record produced by an extraction pass. A
// fresh value is built per call and never mutated after being returned.
type Entities struct {
	Title           string     `json:"title,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Time            string     `json:"time,omitempty"` // HH:MM
	DateText        string     `json:"date_text,omitempty"`
	Location        string     `json:"location,omitempty"`
	ContactNames    []string   `json:"contact_names,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	LeadTimeMinutes int        `json:"lead_time_minutes,omitempty"`
	Priority        Priority   `json:"priority,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Confidence      Confidence `json:"confidence"`
}

// Count returns the number of populated entity fields. Used by callers to
// decide whether enough was understood to proceed.
func (e Entities) Count() int {
	n := 0
	if e.Title != "" {
		n++
	}
	if e.Date != nil {
		n++
	}
	if e.Time != "" {
		n++
	}
	if e.DateText != "" {
		n++
	}
	if e.Location != "" {
		n++
	}
	if len(e.ContactNames) > 0 {
		n++
	}
	if e.DurationMinutes > 0 {
		n++
	}
	if e.LeadTimeMinutes > 0 {
		n++
	}
	if e.Priority != "" {
		n++
	}
	return n
}

// Completer is the opaque text-completion endpoint backing the model
// pass. Implementations must honor context cancellation.
type Completer interface {
	// Complete generates a completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Available returns true if the completer is configured and ready.
	Available() bool
}

// Config holds engine configuration.
type Config struct {
	Provider  string                    `json:"provider"` // "disabled", "anthropic", "openai"
	Providers map[string]ProviderConfig `json:"providers,omitempty"`

	// ConfidenceThreshold is the deterministic overall score below which
	// the model pass runs even for date-insensitive intents.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// ModelTimeout bounds a single model-pass network call.
	ModelTimeout time.Duration `json:"model_timeout"`
}

// ProviderConfig holds provider-specific configuration.
type ProviderConfig struct {
	Model     string `json:"model,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Timeout   int    `json:"timeout,omitempty"` // seconds
}

// DefaultConfig returns a default engine configuration.
func DefaultConfig() Config {
	return Config{
		Provider:            "disabled",
		ConfidenceThreshold: 0.7,
		ModelTimeout:        30 * time.Second,
	}
}
