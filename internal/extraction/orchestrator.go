package extraction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Warnings surfaced to the caller. Non-fatal: the caller decides whether
// to proceed, ask for clarification, or reject.
const (
	WarnLowTitleConfidence = "low title confidence"
	WarnLowDateConfidence  = "low date confidence on date-sensitive intent"
)

const lowConfidence = 0.5

// Result is the orchestrator output: the merged entity bag plus the
// signals the conversation layer uses to decide what to do next.
type Result struct {
	Entities    Entities `json:"entities"`
	Warnings    []string `json:"warnings,omitempty"`
	ModelUsed   bool     `json:"model_used"`
	EntityCount int      `json:"entity_count"`
}

// engineSource tags which pass produced a result, so the merge compares
// tagged variants instead of mutating one shared record field-by-field.
type engineSource string

const (
	sourceDeterministic engineSource = "deterministic"
	sourceModel         engineSource = "model"
)

// Orchestrator runs the deterministic pass always and the model pass
// conditionally, then merges field-by-field by confidence.
type Orchestrator struct {
	deterministic *DeterministicExtractor
	model         *ModelExtractor
	clock         Clock
	threshold     float64
	logger        *zap.Logger
	metrics       *Metrics
}

// NewOrchestrator wires the two engines. completer is mandatory (use
// NoOpCompleter to disable the model pass); clock, logger and metrics
// may be nil.
func NewOrchestrator(cfg Config, completer Completer, clock Clock, logger *zap.Logger, metrics *Metrics) *Orchestrator {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfig().ConfidenceThreshold
	}
	return &Orchestrator{
		deterministic: NewDeterministicExtractor(),
		model:         NewModelExtractor(completer, cfg.ModelTimeout, logger.Named("model")),
		clock:         clock,
		threshold:     threshold,
		logger:        logger,
		metrics:       metrics,
	}
}

// Extract runs the full pipeline on (text, intent, timezone). It returns
// an error only for an unknown IANA zone, never for malformed input
// text; the record is simply emptier when less matched.
func (o *Orchestrator) Extract(ctx context.Context, text string, intent Intent, timezone string) (Result, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Result{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	// "now" is read once and threaded through both passes.
	now := o.clock.Now().In(loc)

	det := o.deterministic.Extract(text, intent, now)
	det.Confidence.Overall = det.Confidence.Weighted()
	o.metrics.recordPass(ctx, intent, sourceDeterministic)

	merged := det
	modelUsed := false
	if o.model.Available() && (det.Confidence.Overall < o.threshold || intent.DateSensitive()) {
		modelUsed = true
		start := time.Now()
		mod := o.model.Extract(ctx, text, intent, now)
		o.metrics.recordModelPass(ctx, intent, time.Since(start), mod.Count() == 0)
		mod.Confidence.Overall = mod.Confidence.Weighted()
		o.metrics.recordPass(ctx, intent, sourceModel)
		merged = o.merge(ctx, det, mod)
	}

	finalize(&merged)

	res := Result{
		Entities:    merged,
		Warnings:    warnings(merged, intent),
		ModelUsed:   modelUsed,
		EntityCount: merged.Count(),
	}
	o.logger.Debug("extraction complete",
		zap.String("intent", string(intent)),
		zap.Bool("model_used", modelUsed),
		zap.Int("entities", res.EntityCount),
		zap.Float64("overall", merged.Confidence.Overall),
	)
	return res, nil
}

// merge combines the two tagged results field-by-field, preferring the
// source with the higher per-field confidence. Never wholesale: a model
// pass may resolve the date correctly yet re-derive a worse title than
// the one the deterministic pass already cleaned.
func (o *Orchestrator) merge(ctx context.Context, det, mod Entities) Entities {
	var out Entities

	if mod.Confidence.Title > det.Confidence.Title {
		out.Title, out.Confidence.Title = mod.Title, mod.Confidence.Title
		o.metrics.recordMergePick(ctx, "title", sourceModel)
	} else {
		out.Title, out.Confidence.Title = det.Title, det.Confidence.Title
		o.metrics.recordMergePick(ctx, "title", sourceDeterministic)
	}

	// Date and its source text travel together.
	if mod.Confidence.Date > det.Confidence.Date {
		out.Date, out.DateText, out.Confidence.Date = mod.Date, mod.DateText, mod.Confidence.Date
		o.metrics.recordMergePick(ctx, "date", sourceModel)
	} else {
		out.Date, out.DateText, out.Confidence.Date = det.Date, det.DateText, det.Confidence.Date
		o.metrics.recordMergePick(ctx, "date", sourceDeterministic)
	}

	if mod.Confidence.Time > det.Confidence.Time {
		out.Time, out.Confidence.Time = mod.Time, mod.Confidence.Time
		o.metrics.recordMergePick(ctx, "time", sourceModel)
	} else {
		out.Time, out.Confidence.Time = det.Time, det.Confidence.Time
		o.metrics.recordMergePick(ctx, "time", sourceDeterministic)
	}

	if mod.Confidence.Location > det.Confidence.Location {
		out.Location, out.Confidence.Location = mod.Location, mod.Confidence.Location
		o.metrics.recordMergePick(ctx, "location", sourceModel)
	} else {
		out.Location, out.Confidence.Location = det.Location, det.Confidence.Location
		o.metrics.recordMergePick(ctx, "location", sourceDeterministic)
	}

	// Arithmetic and enum fields have no per-field score; the
	// deterministic pass derives them exactly, so it wins when it found
	// anything at all.
	out.ContactNames = det.ContactNames
	if len(out.ContactNames) == 0 {
		out.ContactNames = mod.ContactNames
	}
	out.DurationMinutes = det.DurationMinutes
	if out.DurationMinutes == 0 {
		out.DurationMinutes = mod.DurationMinutes
	}
	out.LeadTimeMinutes = det.LeadTimeMinutes
	if out.LeadTimeMinutes == 0 {
		out.LeadTimeMinutes = mod.LeadTimeMinutes
	}
	out.Priority = det.Priority
	if out.Priority == "" {
		out.Priority = mod.Priority
	}
	out.Notes = det.Notes
	if out.Notes == "" {
		out.Notes = mod.Notes
	}

	return out
}

// finalize derives the composite fields and the overall score on the
// merged record: zone-aware date+time merge, start/end times, weighted
// overall confidence.
func finalize(e *Entities) {
	if e.Date != nil && e.Time != "" {
		merged := mergeDateTime(*e.Date, e.Time)
		e.Date = &merged
	}
	if e.Date != nil {
		start := *e.Date
		e.StartTime = &start
		if e.DurationMinutes > 0 {
			end := start.Add(time.Duration(e.DurationMinutes) * time.Minute)
			e.EndTime = &end
		}
	}
	e.Confidence.Overall = e.Confidence.Weighted()
}

func warnings(e Entities, intent Intent) []string {
	var w []string
	if e.Confidence.Title < lowConfidence {
		w = append(w, WarnLowTitleConfidence)
	}
	if intent.DateSensitive() && e.Confidence.Date < lowConfidence {
		w = append(w, WarnLowDateConfidence)
	}
	return w
}
