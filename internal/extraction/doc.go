// Package extraction turns free-form Hebrew calendar text into typed
// entity records: title, date/time, location, participants, duration,
// priority and reminder lead time, each with a confidence score.
//
// # Architecture
//
// Two engines share one entity shape:
//   - DeterministicExtractor: regex/pattern pass, offline, pure and
//     synchronous. Always runs.
//   - ModelExtractor: generative-model pass over a Completer, invoked
//     when the deterministic overall confidence is below threshold or
//     the intent is date-sensitive. Provider failures collapse to an
//     empty record with overall confidence 0.
//
// The Orchestrator merges both results field-by-field, preferring the
// source with the higher per-field confidence, and surfaces non-fatal
// warnings alongside the merged record.
//
// # Usage
//
//	completer, err := extraction.NewCompleter(cfg)
//	if err != nil { ... }
//	orch := extraction.NewOrchestrator(cfg, completer, nil, logger, nil)
//	res, err := orch.Extract(ctx, text, extraction.IntentCreateEvent, "Asia/Jerusalem")
//
// # Failure semantics
//
// The engine never fails on malformed input. A field absent from the
// text is absent from the record at confidence 0; the only returned
// error is an unknown IANA zone.
package extraction
