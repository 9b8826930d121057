// Package eventlog holds the host-facing event-log result and the
// serialized-size budgeter that keeps it under the host's attribute ceiling.
package eventlog

// Record is one event-log entry: a flat mapping of scalar values. Enrichment
// may add "<field>_translated" keys; raw fields are never removed.
type Record = map[string]any

// Result is the event-log aggregate handed to the host. Invariants:
// EventsTotal >= len(Events), and EventsTruncated is true exactly when
// records were dropped to honor the size budget.
type Result struct {
	Events              []Record `json:"events"`
	EventsTotal         int      `json:"events_total"`
	EventsTruncated     bool     `json:"events_truncated"`
	Count               int      `json:"count"`
	Offset              int      `json:"offset"`
	TranslationLanguage string   `json:"translation_language"`
	TranslationsLoaded  bool     `json:"translations_loaded"`
}
