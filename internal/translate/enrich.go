package translate

import "boiler-status-backend/internal/eventlog"

// Enrich returns a new record list where every string-valued field whose
// value resolves in the table gains a sibling "<field>_translated" field.
// Source records are never mutated, so callers keep raw-data fidelity.
// Non-string values are left alone; records are flat key-value mappings and
// no nesting is assumed.
func Enrich(records []eventlog.Record, table Table) []eventlog.Record {
	if !table.Loaded() {
		return records
	}

	enriched := make([]eventlog.Record, 0, len(records))
	for _, record := range records {
		out := make(eventlog.Record, len(record))
		for key, value := range record {
			out[key] = value
		}
		for key, value := range record {
			text, ok := value.(string)
			if !ok {
				continue
			}
			if translated, ok := table.Lookup(text); ok {
				out[key+"_translated"] = translated
			}
		}
		enriched = append(enriched, out)
	}
	return enriched
}
