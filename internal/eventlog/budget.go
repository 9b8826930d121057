package eventlog

import "encoding/json"

// Budget truncates records to fit maxBytes of compact JSON, measured as the
// serialized array the host will store. Records are included cumulatively in
// their original order and inclusion stops before the first record that
// would push the total over the budget. An oversized first record is a data
// condition, not an error: the result is an empty list marked truncated.
func Budget(records []Record, maxBytes int) (kept []Record, total int, truncated bool) {
	total = len(records)
	if total == 0 {
		return []Record{}, 0, false
	}

	// Account for the array frame and separators the same way the final
	// marshal will: "[" + record(,record)* + "]".
	size := 2
	for i, record := range records {
		encoded, err := json.Marshal(record)
		if err != nil {
			// A record that cannot be serialized cannot be delivered either.
			return records[:i], total, true
		}
		next := size + len(encoded)
		if i > 0 {
			next++ // comma
		}
		if next > maxBytes {
			return records[:i], total, true
		}
		size = next
	}
	return records, total, false
}
