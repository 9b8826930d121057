package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiler-status-backend/internal/eventlog"
)

func TestEnrich(t *testing.T) {
	table := TableFromEntries(map[string]string{
		"lng_info_1": "Low boiler temperature",
	})

	t.Run("adds translated sibling fields and keeps originals", func(t *testing.T) {
		records := []eventlog.Record{
			{"message": "lng_info_1"},
			{"message": "ok"},
		}

		enriched := Enrich(records, table)

		require.Len(t, enriched, 2)
		assert.Equal(t, eventlog.Record{
			"message":            "lng_info_1",
			"message_translated": "Low boiler temperature",
		}, enriched[0])
		assert.Equal(t, eventlog.Record{"message": "ok"}, enriched[1])
	})

	t.Run("never mutates the source records", func(t *testing.T) {
		records := []eventlog.Record{
			{"message": "lng_info_1", "ts": 1700000000.0},
		}

		Enrich(records, table)

		assert.Equal(t, eventlog.Record{"message": "lng_info_1", "ts": 1700000000.0}, records[0])
	})

	t.Run("non-string values are never enriched", func(t *testing.T) {
		records := []eventlog.Record{
			{"code": 17.0, "flag": true, "message": "lng_info_1"},
		}

		enriched := Enrich(records, table)

		assert.Equal(t, eventlog.Record{
			"code":               17.0,
			"flag":               true,
			"message":            "lng_info_1",
			"message_translated": "Low boiler temperature",
		}, enriched[0])
	})

	t.Run("all-miss lookup yields structurally equal records", func(t *testing.T) {
		records := []eventlog.Record{
			{"message": "not_a_key"},
			{"message": "also_not"},
		}

		enriched := Enrich(records, TableFromEntries(map[string]string{"other": "text"}))

		assert.Equal(t, records, enriched)
	})

	t.Run("unloaded table passes records through", func(t *testing.T) {
		records := []eventlog.Record{{"message": "lng_info_1"}}

		enriched := Enrich(records, Table{})

		assert.Equal(t, records, enriched)
	})

	t.Run("lookup is exact-match and case-sensitive", func(t *testing.T) {
		records := []eventlog.Record{
			{"message": "LNG_INFO_1"},
			{"message": "lng_info_1 "},
		}

		enriched := Enrich(records, table)

		assert.NotContains(t, enriched[0], "message_translated")
		assert.NotContains(t, enriched[1], "message_translated")
	})
}
