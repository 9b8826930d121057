package eventlog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializedSize(t *testing.T, records []Record) int {
	t.Helper()
	encoded, err := json.Marshal(records)
	require.NoError(t, err)
	return len(encoded)
}

func TestBudget(t *testing.T) {
	records := []Record{
		{"message": "lng_info_1", "message_translated": "Low boiler temperature"},
		{"message": "ok"},
		{"message": "lng_alarm_2"},
	}

	t.Run("everything fits, list unmodified", func(t *testing.T) {
		kept, total, truncated := Budget(records, serializedSize(t, records))

		assert.Equal(t, records, kept)
		assert.Equal(t, 3, total)
		assert.False(t, truncated)
	})

	t.Run("budget one byte short drops the last record", func(t *testing.T) {
		kept, total, truncated := Budget(records, serializedSize(t, records)-1)

		assert.Equal(t, records[:2], kept, "kept records are a prefix of the original order")
		assert.Equal(t, 3, total)
		assert.True(t, truncated)
	})

	t.Run("oversized first record yields empty list, not an error", func(t *testing.T) {
		big := []Record{{"message": strings.Repeat("x", 100)}}

		kept, total, truncated := Budget(big, 50)

		assert.Empty(t, kept)
		assert.Equal(t, 1, total)
		assert.True(t, truncated)
	})

	t.Run("empty input", func(t *testing.T) {
		kept, total, truncated := Budget(nil, 100)

		assert.Empty(t, kept)
		assert.Zero(t, total)
		assert.False(t, truncated)
	})

	t.Run("size accounting matches the final marshal", func(t *testing.T) {
		for budget := 1; budget <= serializedSize(t, records); budget++ {
			kept, total, truncated := Budget(records, budget)

			assert.LessOrEqual(t, serializedSize(t, kept), maxInt(budget, 2),
				"kept list must serialize within the budget (budget %d)", budget)
			assert.Equal(t, 3, total)
			assert.Equal(t, len(kept) < total, truncated)
		}
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
