package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiler-status-backend/config"
	"boiler-status-backend/internal/eventlog"
	"boiler-status-backend/internal/logger"
	"boiler-status-backend/internal/notification"
	"boiler-status-backend/internal/stokercloud"
	"boiler-status-backend/internal/store"
	"boiler-status-backend/internal/translate"
)

// mockRemote is a mock implementation of the Remote interface.
type mockRemote struct {
	FetchControllerDataFunc func(ctx context.Context, screen string) (map[string]any, error)
	FetchEventLogFunc       func(ctx context.Context, count, offset int) ([]stokercloud.Record, error)
}

func (m *mockRemote) FetchControllerData(ctx context.Context, screen string) (map[string]any, error) {
	return m.FetchControllerDataFunc(ctx, screen)
}

func (m *mockRemote) FetchEventLog(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
	return m.FetchEventLogFunc(ctx, count, offset)
}

// mockTranslationFetcher is a scriptable translation document source.
type mockTranslationFetcher struct {
	entries map[string]string
	err     error
}

func (m *mockTranslationFetcher) Translations(ctx context.Context, language string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func testConfig() *config.Config {
	return &config.Config{
		StokerCloud: config.StokerCloudConfig{
			Screen:              "b1,3",
			EventCount:          2,
			EventOffset:         0,
			TranslationLanguage: "uk",
			MaxAttributeBytes:   16000,
		},
	}
}

func newTestService(remote Remote, fetcher translate.Fetcher) (*Service, *store.Store, *notification.WorkerPool) {
	log := logger.Get(logger.ErrorLevel)
	appStore := store.New()
	pool := notification.NewWorkerPool(16, appStore, nil, log)
	translations := translate.NewCache(fetcher, log)
	svc := NewService(testConfig(), remote, translations, appStore, pool, log)
	return svc, appStore, pool
}

func TestPollEventsOnce(t *testing.T) {
	t.Run("enriches, budgets and publishes the result", func(t *testing.T) {
		remote := &mockRemote{
			FetchEventLogFunc: func(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
				assert.Equal(t, 2, count)
				assert.Equal(t, 0, offset)
				return []stokercloud.Record{
					{"message": "lng_info_1"},
					{"message": "ok"},
				}, nil
			},
		}
		fetcher := &mockTranslationFetcher{entries: map[string]string{
			"lng_info_1": "Low boiler temperature",
		}}
		svc, appStore, _ := newTestService(remote, fetcher)

		svc.PollEventsOnce(context.Background())

		result, ok := appStore.EventLog()
		require.True(t, ok)
		assert.Equal(t, []eventlog.Record{
			{"message": "lng_info_1", "message_translated": "Low boiler temperature"},
			{"message": "ok"},
		}, result.Events)
		assert.Equal(t, 2, result.EventsTotal)
		assert.False(t, result.EventsTruncated)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, 0, result.Offset)
		assert.Equal(t, "uk", result.TranslationLanguage)
		assert.True(t, result.TranslationsLoaded)
	})

	t.Run("translation download failure degrades, events still delivered", func(t *testing.T) {
		remote := &mockRemote{
			FetchEventLogFunc: func(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
				return []stokercloud.Record{{"message": "lng_info_1"}}, nil
			},
		}
		fetcher := &mockTranslationFetcher{err: errors.New("translation host down")}
		svc, appStore, _ := newTestService(remote, fetcher)

		svc.PollEventsOnce(context.Background())

		result, ok := appStore.EventLog()
		require.True(t, ok)
		assert.False(t, result.TranslationsLoaded)
		assert.Equal(t, []eventlog.Record{{"message": "lng_info_1"}}, result.Events)
		assert.NotContains(t, result.Events[0], "message_translated")
	})

	t.Run("fetch failure keeps the previous result", func(t *testing.T) {
		fetchErr := error(nil)
		remote := &mockRemote{
			FetchEventLogFunc: func(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
				if fetchErr != nil {
					return nil, fetchErr
				}
				return []stokercloud.Record{{"message": "ok"}}, nil
			},
		}
		svc, appStore, _ := newTestService(remote, &mockTranslationFetcher{})

		svc.PollEventsOnce(context.Background())
		first, ok := appStore.EventLog()
		require.True(t, ok)

		fetchErr = &stokercloud.FetchError{Op: "event log", Cause: errors.New("timeout")}
		svc.PollEventsOnce(context.Background())

		second, ok := appStore.EventLog()
		require.True(t, ok, "stale-but-present after a failed cycle")
		assert.Equal(t, first, second)
	})

	t.Run("budget truncation is reflected in the result", func(t *testing.T) {
		remote := &mockRemote{
			FetchEventLogFunc: func(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
				return []stokercloud.Record{
					{"message": "first"},
					{"message": "second"},
				}, nil
			},
		}
		svc, appStore, _ := newTestService(remote, &mockTranslationFetcher{})
		svc.cfg.StokerCloud.MaxAttributeBytes = 25

		svc.PollEventsOnce(context.Background())

		result, ok := appStore.EventLog()
		require.True(t, ok)
		assert.Equal(t, []eventlog.Record{{"message": "first"}}, result.Events)
		assert.Equal(t, 2, result.EventsTotal)
		assert.True(t, result.EventsTruncated)
	})
}

func TestPollEventsOnce_Notifications(t *testing.T) {
	events := [][]stokercloud.Record{
		{{"message": "old"}},
		{{"message": "lng_info_1"}, {"message": "old"}},
	}
	poll := 0
	remote := &mockRemote{
		FetchEventLogFunc: func(ctx context.Context, count, offset int) ([]stokercloud.Record, error) {
			records := events[poll]
			if poll < len(events)-1 {
				poll++
			}
			return records, nil
		},
	}
	fetcher := &mockTranslationFetcher{entries: map[string]string{
		"lng_info_1": "Low boiler temperature",
	}}
	svc, _, pool := newTestService(remote, fetcher)

	// First successful poll only records the baseline.
	svc.PollEventsOnce(context.Background())
	select {
	case message := <-pool.Jobs():
		t.Fatalf("unexpected notification on first poll: %q", message)
	default:
	}

	// Second poll sees one new record and dispatches exactly one message,
	// using the translated text.
	svc.PollEventsOnce(context.Background())
	select {
	case message := <-pool.Jobs():
		assert.Equal(t, "Low boiler temperature", message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the notification job")
	}
	select {
	case message := <-pool.Jobs():
		t.Fatalf("unexpected extra notification: %q", message)
	default:
	}
}

func TestPollControllerOnce(t *testing.T) {
	t.Run("publishes a parsed snapshot", func(t *testing.T) {
		remote := &mockRemote{
			FetchControllerDataFunc: func(ctx context.Context, screen string) (map[string]any, error) {
				assert.Equal(t, "b1,3", screen)
				return map[string]any{
					"serial": "8245",
					"frontdata": []any{
						map[string]any{"id": "boilertemp", "value": "72.4"},
					},
					"miscdata": map[string]any{},
				}, nil
			},
		}
		svc, appStore, _ := newTestService(remote, &mockTranslationFetcher{})

		svc.PollControllerOnce(context.Background())

		snap, ok := appStore.Snapshot()
		require.True(t, ok)
		assert.Equal(t, "8245", snap.Serial)
		require.NotNil(t, snap.BoilerTempC)
		assert.Equal(t, 72.4, *snap.BoilerTempC)
	})

	t.Run("failure leaves the store unavailable at startup", func(t *testing.T) {
		remote := &mockRemote{
			FetchControllerDataFunc: func(ctx context.Context, screen string) (map[string]any, error) {
				return nil, &stokercloud.AuthError{Message: "login failed"}
			},
		}
		svc, appStore, _ := newTestService(remote, &mockTranslationFetcher{})

		svc.PollControllerOnce(context.Background())

		_, ok := appStore.Snapshot()
		assert.False(t, ok)
	})
}
