// Package poller coordinates the timed refresh of controller telemetry and
// the event log. The two streams run on independent fixed-interval timers; a
// failed tick is logged, leaves the previous store value untouched and waits
// for the next tick. There is deliberately no backoff: the remote service
// intervals are fixed by design.
package poller

import (
	"context"
	"encoding/json"
	"time"

	"boiler-status-backend/config"
	"boiler-status-backend/internal/eventlog"
	"boiler-status-backend/internal/logger"
	"boiler-status-backend/internal/notification"
	"boiler-status-backend/internal/parse"
	"boiler-status-backend/internal/stokercloud"
	"boiler-status-backend/internal/store"
	"boiler-status-backend/internal/translate"
)

// Remote is the slice of the StokerCloud session the poller needs.
type Remote interface {
	FetchControllerData(ctx context.Context, screen string) (map[string]any, error)
	FetchEventLog(ctx context.Context, count, offset int) ([]stokercloud.Record, error)
}

// Service drives both poll streams.
type Service struct {
	cfg          *config.Config
	remote       Remote
	translations *translate.Cache
	store        *store.Store
	pool         *notification.WorkerPool
	log          *logger.Logger

	// seenEvents holds the serialized form of every raw record from the
	// previous event poll, so newly appeared records can be pushed to
	// subscribers. nil until the first successful event poll.
	seenEvents map[string]struct{}
}

// NewService wires the poller.
func NewService(cfg *config.Config, remote Remote, translations *translate.Cache, s *store.Store, pool *notification.WorkerPool, log *logger.Logger) *Service {
	return &Service{
		cfg:          cfg,
		remote:       remote,
		translations: translations,
		store:        s,
		pool:         pool,
		log:          log,
	}
}

// Run starts the notification workers and both poll loops, then blocks until
// the context is cancelled. Each stream polls once immediately on startup.
func (s *Service) Run(ctx context.Context) {
	s.log.Infow("starting poller",
		"controller_interval", s.cfg.StokerCloud.ControllerInterval,
		"event_interval", s.cfg.StokerCloud.EventInterval)

	s.pool.Start(ctx)

	go s.loop(ctx, s.cfg.StokerCloud.ControllerInterval, s.PollControllerOnce)
	go s.loop(ctx, s.cfg.StokerCloud.EventInterval, s.PollEventsOnce)

	<-ctx.Done()
	s.log.Infow("poller shutting down")
}

// loop runs one stream: poll, wait one interval, poll again. A tick only
// fires after the previous poll completed, so at most one fetch per stream
// is in flight.
func (s *Service) loop(ctx context.Context, interval time.Duration, poll func(context.Context)) {
	poll(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			poll(ctx)
			timer.Reset(interval)
		}
	}
}

// PollControllerOnce performs a single telemetry refresh.
func (s *Service) PollControllerOnce(ctx context.Context) {
	payload, err := s.remote.FetchControllerData(ctx, s.cfg.StokerCloud.Screen)
	if err != nil {
		s.log.Warnw("controller poll failed", "err", err)
		return
	}

	snapshot := parse.Controller(payload, time.Now().UTC())
	s.store.SetSnapshot(snapshot)
	s.log.Debugw("controller poll succeeded", "serial", snapshot.Serial)
}

// PollEventsOnce performs a single event-log refresh: fetch, enrich against
// the translation table, cut to the attribute budget, publish to the store
// and push newly appeared records to subscribers.
func (s *Service) PollEventsOnce(ctx context.Context) {
	sc := s.cfg.StokerCloud

	records, err := s.remote.FetchEventLog(ctx, sc.EventCount, sc.EventOffset)
	if err != nil {
		s.log.Warnw("event log poll failed", "err", err)
		return
	}

	table := s.translations.EnsureLoaded(ctx, sc.TranslationLanguage)
	enriched := translate.Enrich(records, table)
	kept, total, truncated := eventlog.Budget(enriched, sc.MaxAttributeBytes)

	s.store.SetEventLog(eventlog.Result{
		Events:              kept,
		EventsTotal:         total,
		EventsTruncated:     truncated,
		Count:               sc.EventCount,
		Offset:              sc.EventOffset,
		TranslationLanguage: sc.TranslationLanguage,
		TranslationsLoaded:  table.Loaded(),
	})
	s.log.Debugw("event log poll succeeded",
		"events", len(kept), "total", total, "truncated", truncated,
		"translations_loaded", table.Loaded())

	s.notifyNewEvents(records, enriched)
}

// notifyNewEvents dispatches one notification per record that was not
// present in the previous poll. The first successful poll only records the
// baseline, so startup does not flood subscribers with history.
func (s *Service) notifyNewEvents(records, enriched []stokercloud.Record) {
	current := make(map[string]struct{}, len(records))
	for _, record := range records {
		current[recordKey(record)] = struct{}{}
	}

	if s.seenEvents != nil {
		for i, record := range records {
			if _, ok := s.seenEvents[recordKey(record)]; ok {
				continue
			}
			s.pool.Dispatch(eventMessage(enriched[i]))
		}
	}
	s.seenEvents = current
}

// recordKey derives a stable identity for a raw record. json.Marshal sorts
// map keys, so equal records serialize equally.
func recordKey(record stokercloud.Record) string {
	encoded, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// eventMessage picks the most readable text a record offers.
func eventMessage(record eventlog.Record) string {
	for _, key := range []string{"message_translated", "message", "text"} {
		if text, ok := record[key].(string); ok && text != "" {
			return text
		}
	}
	return recordKey(record)
}
