package notification

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"boiler-status-backend/internal/logger"
	"boiler-status-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans event notifications out to all registered subscribers.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   *store.Store
	webpush *webpush.Options
	sender  Sender
	log     *logger.Logger
}

// NewWorkerPool creates a new worker pool reading subscriptions from the
// given store.
func NewWorkerPool(size int, s *store.Store, webpushOptions *webpush.Options, log *logger.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debugw("notification worker started", "worker", id)
	for {
		select {
		case message := <-wp.jobs:
			wp.broadcast(message)
		case <-ctx.Done():
			wp.log.Debugw("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues one notification message for delivery.
func (wp *WorkerPool) Dispatch(message string) {
	wp.jobs <- message
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// broadcast sends the message to every registered subscription.
func (wp *WorkerPool) broadcast(message string) {
	subscriptions := wp.store.Subscriptions()
	if len(subscriptions) == 0 {
		return
	}

	wp.log.Infow("sending event notifications", "subscribers", len(subscriptions))
	for _, sub := range subscriptions {
		wp.send(sub, []byte(message))
	}
}

// send delivers a single web push notification, pruning the subscription
// when the push service reports it gone.
func (wp *WorkerPool) send(sub store.Subscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warnw("failed to send notification", "endpoint", sub.Endpoint, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Infow("subscription expired, removing", "endpoint", sub.Endpoint)
		wp.store.DeleteSubscription(sub.Endpoint)
	}
}
