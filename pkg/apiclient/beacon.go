package apiclient

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BeaconSender delivers prepared requests on a worker that outlives the caller.
// It backs the page-unload path, where the request must be built synchronously
// and must not depend on the caller's context surviving.
type BeaconSender struct {
	client  *http.Client
	queue   chan *http.Request
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewBeaconSender(client *http.Client, queueSize int, timeout time.Duration, log *zap.Logger) *BeaconSender {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	b := &BeaconSender{
		client:  client,
		queue:   make(chan *http.Request, queueSize),
		timeout: timeout,
		log:     log.With(zap.String("component", "beacon")),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Send queues req and returns false when it could not be accepted.
func (b *BeaconSender) Send(req *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	select {
	case b.queue <- req:
		return true
	default:
		b.log.Warn("Beacon queue full, dropping request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		return false
	}
}

// Close stops accepting requests and waits for queued ones to be delivered.
func (b *BeaconSender) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
}

func (b *BeaconSender) run() {
	defer close(b.done)
	for req := range b.queue {
		b.deliver(req)
	}
}

func (b *BeaconSender) deliver(req *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	resp, err := b.client.Do(req.WithContext(ctx))
	if err != nil {
		b.log.Warn("Beacon delivery failed",
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		b.log.Warn("Beacon rejected by backend",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return
	}

	b.log.Debug("Beacon delivered", zap.String("path", req.URL.Path))
}
