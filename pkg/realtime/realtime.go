// Package realtime delivers seat lock events pushed on a showtime group.
// Delivery is at-least-once and may be reordered; consumers must fold events
// idempotently.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cinema-reservation/internal/data/entity"

	"go.uber.org/zap"
)

// EventSeatsLockUpdated is the only event name consumed from a showtime group.
const EventSeatsLockUpdated = "SeatsLockUpdated"

var errIgnoredEvent = errors.New("event ignored")

type Handler func(entity.LockEvent)

type Subscription interface {
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, group string, handle Handler) (Subscription, error)
	Close() error
}

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// decode accepts either {"event":"SeatsLockUpdated","payload":{...}} or a bare payload.
func decode(raw []byte) (entity.LockEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return entity.LockEvent{}, fmt.Errorf("decode envelope: %w", err)
	}

	body := raw
	if env.Event != "" {
		if env.Event != EventSeatsLockUpdated {
			return entity.LockEvent{}, errIgnoredEvent
		}
		if len(env.Payload) == 0 {
			return entity.LockEvent{}, errors.New("missing payload")
		}
		body = env.Payload
	}

	var msg entity.SeatsLockUpdated
	if err := json.Unmarshal(body, &msg); err != nil {
		return entity.LockEvent{}, fmt.Errorf("decode payload: %w", err)
	}
	if msg.Action == "" {
		return entity.LockEvent{}, errors.New("missing action")
	}
	return msg.Event(), nil
}

// dispatch decodes raw and hands it to handle. Malformed messages are logged and dropped.
func dispatch(log *zap.Logger, group string, raw []byte, handle Handler) {
	ev, err := decode(raw)
	if errors.Is(err, errIgnoredEvent) {
		return
	}
	if err != nil {
		log.Warn("Dropping malformed lock event",
			zap.String("group", group),
			zap.Error(err),
		)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Lock event handler panicked",
				zap.String("group", group),
				zap.Any("error", r),
				zap.Stack("stack"),
			)
		}
	}()
	handle(ev)
}

// NopSubscriber is used when no real-time driver is configured.
type NopSubscriber struct{}

func (NopSubscriber) Subscribe(context.Context, string, Handler) (Subscription, error) {
	return nopSubscription{}, nil
}

func (NopSubscriber) Close() error { return nil }

type nopSubscription struct{}

func (nopSubscription) Close() error { return nil }
