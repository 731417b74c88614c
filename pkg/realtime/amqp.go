package realtime

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPSubscriber consumes lock events from a topic exchange where the routing
// key is the showtime group. Each subscription owns an exclusive, auto-deleted
// queue so it only sees events published while it is alive.
type AMQPSubscriber struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger
}

func DialAMQP(url, exchange string, log *zap.Logger) (*AMQPSubscriber, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}

	return &AMQPSubscriber{
		conn:     conn,
		exchange: exchange,
		log:      log.With(zap.String("subscriber", "amqp")),
	}, nil
}

func (s *AMQPSubscriber) Subscribe(ctx context.Context, group string, handle Handler) (Subscription, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, group, s.exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue bind %s: %w", group, err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue consume: %w", err)
	}

	sub := &amqpSubscription{ch: ch, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for d := range msgs {
			dispatch(s.log, group, d.Body, handle)
		}
	}()

	s.log.Debug("Joined group", zap.String("group", group), zap.String("queue", q.Name))
	return sub, nil
}

// Publish sends a raw lock event to a group. Used by tooling and tests.
func (s *AMQPSubscriber) Publish(ctx context.Context, group string, body []byte) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	return ch.PublishWithContext(ctx, s.exchange, group, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (s *AMQPSubscriber) Close() error {
	return s.conn.Close()
}

type amqpSubscription struct {
	ch   *amqp.Channel
	once sync.Once
	done chan struct{}
	err  error
}

func (a *amqpSubscription) Close() error {
	a.once.Do(func() {
		a.err = a.ch.Close()
		<-a.done
	})
	return a.err
}
