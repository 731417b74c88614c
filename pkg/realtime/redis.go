package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisSubscriber maps a showtime group onto a Redis pub/sub channel of the same name.
type RedisSubscriber struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{
		client: client,
		log:    log.With(zap.String("subscriber", "redis")),
	}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, group string, handle Handler) (Subscription, error) {
	ps := s.client.Subscribe(ctx, group)

	// wait for the subscribe confirmation so no event published afterwards is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", group, err)
	}

	sub := &redisSubscription{ps: ps, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for msg := range ps.Channel() {
			dispatch(s.log, group, []byte(msg.Payload), handle)
		}
	}()

	s.log.Debug("Joined group", zap.String("group", group))
	return sub, nil
}

func (s *RedisSubscriber) Close() error {
	return s.client.Close()
}

type redisSubscription struct {
	ps   *redis.PubSub
	once sync.Once
	done chan struct{}
	err  error
}

// Close unsubscribes and waits for the delivery goroutine to finish.
func (r *redisSubscription) Close() error {
	r.once.Do(func() {
		r.err = r.ps.Close()
		<-r.done
	})
	return r.err
}
