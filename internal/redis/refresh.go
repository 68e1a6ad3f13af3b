package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// RefreshChannel carries "<userID> <tab>" messages between instances.
const RefreshChannel = "calnotes:refresh"

type Publisher struct {
	pool *redis.Pool
}

func NewPublisher(pool *redis.Pool) *Publisher {
	return &Publisher{pool: pool}
}

func (p *Publisher) Publish(ctx context.Context, userID, tab string) error {
	conn, err := p.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", RefreshChannel, encodeRefresh(userID, tab)); err != nil {
		return fmt.Errorf("publish refresh: %w", err)
	}

	return nil
}

type connSource interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

type Subscriber struct {
	pool     connSource
	registry *refresh.Registry
	logger   *zap.SugaredLogger

	// retryMin and retryMax bound the delay between reconnect attempts.
	retryMin time.Duration
	retryMax time.Duration
}

func NewSubscriber(pool *redis.Pool, registry *refresh.Registry, logger *zap.SugaredLogger) *Subscriber {
	return &Subscriber{
		pool:     pool,
		registry: registry,
		logger:   logger,
		retryMin: 500 * time.Millisecond,
		retryMax: 30 * time.Second,
	}
}

// Run delivers published refreshes to the local registry until ctx is done.
// A lost connection is re-established with exponential backoff.
func (s *Subscriber) Run(ctx context.Context) {
	delay := s.retryMin
	for {
		subscribed, err := s.listen(ctx)
		if ctx.Err() != nil {
			return
		}

		if subscribed {
			delay = s.retryMin
		}
		s.logger.Errorw("refresh subscription lost, reconnecting", "err", err, "retry_in", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > s.retryMax {
			delay = s.retryMax
		}
	}
}

// listen runs one subscription. subscribed reports whether SUBSCRIBE went
// through before the connection failed.
func (s *Subscriber) listen(ctx context.Context) (subscribed bool, err error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("get redis conn: %w", err)
	}

	psc := redis.PubSubConn{Conn: conn}
	defer psc.Close()

	if err := psc.Subscribe(RefreshChannel); err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		for {
			switch v := psc.Receive().(type) {
			case redis.Message:
				s.handle(v.Data)
			case redis.Subscription:
				if v.Count == 0 {
					done <- nil
					return
				}
			case error:
				done <- v
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		if err := psc.Unsubscribe(); err != nil {
			return true, fmt.Errorf("unsubscribe: %w", err)
		}
		<-done
		return true, nil
	case err := <-done:
		if err != nil {
			return true, fmt.Errorf("receive: %w", err)
		}
		return true, errors.New("subscription closed by server")
	}
}

func (s *Subscriber) handle(data []byte) {
	userID, tab, ok := decodeRefresh(data)
	if !ok {
		s.logger.Warnw("malformed refresh message", "data", string(data))
		return
	}

	n := s.registry.TriggerPrefix(refresh.UserPrefix(userID), tab)
	s.logger.Debugw("refresh delivered", "user_id", userID, "tab", tab, "streams", n)
}

func encodeRefresh(userID, tab string) string {
	return userID + " " + tab
}

func decodeRefresh(data []byte) (string, string, bool) {
	userID, tab, ok := strings.Cut(string(data), " ")
	if !ok || userID == "" || tab == "" {
		return "", "", false
	}
	return userID, tab, true
}
