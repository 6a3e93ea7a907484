package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(channel string, message []byte) error

	// Subscribe подписывается на канал и возвращает канал для сообщений.
	// Канал закрывается при отмене ctx или вызове Close.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close освобождает подписки
	Close() error
}

// RedisPubSub реализует PubSubProvider поверх Redis Pub/Sub.
// Клиент Redis общий с кешем, поэтому Close его не закрывает.
type RedisPubSub struct {
	client redis.UniversalClient
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	subscriptions map[string]*redis.PubSub
}

// NewRedisPubSub создает Redis Pub/Sub провайдер на существующем клиенте
func NewRedisPubSub(client redis.UniversalClient) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}

	ctx, cancelCheck := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCheck()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("provided redis client failed ping check: %w", err)
	}

	ctxPubSub, cancelPubSub := context.WithCancel(context.Background())
	return &RedisPubSub{
		client:        client,
		ctx:           ctxPubSub,
		cancel:        cancelPubSub,
		subscriptions: make(map[string]*redis.PubSub),
	}, nil
}

// Publish публикует сообщение в канал Redis
func (p *RedisPubSub) Publish(channel string, message []byte) error {
	if err := p.client.Publish(p.ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[channel]; exists {
		return nil, fmt.Errorf("already subscribed to Redis channel %s", channel)
	}

	pubsub := p.client.Subscribe(p.ctx, channel)
	// Ждем подтверждения подписки
	if _, err := pubsub.Receive(p.ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}
	p.subscriptions[channel] = pubsub
	log.Printf("[RedisPubSub] Подписка на канал '%s' оформлена", channel)

	msgCh := make(chan []byte, 100)

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.subscriptions, channel)
			p.mu.Unlock()
			pubsub.Close()
			close(msgCh)
			log.Printf("[RedisPubSub] Подписка на канал '%s' закрыта", channel)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case msgCh <- []byte(msg.Payload):
				case <-p.ctx.Done():
					return
				case <-ctx.Done():
					return
				}
			case <-p.ctx.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgCh, nil
}

// Close останавливает все подписки
func (p *RedisPubSub) Close() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for channel, pubsub := range p.subscriptions {
		if err := pubsub.Close(); err != nil {
			log.Printf("[RedisPubSub] Ошибка закрытия подписки на '%s': %v", channel, err)
			lastErr = err
		}
	}
	return lastErr
}
