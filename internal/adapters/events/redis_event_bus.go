package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	redisclient "github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus fans facility change events out over Redis Pub/Sub.
// Facility writes publish here and the SSE handler subscribes, so map
// clients connected to any API instance see the change. One Redis
// subscription is held per channel no matter how many watchers are
// attached to it.
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	watchers      map[string]map[chan *entities.FacilityEvent]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates an event bus backed by Redis Pub/Sub
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		watchers:      make(map[string]map[chan *entities.FacilityEvent]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish sends a facility event to every watcher of the channel,
// across all API instances
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.FacilityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal facility event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish facility event: %w", err)
	}

	log.Printf("Published facility event %s to channel %s", event.ID, channel)
	return nil
}

// Subscribe attaches a watcher to the channel. The returned channel is
// closed when ctx is done, which for SSE means the client disconnected.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FacilityEvent, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.pump(channel, pubsub)
	}

	if b.watchers[channel] == nil {
		b.watchers[channel] = make(map[chan *entities.FacilityEvent]struct{})
	}

	sink := make(chan *entities.FacilityEvent, 100)
	b.watchers[channel][sink] = struct{}{}
	watcherCount := len(b.watchers[channel])
	b.mu.Unlock()

	log.Printf("Watcher attached to channel %s (watchers: %d)", channel, watcherCount)

	go func() {
		<-ctx.Done()
		b.detachWatcher(channel, sink)
	}()

	return sink, nil
}

// pump drains the Redis subscription and broadcasts each facility
// event to the channel's watchers
func (b *RedisEventBus) pump(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := b.closeChannel(channel); err != nil {
			log.Printf("Failed to close channel %s: %v", channel, err)
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.FacilityEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Failed to unmarshal facility event from channel %s: %v", channel, err)
				continue
			}

			b.mu.RLock()
			for sink := range b.watchers[channel] {
				select {
				case sink <- &event:
				default:
					// Watcher is not keeping up, drop the event for it
					log.Printf("Watcher on %s is full, dropping event %s", channel, event.ID)
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) detachWatcher(channel string, sink chan *entities.FacilityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	watchers, exists := b.watchers[channel]
	if !exists {
		return
	}

	if _, ok := watchers[sink]; !ok {
		return
	}

	delete(watchers, sink)
	close(sink)

	// Last watcher gone, drop the Redis subscription too
	if len(watchers) == 0 {
		delete(b.watchers, channel)
		if pubsub, ok := b.subscriptions[channel]; ok {
			_ = pubsub.Close()
			delete(b.subscriptions, channel)
			log.Printf("Closed subscription to channel %s", channel)
		}
	}
}

func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if watchers, exists := b.watchers[channel]; exists {
		for sink := range watchers {
			close(sink)
		}
		delete(b.watchers, channel)
	}

	if pubsub, ok := b.subscriptions[channel]; ok {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", channel, err)
		}
		delete(b.subscriptions, channel)
		log.Printf("Closed subscription to channel %s", channel)
	}

	return nil
}

// Unsubscribe drops the channel and every watcher attached to it
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	if err := b.closeChannel(channel); err != nil {
		return err
	}
	log.Printf("Unsubscribed from channel %s", channel)
	return nil
}

// Close shuts the bus down, closing every subscription and watcher
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.subscriptions))
	for channel := range b.subscriptions {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.closeChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}

	log.Println("Event bus closed")
	return nil
}
