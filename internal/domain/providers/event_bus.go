package providers

import (
	"context"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.FacilityEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.FacilityEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelFacilityUpdates is the channel for all facility updates
	EventChannelFacilityUpdates = "facility:updates"

	// EventChannelFacilityPrefix is the prefix for facility-specific channels
	EventChannelFacilityPrefix = "facility:"
)

// GetFacilityChannel returns the channel name for a specific facility
func GetFacilityChannel(facilityID string) string {
	return EventChannelFacilityPrefix + facilityID
}
