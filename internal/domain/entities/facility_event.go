package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// FacilityEventType represents the type of facility event
type FacilityEventType string

const (
	FacilityEventTypeCreated FacilityEventType = "created"
	FacilityEventTypeUpdated FacilityEventType = "updated"
	FacilityEventTypeDeleted FacilityEventType = "deleted"
)

// FacilityEvent is a real-time update published when a facility changes,
// consumed by map clients over SSE.
type FacilityEvent struct {
	ID         string            `json:"id"`
	FacilityID string            `json:"facility_id"`
	TypeID     string            `json:"type_id"`
	EventType  FacilityEventType `json:"event_type"`
	Timestamp  time.Time         `json:"timestamp"`
	Location   Location          `json:"location"`
}

// NewFacilityEvent creates a new facility event
func NewFacilityEvent(facility *Facility, eventType FacilityEventType) *FacilityEvent {
	return &FacilityEvent{
		ID:         generateEventID(),
		FacilityID: facility.ID,
		TypeID:     facility.TypeID,
		EventType:  eventType,
		Timestamp:  time.Now(),
		Location:   facility.Location,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
