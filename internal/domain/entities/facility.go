package entities

import "time"

// Facility represents a point-of-interest record: a school, clinic,
// government office or place of worship shown on the public map.
type Facility struct {
	ID        string `json:"id" db:"id"`
	TypeID    string `json:"type_id" db:"type_id"`
	Name      string `json:"name" db:"name"`
	OpenTime  string `json:"open_time" db:"open_time"`
	CloseTime string `json:"close_time" db:"close_time"`
	Address   string `json:"address" db:"address"`
	// Photo is a stored asset reference (content-hash named), nil when no
	// photo has been uploaded.
	Photo       *string  `json:"photo,omitempty" db:"photo"`
	Location    Location `json:"location" db:"-"`
	Description string   `json:"description" db:"description"`
	// SubFacilities is the facility's selection from its type's
	// AllowedSubFacilities vocabulary.
	SubFacilities []string `json:"sub_facilities" db:"-"`
	// Type is populated on read paths that join the owning facility type.
	Type      *FacilityType `json:"type,omitempty" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}
