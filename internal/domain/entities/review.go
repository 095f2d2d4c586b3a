package entities

import "time"

// Review is a user comment attached to exactly one facility.
type Review struct {
	ID         string `json:"id" db:"id"`
	Comment    string `json:"comment" db:"comment"`
	UserID     string `json:"user_id" db:"user_id"`
	FacilityID string `json:"facility_id" db:"facility_id"`
	// Facility and User are resolved at read time, never stored denormalized.
	Facility  *Facility `json:"facility,omitempty" db:"-"`
	User      *User     `json:"user,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
