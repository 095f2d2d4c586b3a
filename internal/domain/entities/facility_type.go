package entities

import "time"

// FacilityType is an administrator-defined category of facility. It carries
// the display assets used by the map (icon for pickers, marker for pins) and
// the controlled vocabulary of sub-facility tags its members may declare.
type FacilityType struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	// Icon and Marker are stored asset references, not URLs. They are named
	// after the type at creation time (<name>_icon.<ext>); renaming the type
	// does not rename existing asset files.
	Icon                 *string   `json:"icon,omitempty" db:"icon"`
	Marker               *string   `json:"marker,omitempty" db:"marker"`
	AllowedSubFacilities []string  `json:"allowed_sub_facilities" db:"-"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// AllowsSubFacility reports whether tag is part of the type's vocabulary.
func (t *FacilityType) AllowsSubFacility(tag string) bool {
	for _, allowed := range t.AllowedSubFacilities {
		if allowed == tag {
			return true
		}
	}
	return false
}

// FacilityTypeSummary is the id+name projection used by lightweight pickers.
type FacilityTypeSummary struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// FacilityTypeCount is the taxonomy dashboard row: one type with the number
// of facilities classified against it.
type FacilityTypeCount struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Icon          *string `json:"icon,omitempty"`
	FacilityCount int     `json:"facility_count"`
}
