package core

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Facility is a physical location record with its amenity names.
//
// Facilities holds amenity names, never amenity ids. It is empty (not nil)
// when the facility has no amenities.
type Facility struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Address    string   `json:"address" yaml:"address"`
	Location   Location `json:"location" yaml:"location"`
	Facilities []string `json:"facilities" yaml:"facilities"`
}

// HasAmenity reports whether the facility lists the named amenity.
// Matching is exact and case-sensitive, the same rule the seeder uses.
func (f *Facility) HasAmenity(name string) bool {
	for _, a := range f.Facilities {
		if a == name {
			return true
		}
	}
	return false
}

// Amenity is a named feature shared across facilities.
type Amenity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stats holds row counts for the three directory tables.
type Stats struct {
	Facilities   int64 `json:"facilities"`
	Amenities    int64 `json:"amenities"`
	Associations int64 `json:"associations"`
}

// AnyEmpty reports whether at least one table has no rows.
func (s Stats) AnyEmpty() bool {
	return s.Facilities == 0 || s.Amenities == 0 || s.Associations == 0
}
