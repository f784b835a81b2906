package core

import "testing"

func TestFacility_HasAmenity(t *testing.T) {
	f := &Facility{Facilities: []string{"WiFi", "Pool"}}

	tests := []struct {
		name string
		want bool
	}{
		{"WiFi", true},
		{"Pool", true},
		{"wifi", false},
		{"Gym", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.HasAmenity(tt.name); got != tt.want {
				t.Errorf("HasAmenity(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestStats_AnyEmpty(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  bool
	}{
		{"all populated", Stats{Facilities: 2, Amenities: 3, Associations: 4}, false},
		{"no facilities", Stats{Amenities: 3, Associations: 4}, true},
		{"no amenities", Stats{Facilities: 2, Associations: 4}, true},
		{"no associations", Stats{Facilities: 2, Amenities: 3}, true},
		{"fresh database", Stats{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.AnyEmpty(); got != tt.want {
				t.Errorf("AnyEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
