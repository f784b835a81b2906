package core

import "context"

// FacilityLister returns one page of facilities ordered by name.
// An empty or whitespace-only search returns the unfiltered listing.
type FacilityLister interface {
	ListFacilities(ctx context.Context, limit, offset int, search string) ([]Facility, error)
}

// FacilityGetter looks up a single facility.
// A missing id yields (nil, nil), not an error.
type FacilityGetter interface {
	GetFacility(ctx context.Context, id string) (*Facility, error)
}

// Reader is the full read surface of the directory store.
type Reader interface {
	FacilityLister
	FacilityGetter
	ListAmenities(ctx context.Context) ([]Amenity, error)
	Counts(ctx context.Context) (Stats, error)
}
