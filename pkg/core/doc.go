// Package core defines the shared language of the facility directory.
//
// This package contains:
//   - Domain entities (Facility, Location, Amenity)
//   - Read-side service interfaces (FacilityLister, FacilityGetter, Reader)
//   - Store statistics
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
