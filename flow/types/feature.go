package types

import (
	"github.com/google/uuid"
)

// Feature is the unit of data flowing through the graph: a record with
// attributes and an optional geometry (spec.md §3).
//
// Features are value-semantic: every mutating method returns a new Feature
// rather than mutating the receiver in place, so downstream observers never
// see a producer's in-place update (Invariant: attribute round-trip).
type Feature struct {
	ID         uuid.UUID
	Attributes map[Attribute]Value
	Geometry   Geometry
	Metadata   map[string]Value
}

// New creates an empty feature with a freshly minted id.
func New() Feature {
	return Feature{
		ID:         uuid.New(),
		Attributes: make(map[Attribute]Value),
		Geometry:   NoGeometry{},
		Metadata:   make(map[string]Value),
	}
}

// Get returns the value bound to attr, if any.
func (f Feature) Get(attr Attribute) (Value, bool) {
	v, ok := f.Attributes[attr]
	return v, ok
}

// WithAttributes returns a new feature with the attribute map replaced,
// keeping the same id and geometry (spec.md §4.2). The replacement map is
// defensively copied so later mutation of attrs by the caller cannot leak
// into the returned feature.
func (f Feature) WithAttributes(attrs map[Attribute]Value) Feature {
	cp := make(map[Attribute]Value, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return Feature{
		ID:         f.ID,
		Attributes: cp,
		Geometry:   f.Geometry,
		Metadata:   f.Metadata,
	}
}

// CloneAttributes returns a defensive copy of the feature's attribute map,
// used as the starting point for a processor that adds/removes a few keys.
func (f Feature) CloneAttributes() map[Attribute]Value {
	cp := make(map[Attribute]Value, len(f.Attributes))
	for k, v := range f.Attributes {
		cp[k] = v
	}
	return cp
}

// Fork mints a fresh id for a copy of this feature. A processor that
// produces multiple downstream features from one input must call Fork for
// each copy (spec.md §3: "a processor that forks a feature must mint a
// fresh id for each copy").
func (f Feature) Fork() Feature {
	cp := f.WithAttributes(f.Attributes)
	cp.ID = uuid.New()
	cp.Geometry = f.Geometry
	meta := make(map[string]Value, len(f.Metadata))
	for k, v := range f.Metadata {
		meta[k] = v
	}
	cp.Metadata = meta
	return cp
}

// WithGeometry returns a new feature with the geometry replaced.
func (f Feature) WithGeometry(g Geometry) Feature {
	cp := f
	cp.Geometry = g
	return cp
}
