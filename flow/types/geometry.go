package types

import (
	"errors"
	"fmt"
)

// ErrGeometryProjection is returned when a caller attempts to project a 2D
// geometry into 3D, which the original Rust geometry crate treats as a type
// error (original_source/worker/crates/geometry/src/error.rs: Error::Projection).
var ErrGeometryProjection = errors.New("types: cannot project 2D geometry into 3D")

// ErrMismatchedGeometry mirrors Error::MismatchedGeometry from the original
// geometry crate: an operation received a geometry variant it can't handle.
var ErrMismatchedGeometry = errors.New("types: mismatched geometry variant")

// Geometry is a sum type: None | FlowGeometry2D(G2) | FlowGeometry3D(G3) |
// CityGmlGeometry(features) (spec.md §3). Implemented as a closed interface
// rather than a tagged struct because each variant carries materially
// different payload shapes (2D coords vs. 3D coords vs. raw CityGML
// features).
type Geometry interface {
	isGeometry()
	// Is3D reports whether this geometry carries Z coordinates.
	Is3D() bool
}

// NoGeometry marks "a feature with no geometry"; New sets it. (The zero
// value of the Geometry interface itself is nil.)
type NoGeometry struct{}

func (NoGeometry) isGeometry() {}
func (NoGeometry) Is3D() bool  { return false }

// GeometryType enumerates the shape variants shared by 2D and 3D geometry.
type GeometryType int

const (
	GeomPoint GeometryType = iota
	GeomLine
	GeomLineString
	GeomMultiLineString
	GeomPolygon
	GeomMultiPolygon
	GeomCollection
)

// Coord2D is a planar coordinate.
type Coord2D struct{ X, Y float64 }

// Coord3D is a coordinate with an elevation component.
type Coord3D struct{ X, Y, Z float64 }

// Ring2D is a closed linear ring: Close ensures the first and last
// coordinates coincide (spec.md §3 invariant; grounded on
// original_source/worker/crates/geometry/src/types/polygon.rs, which closes
// the exterior/interior rings on construction).
type Ring2D []Coord2D

func (r Ring2D) Close() Ring2D {
	if len(r) == 0 {
		return r
	}
	first, last := r[0], r[len(r)-1]
	if first == last {
		return r
	}
	return append(append(Ring2D{}, r...), first)
}

func (r Ring2D) Closed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Ring3D is the 3D analogue of Ring2D.
type Ring3D []Coord3D

func (r Ring3D) Close() Ring3D {
	if len(r) == 0 {
		return r
	}
	first, last := r[0], r[len(r)-1]
	if first == last {
		return r
	}
	return append(append(Ring3D{}, r...), first)
}

func (r Ring3D) Closed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Polygon2D pairs an exterior ring with zero or more interior rings
// (holes), both closed on construction.
type Polygon2D struct {
	Exterior  Ring2D
	Interiors []Ring2D
}

func NewPolygon2D(exterior Ring2D, interiors []Ring2D) Polygon2D {
	closedInteriors := make([]Ring2D, len(interiors))
	for i, r := range interiors {
		closedInteriors[i] = r.Close()
	}
	return Polygon2D{Exterior: exterior.Close(), Interiors: closedInteriors}
}

// Polygon3D is the 3D analogue of Polygon2D.
type Polygon3D struct {
	Exterior  Ring3D
	Interiors []Ring3D
}

func NewPolygon3D(exterior Ring3D, interiors []Ring3D) Polygon3D {
	closedInteriors := make([]Ring3D, len(interiors))
	for i, r := range interiors {
		closedInteriors[i] = r.Close()
	}
	return Polygon3D{Exterior: exterior.Close(), Interiors: closedInteriors}
}

// Geometry2D wraps one of Point/Line/LineString/MultiLineString/Polygon/
// MultiPolygon/GeometryCollection with planar coordinates.
type Geometry2D struct {
	Type      GeometryType
	Points    []Coord2D   // Point, Line, LineString
	Lines     [][]Coord2D // MultiLineString
	Polygon   Polygon2D
	Polygons  []Polygon2D // MultiPolygon
	Collection []Geometry2D
}

func (Geometry2D) isGeometry() {}
func (Geometry2D) Is3D() bool  { return false }

// Geometry3D is the 3D analogue of Geometry2D.
type Geometry3D struct {
	Type       GeometryType
	Points     []Coord3D
	Lines      [][]Coord3D
	Polygon    Polygon3D
	Polygons   []Polygon3D
	Collection []Geometry3D
}

func (Geometry3D) isGeometry() {}
func (Geometry3D) Is3D() bool  { return true }

// GmlFeature is an opaque, source-preserving CityGML topology fragment; the
// runtime routes it but never interprets its contents (spec.md §1: CityGML
// parsing is out of scope for the core — only the contract matters).
type GmlFeature struct {
	ID         string
	Attributes map[string]Value
	Raw        []byte
}

// CityGmlGeometry carries the original CityGML feature graph untouched, so
// CityGML-aware processors downstream can still recover full topology that a
// lossy 2D/3D conversion would discard.
type CityGmlGeometry struct {
	Features []GmlFeature
}

func (CityGmlGeometry) isGeometry() {}
func (CityGmlGeometry) Is3D() bool  { return true }

// To2D projects a 3D geometry into 2D by dropping the Z coordinate. It is a
// total operation — 3D geometries can always be projected into 2D
// (spec.md §3).
func To2D(g Geometry3D) Geometry2D {
	out := Geometry2D{Type: g.Type}
	out.Points = dropZ(g.Points)
	for _, l := range g.Lines {
		out.Lines = append(out.Lines, dropZ(l))
	}
	out.Polygon = Polygon2D{Exterior: dropZRing(g.Polygon.Exterior)}
	for _, in := range g.Polygon.Interiors {
		out.Polygon.Interiors = append(out.Polygon.Interiors, dropZRing(in))
	}
	for _, p := range g.Polygons {
		poly := Polygon2D{Exterior: dropZRing(p.Exterior)}
		for _, in := range p.Interiors {
			poly.Interiors = append(poly.Interiors, dropZRing(in))
		}
		out.Polygons = append(out.Polygons, poly)
	}
	for _, c := range g.Collection {
		out.Collection = append(out.Collection, To2D(c))
	}
	return out
}

// To3D is a type error in the original system: 2D→3D conversion requires
// information (an elevation) that a 2D geometry does not carry, so this
// always fails with ErrGeometryProjection (spec.md §3 invariant).
func To3D(Geometry2D) (Geometry3D, error) {
	return Geometry3D{}, fmt.Errorf("geometry: %w", ErrGeometryProjection)
}

func dropZ(pts []Coord3D) []Coord2D {
	out := make([]Coord2D, len(pts))
	for i, p := range pts {
		out[i] = Coord2D{X: p.X, Y: p.Y}
	}
	return out
}

func dropZRing(r Ring3D) Ring2D {
	out := make(Ring2D, len(r))
	for i, p := range r {
		out[i] = Coord2D{X: p.X, Y: p.Y}
	}
	return out
}
