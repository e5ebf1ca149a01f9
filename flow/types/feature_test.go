package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureWithAttributesRoundTrip(t *testing.T) {
	f := New()
	f.Attributes[Attribute("a")] = Int(1)

	got := f.WithAttributes(f.Attributes)

	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, f.Attributes, got.Attributes)
}

func TestFeatureWithAttributesIsDefensiveCopy(t *testing.T) {
	f := New()
	attrs := map[Attribute]Value{"a": Int(1)}

	got := f.WithAttributes(attrs)
	attrs["a"] = Int(2)

	v, ok := got.Get("a")
	require.True(t, ok)
	n, _ := v.AsNumber()
	assert.Equal(t, int64(1), n.I)
}

func TestFeatureForkMintsFreshID(t *testing.T) {
	f := New()
	f.Attributes[Attribute("a")] = String("x")

	cp := f.Fork()

	assert.NotEqual(t, f.ID, cp.ID)
	assert.Equal(t, f.Attributes, cp.Attributes)

	// mutating the fork's attribute map must not affect the original.
	cp.Attributes["a"] = String("y")
	orig, _ := f.Get("a")
	s, _ := orig.AsString()
	assert.Equal(t, "x", s)
}

func TestValueCompareCrossKindUndefined(t *testing.T) {
	_, ok := Int(1).Compare(String("1"))
	assert.False(t, ok)
}

func TestValueCompareWithinKind(t *testing.T) {
	cmp, ok := Int(1).Compare(Int(2))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestValueJSONRoundTrip(t *testing.T) {
	vals := []Value{
		Null(),
		Bool(true),
		Int(42),
		Float(3.5),
		String("hi"),
		Bytes([]byte{1, 2, 3}),
		Array([]Value{Int(1), String("a")}),
		Map(map[string]Value{"k": Int(7)}),
	}
	for _, v := range vals {
		data, err := v.MarshalJSON()
		require.NoError(t, err)
		var got Value
		require.NoError(t, got.UnmarshalJSON(data))
		assert.Equal(t, v.Kind(), got.Kind())
	}
}

func TestGeometryTo2DDropsZ(t *testing.T) {
	g3 := Geometry3D{
		Type:   GeomLineString,
		Points: []Coord3D{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
	}
	g2 := To2D(g3)
	assert.Equal(t, []Coord2D{{X: 1, Y: 2}, {X: 4, Y: 5}}, g2.Points)
}

func TestGeometryTo3DIsTypeError(t *testing.T) {
	_, err := To3D(Geometry2D{Type: GeomPoint})
	assert.ErrorIs(t, err, ErrGeometryProjection)
}

func TestPolygonClosesRings(t *testing.T) {
	ext := Ring2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	poly := NewPolygon2D(ext, nil)
	assert.True(t, poly.Exterior.Closed())
	assert.Equal(t, poly.Exterior[0], poly.Exterior[len(poly.Exterior)-1])
}
