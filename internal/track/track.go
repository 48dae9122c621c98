// Package track holds recorded GPS positions and the geometry helpers used to
// cut them down before planning.
package track

import (
	"fmt"

	"github.com/skypies/geo"
)

// Point is a single recorded position. Altitude is metres and is 0 when the
// source did not carry a usable value.
type Point struct {
	Lat float64
	Lon float64
	Alt float64
}

func (p Point) Latlong() geo.Latlong {
	return geo.Latlong{Lat: p.Lat, Long: p.Lon}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.1fm)", p.Lat, p.Lon, p.Alt)
}

// Track is an ordered sequence of points, in recording order.
type Track []Point

// Box is an axis-aligned lat/lon rectangle.
type Box struct {
	geo.LatlongBox
}

// NewBox builds a box from two opposite corners given in any diagonal order.
func NewBox(a, b geo.Latlong) Box {
	return Box{LatlongBox: a.BoxTo(b)}
}

// Contains reports whether p lies in the box. Edges are inclusive on both axes.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lon >= b.SW.Long && p.Lon <= b.NE.Long
}

func (b Box) String() string {
	return fmt.Sprintf("[(%.6f, %.6f) - (%.6f, %.6f)]", b.SW.Lat, b.SW.Long, b.NE.Lat, b.NE.Long)
}

// Within returns the points of t that lie in b, preserving order. The result
// never aliases t.
func (t Track) Within(b Box) Track {
	out := make(Track, 0, len(t))
	for _, p := range t {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Filter keeps the points inside the rectangle spanned by corners a and b.
func Filter(points Track, a, b geo.Latlong) Track {
	return points.Within(NewBox(a, b))
}

// Sample returns the points at indices 0, stride, 2*stride, ... It returns nil
// when stride < 1.
func Sample(points Track, stride int) Track {
	if stride < 1 {
		return nil
	}
	out := make(Track, 0, (len(points)+stride-1)/stride)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out
}
