package tracklog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"roverplan/internal/track"
)

// Parse reads a GPX document from r.
func Parse(r io.Reader) (Result, error) {
	doc := etree.NewDocument()
	// Rejects a second root or text after the closing root tag.
	doc.ReadSettings.ValidateInput = true
	if _, err := doc.ReadFrom(r); err != nil {
		return Result{}, fmt.Errorf("%w: gpx: %w", ErrDocument, err)
	}
	root := doc.Root()
	if root == nil {
		return Result{}, documentErr("gpx: no root element")
	}

	names, err := resolverFor(root)
	if err != nil {
		return Result{}, err
	}
	candidates, err := names.descendants(root, "trkpt")
	if err != nil {
		return Result{}, err
	}

	res := Result{Points: make(track.Track, 0, len(candidates))}
	for i, el := range candidates {
		src := fmt.Sprintf("trkpt %d", i+1)
		p, altErr, err := trackpoint(names, el)
		if errors.Is(err, ErrDocument) {
			return Result{}, err
		}
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Source: src, Err: err})
			continue
		}
		if altErr != nil {
			res.Warnings = append(res.Warnings, Warning{Source: src, Err: altErr})
		}
		res.Points = append(res.Points, p)
	}
	return res, nil
}

// trackpoint extracts one point. A non-nil err means the point is unusable;
// altErr reports an altitude that was replaced by 0.
func trackpoint(names nameResolver, el scopedElement) (p track.Point, altErr error, err error) {
	lat, err := coordinateAttr(el.Element, "lat")
	if err != nil {
		return track.Point{}, nil, err
	}
	lon, err := coordinateAttr(el.Element, "lon")
	if err != nil {
		return track.Point{}, nil, err
	}
	p = track.Point{Lat: lat, Lon: lon}

	ele, err := names.child(el, "ele")
	if err != nil {
		return track.Point{}, nil, err
	}
	if ele == nil || ele.Text() == "" {
		return p, nil, nil
	}
	text := ele.Text()
	alt, perr := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if perr != nil || math.IsNaN(alt) || math.IsInf(alt, 0) {
		return p, fmt.Errorf("%w %q, using 0", ErrInvalidAltitude, text), nil
	}
	p.Alt = alt
	return p, nil, nil
}

// coordinateAttr reads an unprefixed attribute; q:lat does not count as lat.
func coordinateAttr(el *etree.Element, key string) (float64, error) {
	var a *etree.Attr
	for i := range el.Attr {
		if el.Attr[i].Space == "" && el.Attr[i].Key == key {
			a = &el.Attr[i]
			break
		}
	}
	if a == nil {
		return 0, fmt.Errorf("%w: no %s attribute", ErrMissingCoordinate, key)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCoordinate, key, a.Value)
	}
	return v, nil
}
