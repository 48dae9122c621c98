// Package tracklog reads recorded GPS tracks into ordered point sequences.
//
// Two input formats are understood:
//   - GPX documents (namespaced or not); one point per <trkpt>.
//   - NMEA 0183 logs; one point per GGA sentence with a valid fix.
//
// Problems with a single point are recorded as warnings and the point is
// dropped (or, for a bad altitude, defaulted to 0). Problems with the whole
// document are returned as errors wrapping ErrDocument.
package tracklog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"roverplan/internal/track"
)

var (
	// ErrDocument marks failures that make the whole input unusable.
	ErrDocument = errors.New("tracklog: unusable document")

	ErrMissingCoordinate = errors.New("missing coordinate")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidAltitude   = errors.New("invalid altitude")
	ErrBadSentence       = errors.New("bad sentence")
)

// Warning describes a recoverable problem with a single point.
type Warning struct {
	// Source locates the point, e.g. "trkpt 4" or "line 17".
	Source string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Source, w.Err)
}

// Result is the outcome of a successful parse. Points may be empty; that is
// not an error.
type Result struct {
	Points   track.Track
	Warnings []Warning
}

var utf8BOM = []byte("\xef\xbb\xbf")

type Format int

const (
	FormatGPX Format = iota
	FormatNMEA
)

func (f Format) String() string {
	switch f {
	case FormatNMEA:
		return "nmea"
	default:
		return "gpx"
	}
}

// DetectFormat looks at the first significant byte of b. NMEA logs start with
// '$'; everything else is treated as GPX.
func DetectFormat(b []byte) Format {
	b = bytes.TrimPrefix(b, utf8BOM)
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) > 0 && b[0] == '$' {
		return FormatNMEA
	}
	return FormatGPX
}

// ParseFile reads path, detects its format and parses it.
func ParseFile(path string) (Result, Format, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, FormatGPX, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	b = bytes.TrimPrefix(b, utf8BOM)
	format := DetectFormat(b)
	var res Result
	switch format {
	case FormatNMEA:
		res, err = ParseNMEA(bytes.NewReader(b))
	default:
		res, err = Parse(bytes.NewReader(b))
	}
	return res, format, err
}

func documentErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDocument, fmt.Sprintf(format, args...))
}
