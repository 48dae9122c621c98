package tracklog

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"roverplan/internal/track"
)

// ParseNMEA reads an NMEA 0183 log from r. Each GGA sentence with a valid fix
// becomes one point; other sentence types are ignored.
func ParseNMEA(r io.Reader) (Result, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4*1024), 64*1024)

	var res Result
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		src := fmt.Sprintf("line %d", lineNo)

		sent, err := parseNMEASentence(line)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Source: src, Err: err})
			continue
		}
		if sent.Type != "GGA" {
			continue
		}
		p, ok, altErr, err := ggaPoint(sent.Fields)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Source: src, Err: err})
			continue
		}
		if !ok {
			continue
		}
		if altErr != nil {
			res.Warnings = append(res.Warnings, Warning{Source: src, Err: altErr})
		}
		res.Points = append(res.Points, p)
	}
	if err := s.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: nmea: %w", ErrDocument, err)
	}
	return res, nil
}

type nmeaSentence struct {
	Type string
	// Fields is the comma-split payload (excluding $ and checksum).
	Fields []string
}

func parseNMEASentence(line string) (nmeaSentence, error) {
	if !strings.HasPrefix(line, "$") {
		return nmeaSentence{}, fmt.Errorf("%w: missing '$'", ErrBadSentence)
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return nmeaSentence{}, fmt.Errorf("%w: missing checksum", ErrBadSentence)
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return nmeaSentence{}, fmt.Errorf("%w: short checksum", ErrBadSentence)
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return nmeaSentence{}, fmt.Errorf("%w: bad checksum", ErrBadSentence)
	}
	got := byte(0)
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != want[0] {
		return nmeaSentence{}, fmt.Errorf("%w: checksum mismatch", ErrBadSentence)
	}

	parts := strings.Split(payload, ",")
	if len(parts[0]) < 3 {
		return nmeaSentence{}, fmt.Errorf("%w: short type", ErrBadSentence)
	}
	// GPGGA, GNGGA, ... all normalise to GGA.
	t := parts[0]
	if len(t) > 3 {
		t = t[len(t)-3:]
	}
	return nmeaSentence{Type: strings.ToUpper(t), Fields: parts}, nil
}

// ggaPoint converts a GGA sentence. ok is false for sentences without a fix,
// which are skipped silently.
//
//	0: talker+type
//	1: time
//	2: latitude (ddmm.mmmm)
//	3: N/S
//	4: longitude (dddmm.mmmm)
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//	9: altitude (meters)
func ggaPoint(f []string) (p track.Point, ok bool, altErr error, err error) {
	if len(f) < 10 {
		return track.Point{}, false, nil, fmt.Errorf("%w: GGA has %d fields", ErrBadSentence, len(f))
	}
	fixQ := strings.TrimSpace(f[6])
	if fixQ == "" || fixQ == "0" {
		return track.Point{}, false, nil, nil
	}

	lat, latOK := parseNMEALatLon(f[2], f[3])
	lon, lonOK := parseNMEALatLon(f[4], f[5])
	if strings.TrimSpace(f[2]) == "" || strings.TrimSpace(f[4]) == "" {
		return track.Point{}, false, nil, fmt.Errorf("%w: GGA without position", ErrMissingCoordinate)
	}
	if !latOK || !lonOK {
		return track.Point{}, false, nil, fmt.Errorf("%w: GGA lat=%q%s lon=%q%s",
			ErrInvalidCoordinate, f[2], f[3], f[4], f[5])
	}
	p = track.Point{Lat: lat, Lon: lon}

	altText := strings.TrimSpace(f[9])
	if altText == "" {
		return p, true, nil, nil
	}
	alt, altOK := parseFloat(altText)
	if !altOK {
		return p, true, fmt.Errorf("%w %q, using 0", ErrInvalidAltitude, altText), nil
	}
	p.Alt = alt
	return p, true, nil, nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseNMEALatLon parses ddmm.mmmm (latitude) or dddmm.mmmm (longitude) plus
// a hemisphere letter into signed decimal degrees.
func parseNMEALatLon(v string, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	// The last two digits of the integer part are whole minutes.
	intPart := v
	if dot := strings.IndexByte(v, '.'); dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil || mins < 0 || mins >= 60 {
		return 0, false
	}

	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}
