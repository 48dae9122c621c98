package tracklog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"roverplan/internal/track"
)

const trkptBody = `
  <trk>
    <name>test</name>
    <trkseg>
      <trkpt lat="41.700" lon="-85.030"><ele>250.5</ele></trkpt>
      <trkpt lat="41.701" lon="-85.029"/>
      <trkpt lat="41.702" lon="-85.028"><ele>251</ele><time>2024-05-01T12:00:00Z</time></trkpt>
    </trkseg>
  </trk>
`

var trkptWant = track.Track{
	{Lat: 41.700, Lon: -85.030, Alt: 250.5},
	{Lat: 41.701, Lon: -85.029},
	{Lat: 41.702, Lon: -85.028, Alt: 251},
}

func mustParse(t *testing.T, doc string) Result {
	t.Helper()
	res, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return res
}

func TestParse_NamespaceInvariance(t *testing.T) {
	docs := map[string]string{
		"Bare": `<?xml version="1.0"?><gpx version="1.1" creator="t">` + trkptBody + `</gpx>`,
		"Default": `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="t">` + trkptBody + `</gpx>`,
		"GPX10": `<gpx xmlns="http://www.topografix.com/GPX/1/0" version="1.0">` + trkptBody + `</gpx>`,
		"Prefixed": `<g:gpx xmlns:g="http://www.topografix.com/GPX/1/1" version="1.1">
  <g:trk><g:trkseg>
    <g:trkpt lat="41.700" lon="-85.030"><g:ele>250.5</g:ele></g:trkpt>
    <g:trkpt lat="41.701" lon="-85.029"/>
    <g:trkpt lat="41.702" lon="-85.028"><g:ele>251</g:ele></g:trkpt>
  </g:trkseg></g:trk>
</g:gpx>`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			res := mustParse(t, doc)
			if diff := cmp.Diff(trkptWant, res.Points); diff != "" {
				t.Fatalf("points mismatch (-want +got):\n%s", diff)
			}
			if len(res.Warnings) != 0 {
				t.Fatalf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func TestParse_NamespaceAppliedToEveryLookup(t *testing.T) {
	// Elements outside the document namespace are not track points, and an
	// <ele> in a foreign namespace is not the altitude.
	doc := `<gpx xmlns="http://www.topografix.com/GPX/1/1" xmlns:x="urn:other">
  <trk><trkseg>
    <trkpt lat="1" lon="2"><x:ele>99</x:ele></trkpt>
    <x:trkpt lat="3" lon="4"/>
    <trkpt xmlns="" lat="5" lon="6"/>
  </trkseg></trk>
</gpx>`
	res := mustParse(t, doc)
	want := track.Track{{Lat: 1, Lon: 2}}
	if diff := cmp.Diff(want, res.Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_UnnamespacedIgnoresNamespacedPoints(t *testing.T) {
	doc := `<gpx><trk><trkseg>
  <trkpt lat="1" lon="2"/>
  <n:trkpt xmlns:n="http://www.topografix.com/GPX/1/1" lat="3" lon="4"/>
</trkseg></trk></gpx>`
	res := mustParse(t, doc)
	if diff := cmp.Diff(track.Track{{Lat: 1, Lon: 2}}, res.Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PointLevelResilience(t *testing.T) {
	doc := `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>
  <trkpt lat="10" lon="20"><ele>5</ele></trkpt>
  <trkpt lon="21"/>
  <trkpt lat="11"/>
  <trkpt lat="abc" lon="22"/>
  <trkpt lat="12" lon="2x2"/>
  <trkpt lat="13" lon="23"><ele>high</ele></trkpt>
  <trkpt lat="NaN" lon="24"/>
  <trkpt lat=" 14 " lon="24"><ele> 7.5 </ele></trkpt>
  <trkpt lat="15" lon="25"><ele></ele></trkpt>
  <trkpt lat="16" lon="26"><ele>   </ele></trkpt>
  <trkpt xmlns:q="urn:q" q:lat="17" q:lon="27"/>
  <trkpt lat="18" lon="28"><ele>Inf</ele></trkpt>
</trkseg></trk></gpx>`

	res := mustParse(t, doc)
	want := track.Track{
		{Lat: 10, Lon: 20, Alt: 5},
		{Lat: 13, Lon: 23, Alt: 0},
		{Lat: 14, Lon: 24, Alt: 7.5},
		{Lat: 15, Lon: 25, Alt: 0},
		{Lat: 16, Lon: 26, Alt: 0},
		{Lat: 18, Lon: 28, Alt: 0},
	}
	if diff := cmp.Diff(want, res.Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}

	wantWarn := []struct {
		source string
		err    error
	}{
		{"trkpt 2", ErrMissingCoordinate},
		{"trkpt 3", ErrMissingCoordinate},
		{"trkpt 4", ErrInvalidCoordinate},
		{"trkpt 5", ErrInvalidCoordinate},
		{"trkpt 6", ErrInvalidAltitude},
		{"trkpt 7", ErrInvalidCoordinate},
		{"trkpt 10", ErrInvalidAltitude},
		{"trkpt 11", ErrMissingCoordinate},
		{"trkpt 12", ErrInvalidAltitude},
	}
	if len(res.Warnings) != len(wantWarn) {
		t.Fatalf("warnings=%v want %d", res.Warnings, len(wantWarn))
	}
	for i, w := range wantWarn {
		got := res.Warnings[i]
		if got.Source != w.source || !errors.Is(got.Err, w.err) {
			t.Fatalf("warning[%d]=%s want %s: %v", i, got, w.source, w.err)
		}
	}
}

func TestParse_ZeroPointsIsNotAnError(t *testing.T) {
	res := mustParse(t, `<gpx xmlns="http://www.topografix.com/GPX/1/1"><metadata/></gpx>`)
	if len(res.Points) != 0 {
		t.Fatalf("points=%v want none", res.Points)
	}

	res = mustParse(t, `<gpx><trk><trkseg><trkpt lat="x" lon="y"/></trkseg></trk></gpx>`)
	if len(res.Points) != 0 || len(res.Warnings) != 1 {
		t.Fatalf("points=%v warnings=%v", res.Points, res.Warnings)
	}
}

func TestParse_DocumentErrors(t *testing.T) {
	cases := map[string]string{
		"Empty":               "",
		"Unclosed":            `<gpx><trk><trkseg><trkpt lat="1" lon="2">`,
		"Mismatched":          `<gpx><trk></gpx></trk>`,
		"NoRoot":              `<?xml version="1.0"?>`,
		"SecondRoot":          `<gpx><trk><trkseg><trkpt lat="1" lon="2"/></trkseg></trk></gpx><gpx/>`,
		"TrailingText":        `<gpx><trk><trkseg><trkpt lat="1" lon="2"/></trkseg></trk></gpx> junk text`,
		"UnboundPointPrefix":  `<gpx><trk><trkseg><foo:trkpt lat="1" lon="2"/></trkseg></trk></gpx>`,
		"UnboundNestedPrefix": `<gpx><metadata><foo:name>x</foo:name></metadata><trk><trkseg><trkpt lat="1" lon="2"/></trkseg></trk></gpx>`,
		"UnboundAttrPrefix":   `<gpx><trk><trkseg><trkpt lat="1" lon="2" foo:src="a"/></trkseg></trk></gpx>`,
		"UnboundRootPrefix":   `<g:gpx><g:trk/></g:gpx>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrDocument) {
				t.Fatalf("err=%v want ErrDocument", err)
			}
		})
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.gpx"))
	if !errors.Is(err, ErrDocument) {
		t.Fatalf("err=%v want ErrDocument", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want os.ErrNotExist in chain", err)
	}
}

func TestParseFile_DetectsGPX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.gpx")
	doc := "\xef\xbb\xbf\n<gpx>" + trkptBody + "</gpx>"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	res, format, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if format != FormatGPX {
		t.Fatalf("format=%s want gpx", format)
	}
	if diff := cmp.Diff(trkptWant, res.Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
}
