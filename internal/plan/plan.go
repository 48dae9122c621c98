// Package plan builds QGroundControl mission plans for ground rovers.
//
// A plan holds one waypoint command per sampled track point. Altitude is not
// meaningful for a rover, so every waypoint (and the planned home position)
// uses a single configured altitude regardless of what the track recorded.
//
// JSON schema (QGroundControl .plan, abbreviated):
//
//	{
//	  "fileType": "Plan",
//	  "groundStation": "QGroundControl",
//	  "version": 1,
//	  "mission": {
//	    "cruiseSpeed": 5, "firmwareType": 4, "hoverSpeed": 5,
//	    "items": [ {"type": "SimpleItem", "command": 16, "params": [...], ...} ],
//	    "plannedHomePosition": [lat, lon, alt],
//	    "vehicleType": 4, "version": 2
//	  },
//	  "geoFence": {"circles": [], "polygons": [], "version": 1},
//	  "rallyPoints": {"points": [], "version": 1}
//	}
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"roverplan/internal/track"
)

const (
	FileType      = "Plan"
	GroundStation = "QGroundControl"
	FileVersion   = 1

	MissionVersion     = 2
	GeoFenceVersion    = 1
	RallyPointsVersion = 1

	ItemTypeSimple = "SimpleItem"
	// MAV_CMD_NAV_WAYPOINT
	CmdNavWaypoint = 16
	// MAV_FRAME_GLOBAL_RELATIVE_ALT
	FrameGlobalRelativeAlt = 3
	// Altitude relative to home.
	AltitudeModeRelative = 1
)

var (
	ErrNoPoints      = errors.New("plan: no points to plan")
	ErrInvalidStride = errors.New("plan: stride must be >= 1")
	ErrNoWaypoints   = errors.New("plan: no waypoints after sampling")
)

// Options are the per-plan values that are not derived from the track.
type Options struct {
	DefaultAltitude  float64
	AcceptanceRadius float64
	CruiseSpeed      float64
	HoverSpeed       float64
	FirmwareType     int
	VehicleType      int
}

// DefaultOptions returns the values used when nothing is configured:
// ArduPilot rover, 0 m altitude, 2 m acceptance radius, 5 m/s speeds.
func DefaultOptions() Options {
	return Options{
		DefaultAltitude:  0,
		AcceptanceRadius: 2,
		CruiseSpeed:      5,
		HoverSpeed:       5,
		FirmwareType:     4,
		VehicleType:      4,
	}
}

type Plan struct {
	FileType      string      `json:"fileType"`
	GroundStation string      `json:"groundStation"`
	Version       int         `json:"version"`
	Mission       Mission     `json:"mission"`
	GeoFence      GeoFence    `json:"geoFence"`
	RallyPoints   RallyPoints `json:"rallyPoints"`
}

type Mission struct {
	CruiseSpeed         float64    `json:"cruiseSpeed"`
	FirmwareType        int        `json:"firmwareType"`
	HoverSpeed          float64    `json:"hoverSpeed"`
	Items               []Item     `json:"items"`
	PlannedHomePosition [3]float64 `json:"plannedHomePosition"`
	VehicleType         int        `json:"vehicleType"`
	Version             int        `json:"version"`
}

// Item is a single mission command.
type Item struct {
	AMSLAltAboveTerrain *float64 `json:"AMSLAltAboveTerrain"`
	Altitude            float64  `json:"Altitude"`
	AltitudeMode        int      `json:"AltitudeMode"`
	AutoContinue        bool     `json:"autoContinue"`
	Command             int      `json:"command"`
	DoJumpID            int      `json:"doJumpId"`
	Frame               int      `json:"frame"`
	Params              Params   `json:"params"`
	Type                string   `json:"type"`
}

// Lat, Lon and Alt read the position slots of a waypoint's params.
func (it Item) Lat() float64 { return it.Params[ParamLat] }
func (it Item) Lon() float64 { return it.Params[ParamLon] }
func (it Item) Alt() float64 { return it.Params[ParamAlt] }

type GeoFence struct {
	Circles  []json.RawMessage `json:"circles"`
	Polygons []json.RawMessage `json:"polygons"`
	Version  int               `json:"version"`
}

type RallyPoints struct {
	Points  []json.RawMessage `json:"points"`
	Version int               `json:"version"`
}

// Build turns filtered track points into a plan, keeping every stride-th point
// starting with the first. The planned home position is always the first
// filtered point, whatever the stride.
func Build(filtered track.Track, stride int, opts Options) (*Plan, error) {
	if len(filtered) == 0 {
		return nil, ErrNoPoints
	}
	if stride < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidStride, stride)
	}

	sampled := track.Sample(filtered, stride)
	// Cannot happen for a non-empty track with stride >= 1.
	if len(sampled) == 0 {
		return nil, ErrNoWaypoints
	}

	items := make([]Item, 0, len(sampled))
	for i, p := range sampled {
		items = append(items, waypoint(i+1, p, opts))
	}

	home := filtered[0]
	return &Plan{
		FileType:      FileType,
		GroundStation: GroundStation,
		Version:       FileVersion,
		Mission: Mission{
			CruiseSpeed:         opts.CruiseSpeed,
			FirmwareType:        opts.FirmwareType,
			HoverSpeed:          opts.HoverSpeed,
			Items:               items,
			PlannedHomePosition: [3]float64{home.Lat, home.Lon, opts.DefaultAltitude},
			VehicleType:         opts.VehicleType,
			Version:             MissionVersion,
		},
		GeoFence: GeoFence{
			Circles:  []json.RawMessage{},
			Polygons: []json.RawMessage{},
			Version:  GeoFenceVersion,
		},
		RallyPoints: RallyPoints{
			Points:  []json.RawMessage{},
			Version: RallyPointsVersion,
		},
	}, nil
}

func waypoint(seq int, p track.Point, opts Options) Item {
	alt := opts.DefaultAltitude
	return Item{
		Altitude:     alt,
		AltitudeMode: AltitudeModeRelative,
		AutoContinue: true,
		Command:      CmdNavWaypoint,
		DoJumpID:     seq,
		Frame:        FrameGlobalRelativeAlt,
		Params: Params{
			ParamHold:        0,
			ParamAcceptance:  opts.AcceptanceRadius,
			ParamPassThrough: 0,
			ParamYaw:         math.NaN(),
			ParamLat:         p.Lat,
			ParamLon:         p.Lon,
			ParamAlt:         alt,
		},
		Type: ItemTypeSimple,
	}
}
