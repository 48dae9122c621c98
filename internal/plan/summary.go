package plan

import (
	"math"

	"github.com/skypies/geo"

	"roverplan/internal/track"
)

type Summary struct {
	Waypoints    int
	Home         [3]float64
	FirmwareType int
	VehicleType  int
	// Extent covers every waypoint position; zero when there are none.
	Extent track.Box
	// Sequential is true when doJumpId runs 1..Waypoints with no gaps.
	Sequential bool
}

func Summarize(p *Plan) Summary {
	s := Summary{
		Waypoints:    len(p.Mission.Items),
		Home:         p.Mission.PlannedHomePosition,
		FirmwareType: p.Mission.FirmwareType,
		VehicleType:  p.Mission.VehicleType,
		Sequential:   true,
	}
	if len(p.Mission.Items) == 0 {
		return s
	}

	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for i, it := range p.Mission.Items {
		if it.DoJumpID != i+1 {
			s.Sequential = false
		}
		minLat = math.Min(minLat, it.Lat())
		maxLat = math.Max(maxLat, it.Lat())
		minLon = math.Min(minLon, it.Lon())
		maxLon = math.Max(maxLon, it.Lon())
	}
	s.Extent = track.NewBox(geo.Latlong{Lat: minLat, Long: minLon}, geo.Latlong{Lat: maxLat, Long: maxLon})
	return s
}
