package main

import (
	"fmt"
	"io"
	"strings"

	"roverplan/internal/plan"
)

func printPlanSummary(path string, w io.Writer) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	p, err := plan.ReadFile(path)
	if err != nil {
		return err
	}
	s := plan.Summarize(p)

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "waypoints: %d\n", s.Waypoints)
	fmt.Fprintf(w, "sequential_ids: %t\n", s.Sequential)
	fmt.Fprintf(w, "firmware_type: %d\n", s.FirmwareType)
	fmt.Fprintf(w, "vehicle_type: %d\n", s.VehicleType)
	fmt.Fprintf(w, "home: %.7f, %.7f, %.1f\n", s.Home[0], s.Home[1], s.Home[2])
	if s.Waypoints > 0 {
		fmt.Fprintf(w, "extent: %s\n", s.Extent)
	}
	return nil
}
