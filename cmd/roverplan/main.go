package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/skypies/geo"

	"roverplan/internal/config"
	"roverplan/internal/convert"
	"roverplan/internal/plan"
)

const usageText = `Usage: roverplan [flags] <input.gpx> <stride> <lat1> <lon1> <lat2> <lon2> <output.plan>
       roverplan -summary <mission.plan>

Keeps the track points inside the box with corners (lat1, lon1) and (lat2, lon2),
takes every stride-th one and writes a QGroundControl rover mission.

Example: roverplan track.gpx 10 41.70 -85.03 41.71 -85.02 rover_mission.plan

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	info := log.New(stdout, "", 0)
	errLog := log.New(stderr, "", 0)

	fs := flag.NewFlagSet("roverplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var configPath, summaryPath string
	fs.StringVar(&configPath, "config", "", "Path to YAML config with plan defaults (optional)")
	fs.StringVar(&summaryPath, "summary", "", "Print a summary of an existing .plan file and exit")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return convert.ExitOK
		}
		return convert.ExitUsage
	}

	if summaryPath != "" {
		if err := printPlanSummary(summaryPath, stdout); err != nil {
			errLog.Printf("Error: %v", err)
			return convert.ExitInput
		}
		return convert.ExitOK
	}

	job, err := parseJob(fs.Args())
	if err != nil {
		errLog.Printf("Error: %v", err)
		fs.Usage()
		return convert.ExitUsage
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			errLog.Printf("config load failed: %v", err)
			return convert.ExitUsage
		}
	}
	opts := planOptions(cfg.Plan)

	out, err := convert.Run(job, opts, errLog)
	if err != nil {
		errLog.Printf("Error: %v", err)
		return convert.ExitCode(err)
	}

	info.Printf("Successfully parsed %d points from %s (%s).", out.Parsed, job.InputPath, out.Format)
	if out.NoPointsInBox {
		info.Printf("No points found within the specified bounding box %s.", out.Box)
		return convert.ExitOK
	}
	info.Printf("Filtered down to %d points within the bounding box.", out.InBox)
	info.Printf("")
	info.Printf("Successfully created QGC .plan file: %s", job.OutputPath)
	info.Printf("Included %d waypoints (every %d-th point within the box).", out.Waypoints, job.Stride)
	info.Printf("Bounding Box Corners: (%v, %v), (%v, %v)",
		job.CornerA.Lat, job.CornerA.Long, job.CornerB.Lat, job.CornerB.Long)
	info.Printf("Planned Home Position set near first waypoint: %v", out.Home)
	return convert.ExitOK
}

// parseJob validates the positional arguments. It does no file I/O. Arguments
// after the seventh are ignored so existing wrapper scripts keep working.
func parseJob(args []string) (convert.Job, error) {
	if len(args) < 7 {
		return convert.Job{}, fmt.Errorf("expected 7 arguments, got %d", len(args))
	}
	stride, err := strconv.Atoi(args[1])
	if err != nil {
		return convert.Job{}, fmt.Errorf("invalid stride %q: must be a positive integer", args[1])
	}
	if stride < 1 {
		return convert.Job{}, fmt.Errorf("stride must be a positive integer, got %d", stride)
	}
	var c [4]float64
	for i := range c {
		v, err := strconv.ParseFloat(args[2+i], 64)
		if err != nil {
			return convert.Job{}, fmt.Errorf("invalid numeric argument %q", args[2+i])
		}
		c[i] = v
	}
	job := convert.Job{
		InputPath:  args[0],
		Stride:     stride,
		CornerA:    geo.Latlong{Lat: c[0], Long: c[1]},
		CornerB:    geo.Latlong{Lat: c[2], Long: c[3]},
		OutputPath: args[6],
	}
	if err := job.Validate(); err != nil {
		return convert.Job{}, err
	}
	return job, nil
}

func planOptions(c config.PlanConfig) plan.Options {
	return plan.Options{
		DefaultAltitude:  c.AltitudeM(),
		AcceptanceRadius: c.AcceptanceRadius(),
		CruiseSpeed:      c.CruiseSpeedMps,
		HoverSpeed:       c.HoverSpeedMps,
		FirmwareType:     c.FirmwareType,
		VehicleType:      c.VehicleType,
	}
}
