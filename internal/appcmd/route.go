package appcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geo3d/tileviewer/internal/gpxroute"
)

var routeCmd = &cobra.Command{
	Use:   "route <gpx-file>",
	Short: "Load a GPX track and report its world-space polyline",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open gpx file: %w", err)
	}
	defer f.Close()

	r, err := gpxroute.Load(f)
	if err != nil {
		return fmt.Errorf("parse gpx file: %w", err)
	}

	segments := r.Polyline()
	logger.Info("loaded gpx route",
		"points", len(r.Points),
		"segments", len(segments)/2)
	return nil
}
