package appcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geo3d/tileviewer/internal/fetchtask"
	"github.com/geo3d/tileviewer/internal/geo"
	"github.com/geo3d/tileviewer/internal/scene"
	"github.com/geo3d/tileviewer/internal/tileapi"
	"github.com/geo3d/tileviewer/internal/view"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream and traverse tiles around a fixed viewpoint, headlessly",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("lat", 48.8584, "Viewpoint latitude in degrees")
	runCmd.Flags().Float64("lon", 2.2945, "Viewpoint longitude in degrees")
	runCmd.Flags().Float64("altitude", 500, "Viewpoint altitude above the ellipsoid, in meters")
	runCmd.Flags().Float64("viewport-width", 1280, "Viewport width in pixels")
	runCmd.Flags().Float64("viewport-height", 720, "Viewport height in pixels")
	runCmd.Flags().Int("frames", 0, "Number of frames to run before exiting (0 = run until interrupted)")
	runCmd.Flags().Duration("frame-interval", 100*time.Millisecond, "Delay between frames")

	mustBind := func(key, name string) {
		if err := viper.BindPFlag(key, runCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
	mustBind("run.lat", "lat")
	mustBind("run.lon", "lon")
	mustBind("run.altitude", "altitude")
	mustBind("run.viewport_width", "viewport-width")
	mustBind("run.viewport_height", "viewport-height")
	mustBind("run.frames", "frames")
	mustBind("run.frame_interval", "frame-interval")
}

func runRun(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg := configFromFlags()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := fetchtask.NewRunner(fetchtask.Config{Workers: cfg.FetchWorkers, Logger: logger})
	runner.Start()
	defer runner.Stop()

	gpuCtx := newHeadlessContext(logger)

	cache := scene.NewCache(runner, gpuCtx, cfg.APIKey, tileapi.Config{
		Endpoint: cfg.Endpoint,
		Logger:   logger,
	}, scene.Config{
		Logger:                     logger,
		PixelErrorBudget:           cfg.PixelErrorBudget,
		MaxTraversalDepth:          cfg.MaxTraversalDepth,
		DisablePlanetAwareFarPlane: !cfg.PlanetAwareFarPlane,
	})

	lat := viper.GetFloat64("run.lat")
	lon := viper.GetFloat64("run.lon")
	altitude := viper.GetFloat64("run.altitude")
	viewportWidth := viper.GetFloat64("run.viewport_width")
	viewportHeight := viper.GetFloat64("run.viewport_height")
	camera := fixedCamera(lat, lon, altitude, viewportWidth, viewportHeight)

	frames := viper.GetInt("run.frames")
	interval := viper.GetDuration("run.frame_interval")

	logger.Info("starting headless traversal",
		"lat", lat, "lon", lon, "altitude", altitude, "frames", frames)

	frame := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, stopping", "frames_run", frame)
			return nil
		default:
		}

		cache.Load(ctx)
		gpuCtx.meshesDrawn, gpuCtx.boxesDrawn = 0, 0
		leaves := cache.Render(camera, nil, cfg.ShowBoundingBoxes)
		logger.Info("frame rendered",
			"frame", frame, "leaves", leaves,
			"meshes_uploaded", gpuCtx.meshesUploaded, "textures_uploaded", gpuCtx.texturesUploaded,
			"meshes_drawn", gpuCtx.meshesDrawn, "boxes_drawn", gpuCtx.boxesDrawn)

		frame++
		if frames > 0 && frame >= frames {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// fixedCamera builds a camera looking straight down at (lat, lon) from
// altitude meters above the ellipsoid. It stands in for interactive
// orbit/zoom input, which belongs to a windowing layer out of scope here.
func fixedCamera(lat, lon, altitude, viewportWidth, viewportHeight float64) view.Camera {
	eye := geo.LatLonToXYZ(lat, lon, altitude)
	target := geo.LatLonToXYZ(lat, lon, 0)

	// The view direction here is nearly radial (straight down), so the
	// ellipsoid normal can't serve as the up vector - it would be nearly
	// parallel to the view direction and leave LookAtV degenerate. A point
	// a short distance north at the same altitude gives a local "north"
	// tangent instead, which is roughly perpendicular to nadir.
	const northEpsilonDeg = 0.001
	north := geo.LatLonToXYZ(lat+northEpsilonDeg, lon, altitude)
	up := north.Sub(eye)

	return view.Camera{
		Position:       eye,
		View:           mgl64.LookAtV(eye, target, up),
		Projection:     mgl64.Perspective(mgl64.DegToRad(60), viewportWidth/viewportHeight, 1, 1e8),
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
	}
}
