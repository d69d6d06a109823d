// Package appcmd is the tileviewer CLI: cobra commands binding the
// viewer's runtime configuration through viper, grounded on the
// teacher's own root/serve command layout.
package appcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geo3d/tileviewer/internal/config"
)

var cfgFile string
var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "tileviewer",
	Short: "A headless client for Google's Photorealistic 3D Tiles service",
	Long: `tileviewer streams and culls a Photorealistic 3D Tiles hierarchy by
view-dependent screen-space error, the same traversal a windowed viewer
would run, without the windowing layer.`,
}

// Execute runs the root command, exiting the process with status 1 on
// error, matching the teacher's own Execute().
func Execute() {
	if logger == nil {
		initLogging()
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "Google 3D Tiles API key")
	rootCmd.PersistentFlags().String("endpoint", "", "Override the tile service endpoint (tests only)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64("pixel-error-budget", config.Default().PixelErrorBudget, "Screen-space-error budget in pixels")
	rootCmd.PersistentFlags().Int("max-traversal-depth", config.Default().MaxTraversalDepth, "Max tile refinement depth per frame")
	rootCmd.PersistentFlags().Bool("disable-planet-aware-far-plane", false, "Use the conventional far plane instead of the origin-facing substitution")
	rootCmd.PersistentFlags().Int("fetch-workers", config.Default().FetchWorkers, "Number of background fetch workers")
	rootCmd.PersistentFlags().Bool("show-bounding-boxes", false, "Draw tile bounding-box wireframes")

	mustBind := func(key, name string) {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("api-key", "api-key")
	mustBind("endpoint", "endpoint")
	mustBind("log-level", "log-level")
	mustBind("pixel-error-budget", "pixel-error-budget")
	mustBind("max-traversal-depth", "max-traversal-depth")
	mustBind("disable-planet-aware-far-plane", "disable-planet-aware-far-plane")
	mustBind("fetch-workers", "fetch-workers")
	mustBind("show-bounding-boxes", "show-bounding-boxes")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TILEVIEWER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if logger != nil {
			logger.Debug("using config file", "path", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level, err := config.ParseLogLevel(viper.GetString("log-level"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configFromFlags builds a config.Config from the bound viper keys, the
// same values every subcommand reads regardless of which one runs.
func configFromFlags() config.Config {
	level, _ := config.ParseLogLevel(viper.GetString("log-level"))
	return config.Config{
		APIKey:              viper.GetString("api-key"),
		Endpoint:            viper.GetString("endpoint"),
		LogLevel:            level,
		PixelErrorBudget:    viper.GetFloat64("pixel-error-budget"),
		MaxTraversalDepth:   viper.GetInt("max-traversal-depth"),
		PlanetAwareFarPlane: !viper.GetBool("disable-planet-aware-far-plane"),
		FetchWorkers:        viper.GetInt("fetch-workers"),
		ShowBoundingBoxes:   viper.GetBool("show-bounding-boxes"),
	}
}
