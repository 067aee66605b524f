package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir      string
	logLevel     string
	logFormat    string
	dt           float64
	duration     float64
	configFile   string
	preset       string
	scenarioFile string
	assignments  []string
	noStore      bool
	plotSeries   []string
	specSeries   []string
	plotWidth    int
	plotHeight   int
	theme        string
	tuneParams   []string
	metricName   string
	maximize     bool
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepWorkers int
	outputFile   string
	contactAxis  int
	minForce     float64
	peakCount    int
	phaseX       string
	phaseY       string
	phaseWidth   int
	phaseHeight  int
	svgFile      string
	imageFile    string
)

// setupFlags registers the flags selecting and overriding a configuration.
func setupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name, optionally kinematics/name")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file appended to the config events (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0.005, "control period (s)")
	cmd.Flags().Float64Var(&duration, "time", 5, "run duration (s)")
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "phrictl",
		Short:         "safety-aware motion control lab for physically interacting robots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "runs", "run storage directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (console, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an experiment and store its samples",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}
	setupFlags(runCmd)
	runCmd.Flags().StringArrayVar(&assignments, "set", nil, "parameter override name=value (repeatable)")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step an experiment in real time with a terminal monitor",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	setupFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run samples",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSeries, "series", []string{"scaling"}, "series to plot (x, vy, fx, force, speed, scaling, q0, ...)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().StringVar(&imageFile, "out", "", "also save the plot as an image (.png, .svg, .pdf)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [file]",
		Short: "export a stored run to JSON, - for stdout",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [kinematics]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print or save the resolved configuration",
		Args:  cobra.NoArgs,
		RunE:  dumpConfig,
	}
	setupFlags(configCmd)
	configCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (yaml)")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "check a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	trajectoryCmd := &cobra.Command{
		Use:   "trajectory",
		Short: "compute and plot the configured trajectories",
		Args:  cobra.NoArgs,
		RunE:  plotTrajectories,
	}
	setupFlags(trajectoryCmd)
	trajectoryCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	trajectoryCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  tuneExperiment,
	}
	setupFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "grid axis name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "mean_scaling", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run an experiment across values of one parameter",
		Args:  cobra.NoArgs,
		RunE:  sweepExperiment,
	}
	setupFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter name")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 1, "values run concurrently")
	_ = sweepCmd.MarkFlagRequired("param")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and contact stiffness of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&specSeries, "series", []string{"force"}, "series to analyze")
	analyzeCmd.Flags().IntVar(&peakCount, "peaks", 3, "number of spectral peaks")
	analyzeCmd.Flags().IntVar(&contactAxis, "axis", 0, "contact axis (0=x, 1=y, 2=z)")
	analyzeCmd.Flags().Float64Var(&minForce, "min-force", 1, "force magnitude marking contact (N)")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one series of a stored run against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseX, "x-axis", "x", "series for the x-axis")
	phaseCmd.Flags().StringVar(&phaseY, "y-axis", "y", "series for the y-axis")
	phaseCmd.Flags().StringVar(&svgFile, "svg", "", "also write the curve as SVG")
	phaseCmd.Flags().IntVar(&phaseWidth, "width", 60, "plot width")
	phaseCmd.Flags().IntVar(&phaseHeight, "height", 20, "plot height")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, configCmd, validateCmd, trajectoryCmd, tuneCmd, sweepCmd, analyzeCmd, phaseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
