package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phrictl/internal/analysis"
	"github.com/san-kum/phrictl/internal/automation"
	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/experiment"
	"github.com/san-kum/phrictl/internal/export"
	"github.com/san-kum/phrictl/internal/logging"
	"github.com/san-kum/phrictl/internal/optim"
	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/storage"
	"github.com/san-kum/phrictl/internal/viz"
)

// loadConfig resolves the configuration from --config or --preset, appends
// the --scenario events and applies --dt and --time when given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return nil, errors.New("--config and --preset are exclusive")
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		cfg = c
	case preset != "":
		cfg = lookupPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(allPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}

	if scenarioFile != "" {
		sc, err := automation.LoadScenario(scenarioFile)
		if err != nil {
			return nil, err
		}
		cfg.Scenario = append(cfg.Scenario, sc.Events...)
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}
	return cfg, nil
}

func lookupPreset(name string) *config.Config {
	if kin, p, ok := strings.Cut(name, "/"); ok {
		return config.GetPreset(kin, p)
	}
	return config.FindPreset(name)
}

func allPresets() []string {
	var names []string
	for _, kin := range config.ListKinematics() {
		for _, p := range config.ListPresets(kin) {
			names = append(names, kin+"/"+p)
		}
	}
	return names
}

// newLogger builds the logger of cfg with the command line overrides.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Logging
	if logLevel != "" {
		lc.Level = logLevel
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	return logging.New("phrictl", lc)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func storeDir(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("data") || cfg.Run.Store == "" {
		return dataDir
	}
	return cfg.Run.Store
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	params, err := parseAssignments(assignments)
	if err != nil {
		return err
	}
	exp, err := optim.ConfigBuilder(cfg, experiment.WithLogger(logger))(params)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%s, %.3gs at %gs)...\n", cfg.Name, cfg.Robot.Kinematics, cfg.Run.Duration, cfg.Run.Dt)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("cycles: %d\n", result.Cycles)
	if !noStore {
		st := storage.New(storeDir(cmd, cfg))
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Metadata(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Console output would tear the alternate screen.
	logger := zap.NewNop()
	if cfg.Logging.Output != "" && cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		if logger, err = newLogger(cfg); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	m, err := viz.NewMonitor(cfg, viz.WithMonitorLogger(logger), viz.WithTheme(theme))
	if err != nil {
		return err
	}
	if err := viz.RunMonitor(m); err != nil {
		return err
	}
	return m.Err()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKINEMATICS\tTIME\tDURATION\tDT\tINTEG\tSYNC\tCYCLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Kinematics,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Sync,
			run.Cycles,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("robot: %s (%s, %d joints)\n", meta.Robot, meta.Kinematics, meta.Joints)
	fmt.Printf("samples: %d\n\n", len(samples))

	chart, err := viz.PlotSamples(samples, plotSeries, viz.PlotOptions{Width: plotWidth, Height: plotHeight})
	if err != nil {
		return err
	}
	fmt.Println(chart)
	printMetrics(meta.Metrics)

	if imageFile != "" {
		opts := export.ImageOptions{Title: meta.ID}
		if err := export.SamplesToImage(samples, plotSeries, imageFile, opts); err != nil {
			return err
		}
		fmt.Printf("saved plot to %s\n", imageFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(args[1], *meta, samples); err != nil {
		return err
	}
	if args[1] != "-" {
		fmt.Printf("exported %d samples to %s\n", len(samples), args[1])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinematics := config.ListKinematics()
	if len(args) == 1 {
		kinematics = args[:1]
	}
	for _, kin := range kinematics {
		presets := config.ListPresets(kin)
		if len(presets) == 0 {
			fmt.Printf("no presets for kinematics: %s\n", kin)
			continue
		}
		fmt.Printf("presets for %s:\n", kin)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if outputFile != "" {
		if err := config.Save(outputFile, cfg); err != nil {
			return err
		}
		fmt.Printf("saved %s to %s\n", cfg.Name, outputFile)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		errs := multierr.Errors(err)
		for _, e := range errs {
			fmt.Printf("  %v\n", e)
		}
		return fmt.Errorf("%s: %d problem(s)", args[0], len(errs))
	}
	fmt.Printf("%s: ok\n", args[0])
	return nil
}

func plotTrajectories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	exp, err := experiment.Build(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	g := exp.Trajectories()
	if g == nil || g.Len() == 0 {
		return fmt.Errorf("%s has no trajectories", cfg.Name)
	}
	if err := g.ComputeParameters(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSEGMENTS\tMINIMUM\tDURATION\tOUTPUT")
	for _, name := range g.Names() {
		t, err := g.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.4fs\t%.4fs\t%s\n", name, t.SegmentCount(), t.MinimumTime(), t.Duration(), t.OutputType())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	limit := int(cfg.Run.Duration/cfg.Run.Dt) + 1
	chart, err := viz.PlotTrajectories(g, limit, viz.PlotOptions{Width: plotWidth, Height: plotHeight})
	if err != nil {
		return err
	}
	fmt.Println(chart)
	return nil
}

func tuneExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gs := optim.NewGridSearch(names, ranges)
	if maximize {
		gs.Maximize()
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d combinations for %s...\n", gs.Size(), metricName)
	start := time.Now()
	best, value, err := gs.Search(ctx, optim.ConfigBuilder(cfg, experiment.WithLogger(logger.Named("trial").WithOptions(zap.IncreaseLevel(zap.WarnLevel)))), metricName)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best %s: %.6f\n", metricName, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func sweepExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sw := &optim.Sweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, NumSteps: sweepSteps, Workers: sweepWorkers}
	ctx, cancel := signalContext()
	defer cancel()

	build := optim.ConfigBuilder(cfg, experiment.WithLogger(logger.Named("trial").WithOptions(zap.IncreaseLevel(zap.WarnLevel))))
	results, err := sw.Run(ctx, build, logger)
	if len(results) > 0 {
		printSweep(sweepParam, results)
	}
	return err
}

func printSweep(param string, results []optim.SweepResult) {
	var metrics []string
	for name := range results[0].Metrics {
		metrics = append(metrics, name)
	}
	sort.Strings(metrics)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(param)+"\t"+strings.ToUpper(strings.Join(metrics, "\t")))
	for _, r := range results {
		row := []string{fmt.Sprintf("%g", r.Value)}
		for _, name := range metrics {
			row = append(row, fmt.Sprintf("%.6f", r.Metrics[name]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has %d samples", meta.ID, len(samples))
	}
	sampleTime := samples[1].Time - samples[0].Time
	fmt.Printf("run: %s (%d samples every %gs)\n", meta.ID, len(samples), sampleTime)

	for _, name := range specSeries {
		values, err := viz.Series(samples, name)
		if err != nil {
			return err
		}
		s, err := analysis.NewSpectrum(values, sampleTime)
		if err != nil {
			return err
		}
		f, a := s.Dominant()
		fmt.Printf("\n%s: dominant %.3f Hz (amplitude %.4g)\n", name, f, a)
		for _, p := range s.Peaks(peakCount) {
			fmt.Printf("  peak %8.3f Hz  %.4g\n", p.Frequency, p.Amplitude)
		}
	}

	k, fit, err := analysis.ContactStiffness(samples, contactAxis, minForce)
	switch {
	case errors.Is(err, analysis.ErrTooShort), errors.Is(err, analysis.ErrDegenerate):
		fmt.Printf("\nno contact above %g N on axis %d\n", minForce, contactAxis)
	case err != nil:
		return err
	default:
		fmt.Printf("\ncontact stiffness: %.4g N/m (r2 %.4f, %d samples)\n", k, fit.RSquared, fit.N)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	xs, err := viz.Series(samples, phaseX)
	if err != nil {
		return err
	}
	ys, err := viz.Series(samples, phaseY)
	if err != nil {
		return err
	}

	c := viz.PhaseCanvas(xs, ys, phaseWidth, phaseHeight)
	fmt.Printf("run: %s\n%s vs %s, x [%.3g, %.3g], y [%.3g, %.3g]\n\n",
		meta.ID, phaseY, phaseX, c.View.MinX, c.View.MaxX, c.View.MinY, c.View.MaxY)
	fmt.Println(c.String())

	if svgFile != "" {
		svg, err := export.PathToSVG(xs, ys, 8*phaseWidth, 16*phaseHeight, "#00ffff")
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nsaved %s\n", svgFile)
	}
	return nil
}
