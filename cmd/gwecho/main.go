package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gwecho/internal/analysis"
	"github.com/san-kum/gwecho/internal/automation"
	"github.com/san-kum/gwecho/internal/config"
	"github.com/san-kum/gwecho/internal/export"
	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/fractional"
	"github.com/san-kum/gwecho/internal/metrics"
	"github.com/san-kum/gwecho/internal/projection"
	"github.com/san-kum/gwecho/internal/sim"
	"github.com/san-kum/gwecho/internal/sources"
	"github.com/san-kum/gwecho/internal/storage"
	"github.com/san-kum/gwecho/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	steps       int
	recordEvery int
	label       string
	jsonOut     string
	sliceOut    string
	sliceK      int
	// analyze
	column    string
	threshold float64
	// validate
	rank      int
	tMax      float64
	tolerance float64
	// primes
	maxPrime int
	tau0     float64
	// ensemble
	runs int
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepNum   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gwecho",
		Short: "fractional wave equation simulator with prime-gap echoes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gwecho", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the results",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "run", "run label")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export full run to JSON file")
	runCmd.Flags().StringVar(&sliceOut, "slice-svg", "", "export final field slice to SVG file")
	runCmd.Flags().IntVar(&sliceK, "slice", -1, "z-index for --slice-svg (default: mid-plane)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored time series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "strain_amplitude", "snapshot column to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral and echo-train analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "strain_amplitude", "snapshot column to analyze")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 0, "pulse detection threshold (0: half of max)")
	analyzeCmd.Flags().Float64Var(&tau0, "tau0", 0.001, "expected base echo delay (s)")

	waveformCmd := &cobra.Command{
		Use:   "waveform [run_id] [out.svg]",
		Short: "export a stored time series as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportWaveform,
	}
	waveformCmd.Flags().StringVar(&column, "column", "h_plus", "snapshot column to draw")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the kernel approximation against the exact kernel",
		RunE:  validateKernels,
	}
	validateCmd.Flags().IntVar(&rank, "rank", 8, "exponential terms per kernel")
	validateCmd.Flags().Float64Var(&tMax, "tmax", 10.0, "approximation horizon (s)")
	validateCmd.Flags().Float64Var(&tolerance, "tolerance", 0.1, "max relative error")

	primesCmd := &cobra.Command{
		Use:   "primes",
		Short: "preview the prime-gap echo schedule",
		RunE:  previewPrimes,
	}
	primesCmd.Flags().IntVar(&maxPrime, "max-prime", 1000, "sieve bound")
	primesCmd.Flags().Float64Var(&tau0, "tau0", 0.001, "base echo delay (s)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same configuration several times in parallel",
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 4, "ensemble size")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter over a range and compare runs",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "alpha_min", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "lower bound")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.5, "upper bound")
	sweepCmd.Flags().IntVar(&sweepNum, "num", 5, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			return config.Save(args[0], cfg)
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, waveformCmd,
		validateCmd, primesCmd, ensembleCmd, sweepCmd, scenarioCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	cmd.Flags().IntVar(&recordEvery, "record-every", 0, "override snapshot thinning")
}

// loadConfig resolves preset, config file, and flag overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("steps") {
		cfg.Run.Steps = steps
	}
	if cmd.Flags().Changed("record-every") {
		cfg.Run.RecordEvery = recordEvery
	}
	return cfg, nil
}

func buildEngine(cfg *config.Config) (*sim.Engine, error) {
	f, err := field.New(cfg.FieldConfig())
	if err != nil {
		return nil, err
	}
	solver, err := fractional.NewSolver(cfg.SolverConfig(), f.TotalPoints())
	if err != nil {
		return nil, err
	}
	merger, err := sources.NewBinaryMerger(cfg.MergerConfig())
	if err != nil {
		return nil, err
	}
	echoes, err := sources.NewEchoGenerator(cfg.EchoConfig())
	if err != nil {
		return nil, err
	}
	if cfg.Echoes.Anchor {
		echoes.SetMergerTime(cfg.Echoes.MergerTime)
	}
	ops := projection.New(cfg.ProjectionConfig())

	engine, err := sim.New(f, solver, merger, echoes, ops)
	if err != nil {
		return nil, err
	}
	engine.AddMetric(metrics.NewMeanEnergy())
	engine.AddMetric(metrics.NewEnergyDrift())
	engine.AddMetric(metrics.NewPeakStrain())
	engine.AddMetric(metrics.NewStability(1e6))
	engine.AddMetric(metrics.NewEchoActivity())
	if cfg.Run.RecordEvery > 0 {
		engine.SetRecordEvery(cfg.Run.RecordEvery)
	}
	return engine, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %d steps on a %dx%dx%d grid...\n",
		cfg.Run.Steps, cfg.Grid.NX, cfg.Grid.NY, cfg.Grid.NZ)
	start := time.Now()

	result, err := engine.Run(context.Background(), cfg.Run.Steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(label, engine.Dt(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.MergerDetected {
		fmt.Printf("merger detected at t=%.4fs, %d echoes scheduled\n",
			result.MergerTime, engine.Echoes().NumEchoes())
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if jsonOut != "" {
		if err := storage.ExportJSON(jsonOut, label, engine.Dt(), result); err != nil {
			return err
		}
		fmt.Printf("run exported to %s\n", jsonOut)
	}
	if cfg.Run.ExportField != "" {
		if err := engine.Field().ExportCSV(cfg.Run.ExportField); err != nil {
			return err
		}
	}
	if cfg.Run.ExportEchos != "" {
		if err := engine.Echoes().ExportSchedule(cfg.Run.ExportEchos); err != nil {
			return err
		}
	}
	if sliceOut != "" {
		k := sliceK
		if k < 0 {
			k = cfg.Grid.NZ / 2
		}
		svg, err := export.SliceSVG(engine.Field(), k, 8)
		if err != nil {
			return err
		}
		if err := export.WriteFile(sliceOut, svg); err != nil {
			return err
		}
		fmt.Printf("slice z=%d exported to %s\n", k, sliceOut)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(func() (*sim.Engine, error) { return buildEngine(cfg) })
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	stored, err := st.List()
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tMERGER")
	for _, run := range stored {
		merger := "-"
		if run.MergerDetected {
			merger = fmt.Sprintf("t=%.4fs", run.MergerTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2es\t%s\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04:05"), run.Steps, run.Dt, merger)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, values, err := st.LoadSeries(args[0], column)
	if err != nil {
		return err
	}
	if len(values) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Printf("run: %s\nsamples: %d, t=[%g, %g]s\n\n",
		args[0], len(values), times[0], times[len(times)-1])
	graph := asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(column+" vs time"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, values, err := st.LoadSeries(args[0], column)
	if err != nil {
		return err
	}
	if len(values) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	sampleDt := times[1] - times[0]
	spectrum, err := analysis.PowerSpectrum(values, sampleDt)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, column)
	plotLen := len(spectrum.Power) / 4
	if plotLen > 1 {
		graph := asciigraph.Plot(spectrum.Power[:plotLen],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, power := spectrum.DominantFrequency()
	fmt.Printf("dominant frequency: %.3f hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1.0/freq)
	}

	th := threshold
	if th == 0 {
		peak := 0.0
		for _, v := range values {
			if v > peak {
				peak = v
			}
		}
		th = peak / 2
	}
	pulses, err := analysis.DetectPulses(times, values, th)
	if err != nil {
		return err
	}
	fmt.Printf("\npulses above %.4g: %d\n", th, len(pulses))
	if len(pulses) >= 2 {
		intervals := analysis.Intervals(pulses)
		primes := sources.GeneratePrimes(1000)
		gaps := sources.PrimeGaps(primes)
		if analysis.MatchesPrimeGaps(intervals, gaps, tau0, 0.25) {
			fmt.Printf("pulse intervals follow the prime-gap sequence (tau0=%.4gs)\n", tau0)
		} else {
			fmt.Println("pulse intervals do not match the prime-gap sequence")
		}
	}
	return nil
}

func exportWaveform(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, values, err := st.LoadSeries(args[0], column)
	if err != nil {
		return err
	}
	svg := export.WaveformSVG(times, values, 800, 300, "#00ff88")
	if svg == "" {
		return fmt.Errorf("not enough samples to draw")
	}
	if err := export.WriteFile(args[1], svg); err != nil {
		return err
	}
	fmt.Printf("%s exported to %s\n", column, args[1])
	return nil
}

func validateKernels(cmd *cobra.Command, args []string) error {
	cfg := fractional.Config{
		TMax: tMax, Rank: rank, Dt: 0.001,
		AlphaMin: 0.5, AlphaMax: 2.0,
	}
	solver, err := fractional.NewSolver(cfg, 1)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALPHA\tMAX ERR\tMEAN ERR\tRMS ERR\tPASS")
	// Γ(2-2α) has poles at α = 1.0 and 1.5, where no closed form exists.
	for _, alpha := range []float64{0.6, 0.8, 1.1, 1.2, 1.4} {
		res, err := solver.ValidateApproximation(alpha, tolerance)
		if err != nil {
			return err
		}
		pass := "no"
		if res.Passed {
			pass = "yes"
		}
		fmt.Fprintf(w, "%.2f\t%.4g\t%.4g\t%.4g\t%s\n",
			alpha, res.MaxError, res.MeanError, res.RMSError, pass)
	}
	return w.Flush()
}

func previewPrimes(cmd *cobra.Command, args []string) error {
	cfg := sources.DefaultEchoConfig()
	cfg.MaxPrimeValue = maxPrime
	cfg.FundamentalTimescale = tau0
	cfg.MergerTime = 0
	cfg.AutoDetectMerger = false

	gen, err := sources.NewEchoGenerator(cfg)
	if err != nil {
		return err
	}

	stats := gen.PrimeStatistics()
	fmt.Printf("primes up to %d: %d (max %d)\n", maxPrime, stats.NumPrimes, stats.MaxPrime)
	fmt.Printf("gaps: mean %.2f, min %d, max %d\n\n", stats.MeanGap, stats.MinGap, stats.MaxGap)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ECHO\tGAP\tTIME\tAMPLITUDE\tFREQ")
	for _, e := range gen.Schedule() {
		fmt.Fprintf(w, "%d\t%d\t%.4fs\t%.4g\t%.1fhz\n",
			e.EchoNumber, e.PrimeGap, e.Time, e.Amplitude, e.Frequency)
	}
	return w.Flush()
}

// applyParam maps sweepable parameter names onto config fields.
func applyParam(cfg *config.Config, name string, value float64) error {
	switch name {
	case "alpha_min":
		cfg.Grid.AlphaMin = value
	case "alpha_max":
		cfg.Grid.AlphaMax = value
	case "lambda":
		cfg.Grid.Lambda = value
	case "kappa":
		cfg.Grid.Kappa = value
	case "mass1":
		cfg.Merger.Mass1 = value
	case "mass2":
		cfg.Merger.Mass2 = value
	case "separation":
		cfg.Merger.InitialSeparation = value
	case "amplitude":
		cfg.Merger.SourceAmplitude = value
	case "tau0":
		cfg.Echoes.FundamentalTimescale = value
	case "echo_amplitude":
		cfg.Echoes.AmplitudeBase = value
	case "echo_decay":
		cfg.Echoes.AmplitudeDecay = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	probe := *base
	if err := applyParam(&probe, sweepParam, sweepMin); err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumValues: sweepNum,
		Steps:     base.Run.Steps,
	}

	fmt.Printf("sweeping %s over [%g, %g] in %d values, %d steps each...\n",
		sweepParam, sweepMin, sweepMax, sweepNum, base.Run.Steps)

	results, err := automation.RunSweep(context.Background(), sweep, func(name string, value float64) (*sim.Engine, error) {
		cfg := *base
		if err := applyParam(&cfg, name, value); err != nil {
			return nil, err
		}
		return buildEngine(&cfg)
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL ENERGY\tPEAK STRAIN\tMERGER\n", sweepParam)
	for _, res := range results {
		merger := "-"
		if res.MergerDetected {
			merger = "yes"
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%s\n",
			res.ParamValue, res.FinalEnergy, res.Metrics["peak_strain"], merger)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	stepConfig := func(step automation.ScenarioStep) (*config.Config, error) {
		cfg := config.DefaultConfig()
		if step.Preset != "" {
			if cfg = config.GetPreset(step.Preset); cfg == nil {
				return nil, fmt.Errorf("unknown preset: %s", step.Preset)
			}
		}
		for name, value := range step.Params {
			if err := applyParam(cfg, name, value); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}

	results, err := automation.RunScenario(context.Background(), scenario, func(step automation.ScenarioStep) (*sim.Engine, error) {
		cfg, err := stepConfig(step)
		if err != nil {
			return nil, err
		}
		return buildEngine(cfg)
	})
	if err != nil {
		return err
	}

	for i, res := range results {
		step := scenario.Steps[i]
		cfg, err := stepConfig(step)
		if err != nil {
			return err
		}
		runID, err := st.Save(step.Label, cfg.Grid.Dt, res)
		if err != nil {
			return err
		}
		fmt.Printf("step %d (%s): %d steps, saved as %s\n", i+1, step.Label, res.StepsTaken, runID)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ensemble := sim.NewEnsemble(func(run int) (*sim.Engine, error) {
		return buildEngine(cfg)
	}, runs)

	fmt.Printf("running %d members, %d steps each...\n", runs, cfg.Run.Steps)
	start := time.Now()
	results, err := ensemble.Run(context.Background(), cfg.Run.Steps)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTEPS\tPEAK STRAIN\tMEAN ENERGY\tMERGER")
	for i, res := range results {
		merger := "-"
		if res.MergerDetected {
			merger = fmt.Sprintf("t=%.4fs", res.MergerTime)
		}
		fmt.Fprintf(w, "%d\t%d\t%.4g\t%.4g\t%s\n",
			i, res.StepsTaken, res.Metrics["peak_strain"], res.Metrics["mean_field_energy"], merger)
	}
	return w.Flush()
}
