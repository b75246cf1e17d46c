package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/quantasim/internal/analysis"
	"github.com/san-kum/quantasim/internal/automation"
	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/experiment"
	"github.com/san-kum/quantasim/internal/export"
	"github.com/san-kum/quantasim/internal/metrics"
	"github.com/san-kum/quantasim/internal/optim"
	"github.com/san-kum/quantasim/internal/sim"
	"github.com/san-kum/quantasim/internal/storage"
	"github.com/san-kum/quantasim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	debug       bool
	dt          float64
	duration    float64
	seed        int64
	sampleEvery int
	configFile  string
	metricNames []string
	gifPath     string
	// tunable overrides
	gravity     float64
	emForce     float64
	temperature float64
	// field size
	width  float64
	height float64
	// analysis
	column     string
	plotColumn string
	output     string
	// sweeps and ensembles
	paramName    string
	paramMin     float64
	paramMax     float64
	numSteps     int
	benchSteps   int
	trialTime    float64
	trialSeed    int64
	numRuns      int
	perturbation float64
	gridParams   []string
	metricName   string
	maximize     bool
)

const logFileName = "quantasim.log"

var (
	logger  = log.New(io.Discard, "", 0)
	logFile *os.File
)

// main is the entry point for the quantasim CLI. With no subcommand it opens
// the interactive scenario picker.
func main() {
	rootCmd := &cobra.Command{
		Use:   "quantasim",
		Short: "particle physics sandbox",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quantasim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log engine events to a file in the data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "steps between stored samples")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to compute (default all)")
	runCmd.Flags().StringVar(&gifPath, "gif", "", "record the run to this GIF file")
	addTunableFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	addTunableFlags(liveCmd)

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenario presets",
		RunE:  listScenarios,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "single column to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the final snapshot of a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final snapshot of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default timestamped name)")
	exportSVGCmd.Flags().Float64Var(&width, "width", config.DefaultFieldWidth, "field width")
	exportSVGCmd.Flags().Float64Var(&height, "height", config.DefaultFieldHeight, "field height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary and frequency analysis of a run statistic",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "total_energy", "statistic to analyze")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a batch file of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "sweep one tunable across a range",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "temperature", "tunable to sweep: "+strings.Join(experiment.ParamNames(), ", "))
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 10000, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")
	addShortRunFlags(sweepCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "run perturbed trials of a scenario in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&numRuns, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.1, "relative jitter of tunables")
	addShortRunFlags(monteCarloCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run a scenario under consecutive seeds and average the metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")
	addShortRunFlags(ensembleCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize [scenario]",
		Short: "grid search tunables to minimize or maximize a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().StringSliceVar(&gridParams, "grid", nil, "tunable=v1:v2:... (repeatable)")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to optimize")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize the metric instead of minimizing it")
	addShortRunFlags(optimizeCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "compare force approximations on a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 60, "steps per approximation")
	benchCmd.Flags().Int64Var(&trialSeed, "seed", 42, "random seed")

	rootCmd.AddCommand(runCmd, liveCmd, scenariosCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd,
		analyzeCmd, batchCmd, sweepCmd, monteCarloCmd, ensembleCmd, optimizeCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTunableFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravity strength multiplier")
	cmd.Flags().Float64Var(&emForce, "em", 0, "electromagnetic strength multiplier")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "thermal noise temperature (K)")
}

func addShortRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&trialTime, "time", 1.0, "simulated duration (s)")
	cmd.Flags().Int64Var(&trialSeed, "seed", 42, "random seed")
}

// setupLogging points the logger at a file in the data directory when
// enabled and discards everything otherwise. The returned file is nil when
// logging is off or the file could not be opened.
func setupLogging(enabled bool) *os.File {
	logger = log.New(io.Discard, "", 0)
	if !enabled {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return nil
	}
	logger = log.New(f, "quantasim: ", log.Ltime|log.Lmicroseconds)
	return f
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// tunableParams collects the tunables set explicitly on the command line.
func tunableParams(cmd *cobra.Command) map[string]float64 {
	params := map[string]float64{}
	if cmd.Flags().Changed("gravity") {
		params["gravity_strength"] = gravity
	}
	if cmd.Flags().Changed("em") {
		params["em_force"] = emForce
	}
	if cmd.Flags().Changed("temperature") {
		params["temperature"] = temperature
	}
	return params
}

// experimentConfig resolves the scenario argument, the optional config file
// and the flags into one experiment. Flags override the file.
func experimentConfig(cmd *cobra.Command, args []string) (experiment.Config, error) {
	cfg := experiment.Config{
		Simulation:  config.DefaultSimulation(),
		Params:      tunableParams(cmd),
		Metrics:     metricNames,
		Dt:          dt,
		Duration:    duration,
		Seed:        seed,
		SampleEvery: sampleEvery,
	}

	if configFile != "" {
		file, err := config.Load(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Scenario = file.Scenario
		cfg.Simulation = file.Simulation
		cfg.Width, cfg.Height = file.Field.Width, file.Field.Height
		if !cmd.Flags().Changed("dt") {
			cfg.Dt = file.Dt
		}
		if !cmd.Flags().Changed("time") {
			cfg.Duration = file.Duration
		}
		if file.Seed != 0 && !cmd.Flags().Changed("seed") {
			cfg.Seed = file.Seed
		}
	}

	if len(args) > 0 {
		cfg.Scenario = args[0]
		cfg.Simulation = config.SimulationConfig{}
	}
	return cfg, nil
}

// gifObserver captures a frame every few steps of a headless run.
type gifObserver struct {
	eng   *engine.Engine
	rec   *export.Recorder
	every int
	steps int
}

func (g *gifObserver) OnStep(engine.Stats, float64) {
	if g.steps%g.every == 0 {
		g.rec.Capture(g.eng.Particles(), g.eng.GravityWells())
	}
	g.steps++
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, logger); err != nil {
		return err
	}

	var gif *gifObserver
	if gifPath != "" {
		w, h := exp.Engine().Bounds()
		gif = &gifObserver{eng: exp.Engine(), rec: export.NewRecorder(w, h, 480, 3), every: 2}
		exp.GetSimulator().AddObserver(gif)
	}

	name := cfg.Scenario
	if name == "" {
		name = "sandbox"
	}
	fmt.Printf("running %s simulation (%d particles)...\n", name, len(exp.Engine().Particles()))
	start := time.Now()

	ctx, cancel := signalContext()
	defer cancel()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Scenario: cfg.Scenario,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Config:   exp.Engine().Config(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("particles: %d\n", len(result.Final))
	printMetrics(result.Metrics)
	if len(result.Reactions) > 0 {
		fmt.Println("\nreactions:")
		for _, name := range sortedKeys(result.Reactions) {
			fmt.Printf("  %s: %d\n", name, result.Reactions[name])
		}
	}

	if gif != nil {
		if err := gif.rec.Save(gifPath); err != nil {
			return err
		}
		fmt.Printf("\nrecorded %d frames to %s\n", gif.rec.Frames(), gifPath)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	eng, err := experiment.Build(experiment.NewRegistry(), cfg, cfg.Seed, logger)
	if err != nil {
		return err
	}
	return viz.RunLive(eng, eng.Config().Preset, logger)
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tPARTICLES\tWELLS\tDESCRIPTION")
	for _, name := range config.ListScenarios() {
		s, err := config.GetScenario(name)
		if err != nil {
			return err
		}
		total := s.Config.TotalParticles()
		wells := 0
		for _, a := range s.Actions {
			switch a.Kind {
			case config.ActionGravityWell:
				wells++
			case config.ActionParticleBurst:
				total += a.Count
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", name, s.Name, total, wells, s.Description)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSTEPS\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.FinalCount,
		)
	}

	return w.Flush()
}

var plotColumns = []string{"particles", "total_energy", "entropy", "collision_rate"}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	columns := plotColumns
	if plotColumn != "" {
		columns = []string{plotColumn}
	}
	for _, name := range columns {
		data := series.Column(name)
		if data == nil {
			return fmt.Errorf("unknown column %q (available: %v)", name, series.Columns)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	doc, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	if output == "" {
		return export.WriteJSON(os.Stdout, *doc)
	}
	if err := export.WriteJSONFile(output, *doc); err != nil {
		return err
	}
	fmt.Printf("wrote %d particles to %s\n", len(doc.Particles), output)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	doc, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	ps, wells, err := doc.Restore()
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = export.FileName("svg", time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.SVG(f, ps, wells, width, height); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := series.Column(column)
	if data == nil {
		return fmt.Errorf("unknown column %q (available: %v)", column, series.Columns)
	}
	if len(data) < 4 {
		return fmt.Errorf("not enough samples: %d", len(data))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("column: %s\n\n", column)

	sum := analysis.Summarize(series.Times, data)
	fmt.Printf("mean:   %.6g\n", sum.Mean)
	fmt.Printf("stddev: %.6g\n", sum.StdDev)
	fmt.Printf("range:  [%.6g, %.6g]\n", sum.Min, sum.Max)
	fmt.Printf("trend:  %.6g per s\n\n", sum.Slope)

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+column+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	sampleDt := series.Times[1] - series.Times[0]
	freq, _ := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("batch %s: %d steps\n", batch.Name, len(batch.Steps))
	results, runErr := automation.RunBatch(ctx, batch, experiment.NewRegistry(), logger)

	for i, result := range results {
		step := batch.Steps[i]
		name := step.Scenario
		if step.SaveAs != "" {
			name = step.SaveAs
		}
		runID, err := st.Save(storage.RunInfo{
			Scenario: name,
			Seed:     step.Seed,
			Dt:       step.Dt,
			Duration: step.Duration,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("  %d. %s -> %s (%d particles)\n", i+1, step.Scenario, runID, len(result.Final))
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Scenario:  args[0],
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Duration:  trialTime,
		Dt:        dt,
		Seed:      trialSeed,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tMIN_ENERGY\tMAX_ENERGY\tCOLLISIONS\tSURVIVAL\n", strings.ToUpper(paramName))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%.3e\t%.3e\t%d\t%.3f\n",
			r.ParamValue, r.FinalCount, r.MinEnergy, r.MaxEnergy, r.Collisions, r.Metrics["survival"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Scenario:     args[0],
		Perturbation: perturbation,
		NumTrials:    numRuns,
		Duration:     trialTime,
		Dt:           dt,
		Seed:         trialSeed,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tTEMPERATURE\tGRAVITY\tEM\tFINAL\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%.3f\t%.3f\t%d\t%v\n",
			r.TrialID, r.Seed, r.Params["temperature"], r.Params["gravity_strength"], r.Params["em_force"],
			r.FinalCount, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	base := experiment.Config{Scenario: args[0], Dt: dt, Duration: trialTime}
	build := func(s int64) (*engine.Engine, error) {
		return experiment.Build(registry, base, s, nil)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ens := sim.NewEnsemble(build, metrics.Standard, numRuns, trialSeed)
	results, err := ens.Run(ctx, sim.Config{Dt: dt, Duration: trialTime})
	if err != nil {
		return err
	}

	fmt.Printf("ensemble of %d runs (seeds %d..%d)\n", len(results), trialSeed, trialSeed+int64(numRuns)-1)
	printMetrics(sim.MeanMetrics(results))
	return nil
}

// parseGrid reads "name=v1:v2:..." specs.
func parseGrid(specs []string) ([]optim.Axis, error) {
	axes := make([]optim.Axis, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, fmt.Errorf("bad grid spec %q, want name=v1:v2", spec)
		}
		axis := optim.Axis{Param: name}
		for _, field := range strings.Split(list, ":") {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("grid %s: %w", name, err)
			}
			axis.Values = append(axis.Values, v)
		}
		axes = append(axes, axis)
	}
	return axes, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	axes, err := parseGrid(gridParams)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(axes...)
	if err != nil {
		return err
	}

	goal := optim.Minimize
	if maximize {
		goal = optim.Maximize
	}
	base := experiment.Config{
		Scenario: args[0],
		Dt:       dt,
		Duration: trialTime,
		Seed:     trialSeed,
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d grid points\n", search.Size())
	report, err := search.Search(ctx, experiment.NewRegistry(), base, metricName, goal, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	names := make([]string, len(axes))
	for i, a := range axes {
		names[i] = a.Param
	}
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), metricName)
	for _, pt := range report.Points {
		for _, n := range names {
			fmt.Fprintf(w, "%.6g\t", pt.Params[n])
		}
		if pt.Err != nil {
			fmt.Fprintln(w, "failed")
			continue
		}
		fmt.Fprintf(w, "%.6g\n", pt.Value)
	}
	w.Flush()

	fmt.Printf("\nbest %s: %.6g", metricName, report.Best.Value)
	if n := report.Failed(); n > 0 {
		fmt.Printf(" (%d points failed)", n)
	}
	fmt.Println()
	for _, name := range sortedKeys(report.Best.Params) {
		fmt.Printf("  %s = %.6g\n", name, report.Best.Params[name])
	}
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	fmt.Printf("benchmarking %s\n\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APPROXIMATION\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, approx := range []string{config.ApproxPairwise, config.ApproxBarnesHut} {
		eng, err := experiment.Build(registry, experiment.Config{Scenario: args[0]}, trialSeed, logger)
		if err != nil {
			return err
		}
		a := approx
		if err := eng.UpdateConfig(config.Patch{Approximation: &a}); err != nil {
			return err
		}

		n := len(eng.Particles())
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			eng.Advance(config.DefaultDt)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
			approx, n, benchSteps, elapsed.Round(time.Millisecond), float64(benchSteps)/elapsed.Seconds())
	}

	return w.Flush()
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(m) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
