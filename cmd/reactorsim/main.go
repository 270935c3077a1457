package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/analysis"
	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/sim"
	"github.com/san-kum/reactorsim/internal/store"
	"github.com/san-kum/reactorsim/internal/viz"
)

var (
	dataDir    string
	backend    string
	logLevel   string
	configFile string
	preset     string
	scenario   string
	dt         float64
	speed      float64
	duration   float64
	maxTicks   int
	rods       float64
	sample     int
	progress   bool
	// live view
	frameRate     int
	stepsPerFrame int
	// plots
	plotWidth  int
	plotHeight int
	xColumn    string
	yColumn    string
	column     string
	outPath    string
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the reactorsim commands and exits with status 1 if the
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "reactorsim",
		Short:             "boiling water reactor state-update simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default "+config.DefaultDataDir+")")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "run store backend: file or sqlite")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless and save the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&progress, "progress", false, "show a live status line on stderr")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the interactive control panel",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", viz.DefaultFPS, "frames per second")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 1, "engine ticks per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the four summary charts of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addPlotFlags(plotCmd, 70, 10)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one column of a run against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	addPlotFlags(phaseCmd, 70, 20)
	phaseCmd.Flags().StringVar(&xColumn, "x", "power_w", "x axis column")
	phaseCmd.Flags().StringVar(&yColumn, "y", "reactivity", "y axis column")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one column of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addPlotFlags(analyzeCmd, 80, 15)
	analyzeCmd.Flags().StringVar(&column, "column", "power_w", "column to analyze")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the sampled snapshots of a run as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with its metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a parameter, in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "rods", "parameter to vary: "+strings.Join(automation.SweepParams, ", "))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "n", 5, "number of values")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scripted operator actions (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", reactor.DefaultDt, "base step size in seconds")
	cmd.Flags().Float64Var(&speed, "speed", reactor.DefaultSpeed, "speed multiplier (0.1 to 2.0)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds to run")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "stop after this many ticks (0 for no limit)")
	cmd.Flags().Float64Var(&rods, "rods", 0.7, "initial control rod insertion (0 to 1)")
	cmd.Flags().IntVar(&sample, "sample", config.DefaultSampleEvery, "record every n-th tick")
}

func addPlotFlags(cmd *cobra.Command, w, h int) {
	cmd.Flags().IntVar(&plotWidth, "width", w, "plot width")
	cmd.Flags().IntVar(&plotHeight, "height", h, "plot height")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// resolveConfig layers defaults, preset, config file, environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if flags.Changed("rods") {
		cfg.InitState.RodInsertion = rods
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sample
	}
	if flags.Changed("scenario") {
		cfg.Scenario = scenario
	}
	applyStorageFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyStorageFlags(cfg *config.Config) {
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	return store.Open(cfg.Storage.Backend, cfg.Storage.DataDir)
}

// storeFromEnv opens the run store for commands that do not simulate.
func storeFromEnv() (store.Store, error) {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	applyStorageFlags(cfg)
	return openStore(cfg)
}

func loadScenario(cfg *config.Config) (*automation.Scenario, error) {
	if cfg.Scenario == "" {
		return nil, nil
	}
	sc, err := automation.LoadScenario(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return sc, nil
}

func simConfig(cfg *config.Config, sc *automation.Scenario) sim.Config {
	return sim.Config{
		Dt:          cfg.Dt,
		Speed:       cfg.Speed,
		Duration:    cfg.Duration,
		MaxTicks:    cfg.MaxTicks,
		SampleEvery: cfg.SampleEvery,
		Scenario:    sc,
	}
}

func runInfo(cfg *config.Config) store.RunInfo {
	return store.RunInfo{
		Name:     cfg.Name,
		Scenario: cfg.Scenario,
		Dt:       cfg.Dt,
		Speed:    cfg.Speed,
		Duration: cfg.Duration,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := sim.New(slog.Default())
	for _, m := range metrics.Standard() {
		runner.AddMetric(m)
	}

	var bar *viz.Progress
	if progress {
		bar = viz.NewProgress(os.Stderr, 10, cfg.Duration)
		runner.AddObserver(bar)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: dt=%g speed=%.1fx duration=%gs\n", cfg.Name, cfg.Dt, cfg.Speed, cfg.Duration)
	result, err := runner.Run(ctx, cfg.NewState(), simConfig(cfg, sc))
	if bar != nil {
		bar.Done()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	runID, err := st.Save(runInfo(cfg), result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	printResult(os.Stdout, runID, result)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// the panel owns the terminal, so engine logs go to a file
	logFile, err := os.OpenFile(filepath.Join(cfg.Storage.DataDir, "live.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	eng := reactor.NewEngine(cfg.NewState(), reactor.WithLogger(logger))
	clock := reactor.NewClock(eng, cfg.Dt, cfg.Speed)
	rec := sim.NewRecorder(cfg.SampleEvery, metrics.Standard()...)

	model := viz.NewModel(clock, rec, frameRate, stepsPerFrame).WithSchedule(automation.NewSchedule(sc))
	final, err := viz.Run(model)
	if err != nil {
		return err
	}
	if final.Err() != nil {
		return final.Err()
	}

	result := final.Result()
	runID, err := st.Save(runInfo(cfg), result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	printResult(os.Stdout, runID, result)
	return nil
}

func printResult(out io.Writer, runID string, result *sim.Result) {
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "outcome: %s after %s ticks (%.3f s simulated)\n",
		result.Outcome, humanize.Comma(int64(result.Ticks)), result.Final.Time)

	if len(result.Events) > 0 {
		fmt.Fprintln(out, "\nevents:")
		for _, ev := range result.Events {
			fmt.Fprintf(out, "  %s\n", ev)
		}
	}

	if len(result.Metrics) > 0 {
		fmt.Fprintln(out, "\nmetrics:")
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%s\n", name, formatMetric(name, result.Metrics[name]))
		}
		w.Flush()
	}

	if result.Outcome == sim.OutcomeCollapsed {
		fmt.Fprintln(out)
		fmt.Fprintln(out, viz.AccidentReport(result.Final))
	}
}

func formatMetric(name string, v float64) string {
	switch name {
	case "peak_power_w":
		return humanize.SIWithDigits(v, 2, "W")
	case "peak_pressure_pa":
		return humanize.SIWithDigits(v, 2, "Pa")
	case "time_to_breach_s":
		if v < 0 {
			return "none"
		}
		return fmt.Sprintf("%.3f s", v)
	}
	return fmt.Sprintf("%.4g", v)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storeFromEnv()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tOUTCOME\tSIM TIME\tTICKS\tPEAK POWER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3fs\t%s\t%s\n",
			run.ID,
			run.Name,
			humanize.Time(run.Timestamp),
			run.Outcome,
			run.SimTime,
			humanize.Comma(int64(run.Ticks)),
			humanize.SIWithDigits(run.Metrics["peak_power_w"], 2, "W"),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*store.RunMetadata, *store.Series, error) {
	st, err := storeFromEnv()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if series.Len() == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("outcome: %s\n", meta.Outcome)
	fmt.Printf("samples: %d\n\n", series.Len())

	fmt.Println(viz.RenderPanels(viz.StandardPanels(series.Column), plotWidth, plotHeight))
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	x, y := series.Column(xColumn), series.Column(yColumn)
	if x == nil || y == nil {
		return fmt.Errorf("unknown column (available: %s)", strings.Join(series.Columns, ", "))
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x: %s  y: %s\n\n", xColumn, yColumn)
	fmt.Print(analysis.NewPortrait(xColumn, x, yColumn, y).ASCII(plotWidth, plotHeight))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data := series.Column(column)
	if data == nil {
		return fmt.Errorf("unknown column %q (available: %s)", column, strings.Join(series.Columns, ", "))
	}

	spectrum, err := analysis.AnalyzeSpectrum(series.Times, data)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("column: %s\n\n", column)

	plotData := spectrum.Power[:min(len(spectrum.Power), len(spectrum.Power)/4+1)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", column)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := storeFromEnv()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := store.ExportCSV(st, args[0], outPath); err != nil {
		return err
	}
	if outPath != "" && outPath != "-" {
		fmt.Printf("exported to %s\n", outPath)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := storeFromEnv()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := store.ExportJSON(st, args[0], outPath); err != nil {
		return err
	}
	if outPath != "" && outPath != "-" {
		fmt.Printf("exported to %s\n", outPath)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDT\tSPEED\tDURATION\tRODS\tVAPOR\tFAILURES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		failures := "armed"
		if !cfg.Failures.EmergencyCooling && !cfg.Failures.EmergencyPower {
			failures = "off"
		}
		fmt.Fprintf(w, "%s\t%g\t%.1fx\t%gs\t%.2f\t%.2f\t%s\n",
			name, cfg.Dt, cfg.Speed, cfg.Duration,
			cfg.InitState.RodInsertion, cfg.InitState.VaporFraction, failures)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	sweep := automation.Sweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepSteps}
	states, err := sweep.States(cfg.NewState())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d values\n", sweepParam, len(states))
	results, err := sim.NewEnsemble(slog.Default()).Run(ctx, states, simConfig(cfg, sc))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(sweepParam)+"\tOUTCOME\tPEAK POWER\tPEAK TEMP\tBREACH")
	for i, v := range sweep.Values() {
		res := results[i]
		fmt.Fprintf(w, "%.4g\t%s\t%s\t%.1f °C\t%s\n",
			v,
			res.Outcome,
			humanize.SIWithDigits(res.Metrics["peak_power_w"], 2, "W"),
			res.Metrics["peak_temperature_c"],
			formatMetric("time_to_breach_s", res.Metrics["time_to_breach_s"]),
		)
	}
	return w.Flush()
}
