package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/rhizosoil/internal/config"
	"github.com/san-kum/rhizosoil/internal/experiment"
	"github.com/san-kum/rhizosoil/internal/metrics"
	"github.com/san-kum/rhizosoil/internal/optim"
	"github.com/san-kum/rhizosoil/internal/sim"
	"github.com/san-kum/rhizosoil/internal/soil"
	"github.com/san-kum/rhizosoil/internal/storage"
	"github.com/san-kum/rhizosoil/internal/tree"
	"github.com/san-kum/rhizosoil/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	steps      int
	timeStep   float64
	segments   int
	workers    int
	forcing    string
	growth     string
	every      int
	overrides  []string
	record     []string
	promFile   string
	entity     int
	asJSON     bool
	sweepKey   string
	sweepVals  []float64
	grid       []string
	metric     string
	target     float64
)

var defaultRecord = []string{
	soil.CHexoseSoil, soil.CsMucilageSoil, soil.CsCellsSoil,
	soil.HexoseDegradation, soil.MucilageDegradation, soil.CellsDegradation,
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "rhizosoil",
		Short:        "rhizosphere soil carbon simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config or RHIZOSOIL_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringSliceVar(&record, "record", nil, "variables written to states.csv")
	runCmd.Flags().StringVar(&promFile, "prom", "", "write prometheus diagnostics to this textfile")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a scenario key, in parallel",
		Args:  cobra.NoArgs,
		RunE:  sweepScenario,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepKey, "key", soil.SoilTemperature, "scenario key to vary")
	sweepCmd.Flags().Float64SliceVar(&sweepVals, "values", []float64{5, 10, 15, 20, 25}, "values of the key")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "grid search scenario values against a metric",
		Args:  cobra.NoArgs,
		RunE:  calibrate,
	}
	addRunFlags(calibrateCmd)
	calibrateCmd.Flags().StringArrayVar(&grid, "grid", nil, "name=v1,v2,... (repeatable)")
	calibrateCmd.Flags().StringVar(&metric, "metric", "mean_"+soil.CHexoseSoil, "metric to score")
	calibrateCmd.Flags().Float64Var(&target, "target", 0, "match this value instead of minimizing")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarize a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "export metadata and series as json")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [variable...]",
		Short: "plot recorded variables over time",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&entity, "entity", -1, "plot one entity instead of the mean")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE:  listPresets,
	}

	varsCmd := &cobra.Command{
		Use:   "vars",
		Short: "list inputs, state variables and parameters of the soil",
		RunE:  listVariables,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, calibrateCmd, listCmd, showCmd, plotCmd, presetsCmd, varsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step in seconds")
	cmd.Flags().IntVar(&segments, "segments", config.DefaultSegments, "initial root segments")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines per binding")
	cmd.Flags().StringVar(&forcing, "forcing", config.DefaultForcing, "forcing profile")
	cmd.Flags().StringVar(&growth, "growth", "none", "growth pattern")
	cmd.Flags().IntVar(&every, "every", 6, "steps between growth events")
	cmd.Flags().StringArrayVarP(&overrides, "set", "s", nil, "scenario override name=value")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers defaults, preset, config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("segments") {
		cfg.Segments = segments
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("forcing") {
		cfg.Forcing = forcing
	}
	if flags.Changed("growth") {
		cfg.Growth.Pattern = growth
		if cfg.Growth.Every == 0 || flags.Changed("every") {
			cfg.Growth.Every = every
		}
	} else if flags.Changed("every") {
		cfg.Growth.Every = every
	}
	if len(overrides) > 0 && cfg.Scenario == nil {
		cfg.Scenario = make(map[string]float64)
	}
	for _, kv := range overrides {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("override %q: expected name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", kv, err)
		}
		cfg.Scenario[name] = v
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(record) > 0 {
		cfg.Record = record
	}
	if len(cfg.Record) == 0 {
		cfg.Record = defaultRecord
	}
	logger := newLogger()

	reg := prometheus.NewRegistry()
	diag, err := metrics.NewDiagnostics(reg)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.WithLogger(logger), experiment.WithDiagnostics(diag))
	if err := exp.Setup(); err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.NewRecorder(storage.RunMetadata{
		Preset:    preset,
		TimeStep:  cfg.TimeStep,
		Steps:     cfg.Steps,
		Segments:  cfg.Segments,
		Forcing:   cfg.Forcing,
		Growth:    cfg.Growth.Pattern,
		Workers:   cfg.Workers,
		Scenario:  cfg.Scenario,
		Variables: cfg.Record,
	})
	if err != nil {
		return err
	}
	exp.GetSimulator().AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d steps of %gs on %d segments...\n", cfg.Steps, cfg.TimeStep, cfg.Segments)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	if err := rec.Close(result, runErr); err != nil {
		return err
	}
	if promFile != "" {
		if err := prometheus.WriteToTextfile(promFile, reg); err != nil {
			return err
		}
	}

	meta, err := st.Load(rec.ID())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Println(viz.RenderSummary(*meta))
	return runErr
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(sweepVals) == 0 {
		return fmt.Errorf("no values to sweep")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := experiment.Sweep(ctx, cfg, sweepKey, sweepVals, experiment.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	slices.Sort(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tUNSTABLE\n", strings.ToUpper(sweepKey), strings.ToUpper(strings.Join(names, "\t")))
	for i, r := range results {
		row := []string{strconv.FormatFloat(sweepVals[i], 'g', -1, 64)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.4g", r.Metrics[name]))
		}
		row = append(row, strconv.FormatInt(r.Unstable, 10))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func calibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	names := make([]string, 0, len(grid))
	ranges := make([][]float64, 0, len(grid))
	for _, entry := range grid {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("grid %q: expected name=v1,v2", entry)
		}
		var values []float64
		for _, field := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("grid %q: %w", entry, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	objective := optim.Minimize(metric)
	if cmd.Flags().Changed("target") {
		objective = optim.Match(metric, target)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	fmt.Printf("searching %d grid points...\n", search.Size())
	best, score, err := search.Search(ctx, func(ctx context.Context, overrides map[string]float64) (*sim.Result, error) {
		return experiment.RunWith(ctx, cfg, overrides, experiment.WithLogger(logger))
	}, objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%g\n", name, best[name])
	}
	fmt.Fprintf(w, "score\t%.6g\n", score)
	return w.Flush()
}

func store() (*storage.Store, error) {
	dir := dataDir
	if dir == "" {
		cfg := config.DefaultConfig()
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
		dir = cfg.DataDir
	}
	return storage.New(dir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := store()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tENTITIES\tFORCING\tGROWTH\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%gs\t%d\t%s\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.TimeStep,
			run.Entities,
			run.Forcing,
			run.Growth,
			status,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := store()
	if err != nil {
		return err
	}
	if asJSON {
		return st.ExportJSON(os.Stdout, args[0])
	}

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderSummary(*meta))
	fmt.Println()
	for _, name := range meta.Variables {
		series, err := st.LoadSeries(meta.ID, name, -1)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %s\n", name, viz.SparklineChart(series.Values, 40))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := store()
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	vars := args[1:]
	if len(vars) == 0 {
		vars = meta.Variables
	}

	fmt.Printf("run: %s\n\n", meta.ID)
	for _, name := range vars {
		series, err := st.LoadSeries(runID, name, entity)
		if err != nil {
			return err
		}
		if len(series.Values) == 0 {
			return fmt.Errorf("no data to plot for %s", name)
		}

		caption := name + " (entity mean)"
		if entity >= 0 {
			caption = fmt.Sprintf("%s (entity %d)", name, entity)
		}
		graph := asciigraph.Plot(series.Values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tDT\tSEGMENTS\tFORCING\tGROWTH\tSCENARIO")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		keys := make([]string, 0, len(p.Scenario))
		for k, v := range p.Scenario {
			keys = append(keys, fmt.Sprintf("%s=%g", k, v))
		}
		slices.Sort(keys)
		fmt.Fprintf(w, "%s\t%d\t%gs\t%d\t%s\t%s\t%s\n",
			name, p.Steps, p.TimeStep, p.Segments, p.Forcing, p.Growth.Pattern, strings.Join(keys, " "))
	}
	return w.Flush()
}

func listVariables(cmd *cobra.Command, args []string) error {
	g := tree.NewGraph()
	g.AddRoot()
	comp, err := soil.New(g, config.DefaultTimeStep, nil)
	if err != nil {
		return err
	}
	fmt.Println(viz.VariableTable(comp.Documentation()))
	return nil
}
