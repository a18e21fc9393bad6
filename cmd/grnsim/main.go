package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/config"
	"github.com/san-kum/grnsim/internal/experiment"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/optim"
	"github.com/san-kum/grnsim/internal/sim"
	"github.com/san-kum/grnsim/internal/storage"
	"github.com/san-kum/grnsim/internal/viz"
)

var (
	env         config.Env
	dataDir     string
	configFile  string
	preset      string
	integrator  string
	duration    float64
	samples     int
	depth       int
	cycles      int
	seed        int64
	noSave      bool
	showPlot    bool
	species     []string
	method      string
	generations int
	population  int
	workers     int
	limit       int
	width       int
	height      int
)

var logger = log.New(os.Stderr, "grnsim: ", 0)

func main() {
	var err error
	env, err = config.LoadEnv()
	if err != nil {
		logger.Fatal(err)
	}

	rootCmd := &cobra.Command{
		Use:          "grnsim",
		Short:        "gene regulatory network circuit simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run [circuit]",
		Short: "simulate a circuit over its input sequence",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the circuit outputs")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "search counter parameters that best match the ideal decoder",
		Args:  cobra.NoArgs,
		RunE:  optimize,
	}
	addConfigFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&method, "method", "ga", "search method (ga, grid)")
	optimizeCmd.Flags().IntVar(&generations, "generations", 0, "GA generations")
	optimizeCmd.Flags().IntVar(&population, "population", 0, "GA population size")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluations")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&species, "species", nil, "species to plot (default: all)")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 10, "plot height")

	timelineCmd := &cobra.Command{
		Use:   "timeline [run_id]",
		Short: "show the logic level of every species after each segment",
		Args:  cobra.ExactArgs(1),
		RunE:  timelineRun,
	}
	timelineCmd.Flags().StringSliceVar(&species, "species", nil, "species to show (default: all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	speciesCmd := &cobra.Command{
		Use:   "species [circuit]",
		Short: "describe the species, genes and feedback loops of a circuit",
		Args:  cobra.ExactArgs(1),
		RunE:  describeCircuit,
	}
	speciesCmd.Flags().IntVar(&depth, "depth", config.DefaultDepth, "counter depth")

	presetsCmd := &cobra.Command{
		Use:   "presets [circuit]",
		Short: "list available presets for a circuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for circuit: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [circuit] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same circuit",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	trialsCmd := &cobra.Command{
		Use:   "trials [run_id]",
		Short: "list optimization runs, or the best trials of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listTrials,
	}
	trialsCmd.Flags().IntVar(&limit, "limit", 10, "number of trials to show")

	rootCmd.AddCommand(runCmd, optimizeCmd, listCmd, plotCmd, timelineCmd, exportCmd, exportCSVCmd, exportJSONCmd, speciesCmd, presetsCmd, compareCmd, trialsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration of every segment")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples per segment")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultDepth, "counter depth")
	cmd.Flags().IntVar(&cycles, "cycles", config.DefaultCycles, "clock cycles")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

// loadConfig resolves the configuration: defaults, then preset, then config
// file, then environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command, circuit string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if circuit != "" {
		cfg.Circuit = circuit
	}

	if preset != "" {
		p := config.GetPreset(cfg.Circuit, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Circuit))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if circuit != "" {
			cfg.Circuit = circuit
		}
	}

	env.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("depth") {
		cfg.Depth = depth
	}
	if flags.Changed("cycles") {
		cfg.Clock.Values = nil
		cfg.Clock.Cycles = cycles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	circuit := ""
	if len(args) > 0 {
		circuit = args[0]
	}
	cfg, err := loadConfig(cmd, circuit)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s simulation...\n", cfg.Circuit)
	start := time.Now()

	tr, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	metrics, err := exp.Metrics(tr)
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("completed in", elapsed.Round(time.Millisecond).String()))
	fmt.Println(viz.Metric("segments", humanize.Comma(int64(len(tr.Boundaries)))))
	fmt.Println(viz.Metric("samples", humanize.Comma(int64(tr.Len()))))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Circuit:    cfg.Circuit,
			Preset:     preset,
			Depth:      cfg.Depth,
			Seed:       cfg.Seed,
			Duration:   cfg.Duration,
			Integrator: cfg.Integrator,
			Metrics:    metrics,
		}, tr)
		if err != nil {
			return err
		}
		fmt.Println(viz.Metric("run id", runID))
	}

	fmt.Println("\n" + viz.TitleStyle.Render("metrics"))
	for _, name := range sortedKeys(metrics) {
		fmt.Printf("  %s\n", viz.Metric(name, fmt.Sprintf("%.6f", metrics[name])))
	}

	outputs := append([]string{circuits.DefaultClock}, exp.Outputs()...)
	if cfg.Circuit == "flipflop" {
		outputs = append([]string{"D"}, outputs...)
	}
	timeline, err := viz.Timeline(tr, outputs, cfg.High())
	if err != nil {
		return err
	}
	fmt.Println("\n" + timeline)

	fmt.Println(viz.Separator(60))
	for _, name := range exp.Outputs() {
		col, _ := tr.Column(name)
		fmt.Printf("%-6s %s\n", name, viz.Sparkline(col, 50, cfg.High()))
	}

	if showPlot {
		plot, err := viz.Plot(tr, exp.Outputs(), 80, 10)
		if err != nil {
			return err
		}
		fmt.Print(plot)
	}
	return nil
}

func optimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "counter")
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("generations") {
		cfg.Optimize.Generations = generations
	}
	if flags.Changed("population") {
		cfg.Optimize.Population = population
	}
	if flags.Changed("workers") {
		cfg.Optimize.Workers = workers
	}

	eval, err := experiment.NewEvaluator(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	switch method {
	case "grid":
		return gridSearch(ctx, cfg, eval)
	case "ga":
		return geneticSearch(ctx, cfg, eval)
	default:
		return fmt.Errorf("unknown method: %s (available: ga, grid)", method)
	}
}

func gridSearch(ctx context.Context, cfg *config.Config, eval *optim.Evaluator) error {
	pools := cfg.Optimize.Pools
	search := optim.NewGridSearch(
		[]string{"cell_kd", "cell_n", "conn_kd", "conn_n"},
		[][]float64{pools.CellKds, pools.CellNs, pools.ConnKds, pools.ConnNs},
	)

	fmt.Printf("grid search over %s counter configurations...\n",
		humanize.Comma(int64(len(pools.CellKds)*len(pools.CellNs)*len(pools.ConnKds)*len(pools.ConnNs))))
	best, score, err := search.Search(ctx, eval.Objective())
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("best fitness", fmt.Sprintf("%.4f", score)))
	for _, name := range sortedKeys(best) {
		fmt.Printf("  %s\n", viz.Metric(name, fmt.Sprintf("%g", best[name])))
	}
	return nil
}

func geneticSearch(ctx context.Context, cfg *config.Config, eval *optim.Evaluator) error {
	space := cfg.Space()
	if err := space.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	histEnv := env
	histEnv.DataDir = dataDir
	history := optim.NewHistory(histEnv.HistoryPath())
	if err := history.Init(ctx); err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer history.Close()

	// The progress view owns the terminal, so the per-generation log is only
	// written when stdout is not one.
	interactive := isatty.IsTerminal(os.Stdout.Fd())
	var prog *tea.Program
	opts := []optim.GAOption{optim.WithHistory(history)}
	if interactive {
		opts = append(opts, optim.WithProgress(func(p optim.Progress) {
			prog.Send(viz.GenerationMsg{
				Generation:  p.Generation,
				Generations: p.Generations,
				Best:        p.Best.Fitness,
				Evaluations: p.Evaluations,
			})
		}))
	} else {
		opts = append(opts, optim.WithLogger(logger))
	}

	ga, err := optim.NewGA(cfg.GAConfig(), space.Bounds(), eval.Genome(space), opts...)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("optimizing depth-%d counter, run %s", cfg.Depth, ga.RunID())
	var best optim.Individual
	if interactive {
		prog = tea.NewProgram(viz.NewSearch(title))
		best, err = runWithProgress(ctx, ga, prog)
	} else {
		fmt.Println(title)
		best, err = ga.Run(ctx)
	}
	if err != nil {
		return err
	}

	params, err := space.Decode(best.Genes)
	if err != nil {
		return err
	}
	fmt.Println(viz.Metric("best fitness", fmt.Sprintf("%.4f", best.Fitness)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(params)
}

// runWithProgress runs ga in the background while prog renders it. Quitting
// the view cancels the search and waits for it to stop.
func runWithProgress(ctx context.Context, ga *optim.GA, prog *tea.Program) (optim.Individual, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		best optim.Individual
		err  error
	}
	done := make(chan result, 1)
	go func() {
		best, err := ga.Run(ctx)
		prog.Send(viz.DoneMsg{Err: err})
		done <- result{best, err}
	}()

	final, err := prog.Run()
	if err != nil {
		cancel()
		<-done
		return optim.Individual{}, err
	}
	if m, ok := final.(viz.Search); ok && m.Cancelled() {
		cancel()
	}
	r := <-done
	return r.best, r.err
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

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "CIRCUIT", "PRESET", "CREATED", "SEGMENTS", "SAMPLES", "INTEG")
	for _, run := range runs {
		table.AddRow(
			run.ID,
			run.Circuit,
			run.Preset,
			humanize.Time(run.Timestamp),
			run.Segments,
			run.Samples,
			run.Integrator,
		)
	}
	fmt.Println(table)
	return nil
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, tr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("circuit: %s\n", meta.Circuit)
	fmt.Printf("samples: %s\n\n", humanize.Comma(int64(tr.Len())))

	plot, err := viz.Plot(tr, species, width, height)
	if err != nil {
		return err
	}
	fmt.Print(plot)
	return nil
}

func timelineRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.TitleStyle.Render(fmt.Sprintf("%s (%s)", meta.ID, meta.Circuit)))
	out, err := viz.Timeline(tr, species, circuits.DefaultHigh)
	if err != nil {
		return err
	}
	fmt.Print(out)
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

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.EncodeJSON(os.Stdout, *meta, tr)
}

func describeCircuit(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	c, err := reg.GetCircuit(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(reg.ListCircuits(), ", "))
	}
	net, err := c.Build(depth, circuits.CounterParams{})
	if err != nil {
		return err
	}

	fmt.Println(viz.TitleStyle.Render(fmt.Sprintf("%s: %s", args[0], c.Description)))

	table := uitable.New()
	table.AddRow("SPECIES", "KIND", "DECAY")
	for _, s := range net.SpeciesInfo() {
		kind := "regulated"
		if s.Input {
			kind = "input"
		}
		table.AddRow(s.Name, kind, s.Decay)
	}
	fmt.Println(table)
	fmt.Println()

	genes := uitable.New()
	genes.MaxColWidth = 60
	genes.Wrap = true
	genes.AddRow("GENE", "LOGIC", "REGULATORS", "OUTPUTS")
	for i, g := range net.Genes() {
		regs := make([]string, len(g.Regulators))
		for j, r := range g.Regulators {
			sign := "+"
			if r.Sign == grn.Repressor {
				sign = "-"
			}
			regs[j] = sign + r.Species
		}
		genes.AddRow(i, g.Logic, strings.Join(regs, " "), strings.Join(g.Outputs, " "))
	}
	fmt.Println(genes)

	loops, err := net.FeedbackLoops()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Metric("feedback loops", humanize.Comma(int64(len(loops)))))
	for _, loop := range loops {
		fmt.Printf("  %s\n", strings.Join(loop, " <-> "))
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	table := uitable.New()
	table.AddRow("INTEGRATOR", "OUTPUT", "FINAL", "FITNESS", "TIME")
	var failures []string

	for _, name := range args[1:] {
		run := *cfg
		run.Integrator = name

		exp := experiment.New(&run, experiment.NewRegistry())
		if err := exp.Setup(); err != nil {
			table.AddRow(name, "error", "-", "-", "-")
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		start := time.Now()
		tr, err := exp.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			table.AddRow(name, "error", "-", "-", elapsed.Round(time.Millisecond))
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		metrics, err := exp.Metrics(tr)
		if err != nil {
			return err
		}
		fitness := "-"
		if f, ok := metrics["fitness"]; ok {
			fitness = fmt.Sprintf("%.4f", f)
		}
		outputs := exp.Outputs()
		last := outputs[len(outputs)-1]
		table.AddRow(name, last, fmt.Sprintf("%.6f", metrics["final."+last]), fitness, elapsed.Round(time.Millisecond))
	}

	fmt.Printf("comparing integrators for %s (segment duration=%g)\n\n", cfg.Circuit, cfg.Duration)
	fmt.Println(table)
	for _, f := range failures {
		fmt.Println(viz.ErrorStyle.Render(f))
	}
	return nil
}

func listTrials(cmd *cobra.Command, args []string) error {
	histEnv := env
	histEnv.DataDir = dataDir
	history := optim.NewHistory(histEnv.HistoryPath())
	ctx := context.Background()
	if err := history.Init(ctx); err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer history.Close()

	if len(args) == 0 {
		runs, err := history.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no optimization runs found")
			return nil
		}
		table := uitable.New()
		table.AddRow("RUN", "STARTED", "GENERATIONS", "TRIALS", "BEST")
		for _, r := range runs {
			table.AddRow(r.RunID, humanize.Time(r.StartedAt), r.Generations, humanize.Comma(int64(r.Trials)), fmt.Sprintf("%.4f", r.Best))
		}
		fmt.Println(table)
		return nil
	}

	trials, err := history.Best(ctx, args[0], limit)
	if err != nil {
		return err
	}
	table := uitable.New()
	table.AddRow("GENERATION", "FITNESS", "GENES")
	for _, t := range trials {
		table.AddRow(t.Generation, fmt.Sprintf("%.4f", t.Fitness), fmt.Sprint(t.Genes))
	}
	fmt.Println(table)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
