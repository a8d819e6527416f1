package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/scenario"
	"github.com/san-kum/reactorsim/internal/server"
	"github.com/san-kum/reactorsim/internal/tui"
)

var (
	dataDir      string
	dt           float64
	duration     float64
	policyName   string
	policyTarget float64
	rods         float64
	pump         float64
	pitch        float64
	genLoad      float64
	gridLoad     float64
	configFile   string
	scenarioFile string
	preset       string
	// Live view
	frameRate int
	// Server
	addr     string
	interval time.Duration
	// Export
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactorsim",
		Short: "discrete-time reactor simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reactorsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and record it",
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep seconds")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration seconds")
	runCmd.Flags().StringVar(&policyName, "policy", "none", "control policy")
	runCmd.Flags().Float64Var(&policyTarget, "target", config.DefaultTarget, "policy target temperature")
	runCmd.Flags().Float64Var(&rods, "rods", -1, "initial control rod insertion percent")
	runCmd.Flags().Float64Var(&pump, "pump", -1, "initial pump power percent")
	runCmd.Flags().Float64Var(&pitch, "pitch", -1, "initial turbine pitch percent")
	runCmd.Flags().Float64Var(&genLoad, "gen", -1, "initial generator load percent")
	runCmd.Flags().Float64Var(&gridLoad, "demand", -1, "initial grid demand")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scripted scenario file (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive operator console",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().IntVar(&frameRate, "fps", 10, "simulation ticks per second")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "expose a reactor over websocket telemetry",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8414", "listen address")
	serveCmd.Flags().DurationVar(&interval, "interval", time.Second, "wall-clock tick interval")
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	serveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run's core temperature",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run telemetry as JSONL (zstd when writing a file)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output path (.jsonl.zst); stdout when empty")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then flags, in increasing
// precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = policyName
	}
	if cmd.Flags().Changed("target") {
		if cfg.PolicyParams == nil {
			cfg.PolicyParams = map[string]float64{}
		}
		cfg.PolicyParams["target"] = policyTarget
	}
	setControl := func(flag string, dst **float64, v float64) {
		if cmd.Flags().Changed(flag) {
			val := v
			*dst = &val
		}
	}
	setControl("rods", &cfg.Controls.ControlRods, rods)
	setControl("pump", &cfg.Controls.PumpPower, pump)
	setControl("pitch", &cfg.Controls.TurbinePitch, pitch)
	setControl("gen", &cfg.Controls.GeneratorLoad, genLoad)
	setControl("demand", &cfg.Controls.GridLoad, gridLoad)

	return cfg, nil
}

// toScenario wraps a plain run config as a single-step scenario so the same
// runner drives both paths.
func toScenario(cfg *config.Config, name string) *scenario.Scenario {
	set := map[string]float64{}
	add := func(key string, v *float64) {
		if v != nil {
			set[key] = *v
		}
	}
	add("control_rods", cfg.Controls.ControlRods)
	add("pump_power", cfg.Controls.PumpPower)
	add("turbine_pitch", cfg.Controls.TurbinePitch)
	add("generator_load", cfg.Controls.GeneratorLoad)
	add("grid_load", cfg.Controls.GridLoad)

	sc := &scenario.Scenario{
		Name:         name,
		Reactor:      cfg.Reactor,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Policy:       cfg.Policy,
		PolicyParams: cfg.PolicyParams,
	}
	if len(set) > 0 {
		sc.Steps = []scenario.Step{{At: 0, Set: set}}
	}
	return sc
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var sc *scenario.Scenario
	if scenarioFile != "" {
		loaded, err := scenario.Load(scenarioFile)
		if err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}
		sc = loaded
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		name := preset
		if name == "" {
			name = "manual"
		}
		sc = toScenario(cfg, name)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	store, err := history.Open(filepath.Join(dataDir, "runs.db"), nil)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()

	result, err := scenario.Run(context.Background(), sc)
	if err != nil {
		return err
	}

	runID, err := store.CreateRun(sc.Name, sc.Dt, sc.Duration, sc.Policy)
	if err != nil {
		return err
	}
	if err := store.RecordTicks(runID, result.States); err != nil {
		return err
	}
	for _, ev := range result.Events {
		store.RecordEvent(runID, ev)
	}
	if err := store.FinishRun(runID, result.Final); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.States))
	printFinal(result.Final)
	for _, ev := range result.Events {
		fmt.Printf("  t=%-8.1f %-6s %s\n", ev.Time, ev.Topic, ev.Message)
	}
	return nil
}

func printFinal(s reactor.State) {
	fmt.Println("\nfinal state:")
	fmt.Printf("  core temp:   %.2f\n", s.CoreTemp)
	fmt.Printf("  power:       %.0f\n", s.ReactorPower)
	fmt.Printf("  pressure:    %.2f\n", s.Pressure)
	fmt.Printf("  turbine:     %.0f rpm\n", s.TurbineRPM)
	fmt.Printf("  grid:        %.0f @ %.0fV\n", s.GridLoad, s.GridVoltage)
	fmt.Printf("  scrammed:    %v\n", s.Scrammed)
	fmt.Printf("  meltdown:    %v\n", s.Meltdown)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := reactor.New(cfg.Reactor)
	cfg.Controls.Apply(r)
	return tui.Run(r, frameRate)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r := reactor.New(cfg.Reactor)
	cfg.Controls.Apply(r)
	core := server.NewCore(r, interval, logger)
	srv := server.NewServer(core, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go core.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", srv.Handler())

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving telemetry", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := history.Open(filepath.Join(dataDir, "runs.db"), nil)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDT\tDURATION\tPOLICY\tOUTCOME")
	for _, m := range runs {
		outcome := "ok"
		switch {
		case m.Meltdown:
			outcome = "meltdown"
		case m.Scrammed:
			outcome = "scrammed"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.0f\t%s\t%s\n",
			m.ID, m.StartedAt.Format(time.RFC3339), m.Dt, m.Duration, m.Policy, outcome)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open(filepath.Join(dataDir, "runs.db"), nil)
	if err != nil {
		return err
	}
	defer store.Close()

	ticks, err := store.Ticks(args[0])
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no telemetry for run %s", args[0])
	}

	temps := make([]float64, len(ticks))
	pressures := make([]float64, len(ticks))
	for i, tr := range ticks {
		temps[i] = tr.CoreTemp
		pressures[i] = tr.Pressure
	}

	fmt.Println(asciigraph.Plot(temps, asciigraph.Height(12), asciigraph.Width(80),
		asciigraph.Caption("core temp")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(pressures, asciigraph.Height(12), asciigraph.Width(80),
		asciigraph.Caption("pressure")))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open(filepath.Join(dataDir, "runs.db"), nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if outFile == "" {
		return store.ExportJSONL(args[0], os.Stdout)
	}
	if err := store.ExportCompressed(args[0], outFile); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}
