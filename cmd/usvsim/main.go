package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/usvsim/internal/config"
	"github.com/san-kum/usvsim/internal/export"
	"github.com/san-kum/usvsim/internal/marine"
	"github.com/san-kum/usvsim/internal/metrics"
	"github.com/san-kum/usvsim/internal/sim"
	"github.com/san-kum/usvsim/internal/storage"
	"github.com/san-kum/usvsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	steps      int
	decimation int
	surgeForce float64
	stepDeg    float64
	switchTime float64
	curSpeed   float64
	curDir     float64
	setParams  []string
	frameRate  int
	plotColumn string
	outDir     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "usvsim",
		Short: "closed-loop USV course autopilot simulation",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".usvsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the closed-loop simulation",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "log column to plot (default: course overview)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run's log as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a stored run as a JSON document to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render track and course charts as SVG files",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run and replay the simulation in the terminal",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "step", "scenario preset")
	cmd.Flags().Float64Var(&dt, "dt", 0.02, "sampling interval (s)")
	cmd.Flags().IntVar(&steps, "steps", 2000, "number of steps (runs steps+1 ticks)")
	cmd.Flags().IntVar(&decimation, "decimation", 10, "position fix every Z-th sample")
	cmd.Flags().Float64Var(&surgeForce, "surge", 100.0, "constant surge force command (N)")
	cmd.Flags().Float64Var(&stepDeg, "step-deg", 20.0, "course step amplitude (deg)")
	cmd.Flags().Float64Var(&switchTime, "switch-time", 20.0, "time the setpoint drops back to zero (s)")
	cmd.Flags().Float64Var(&curSpeed, "current-speed", 0.0, "ambient current speed (m/s)")
	cmd.Flags().Float64Var(&curDir, "current-dir", 0.0, "ambient current direction (deg)")
	cmd.Flags().StringArrayVar(&setParams, "set", nil, "vessel parameter override name=value (repeatable)")
}

// buildConfig layers preset, config file, and explicit CLI flags, in
// that order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("decimation") {
		cfg.Decimation = decimation
	}
	if cmd.Flags().Changed("surge") {
		cfg.SurgeForce = surgeForce
	}
	if cmd.Flags().Changed("step-deg") {
		cfg.Setpoint.StepDeg = stepDeg
	}
	if cmd.Flags().Changed("switch-time") {
		cfg.Setpoint.SwitchTime = switchTime
	}
	if cmd.Flags().Changed("current-speed") {
		cfg.Current.Speed = curSpeed
	}
	if cmd.Flags().Changed("current-dir") {
		cfg.Current.DirectionDeg = curDir
	}
	for _, kv := range setParams {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad --set %q, want name=value", kv)
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --set %q: %w", kv, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = val
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, simCfg, err := cfg.BuildRunner()
	if err != nil {
		return err
	}
	runner.AddMetric(metrics.NewCourseRMS())
	runner.AddMetric(metrics.NewControlEffort())

	fmt.Printf("running %s scenario...\n", preset)
	start := time.Now()
	result, err := runner.Run(simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(preset, cfg.Dt, cfg.Steps, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.Log))

	final := sim.StateFromRow(result.Log[len(result.Log)-1])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\nfinal speed\t%.3f m/s\n", sim.SpeedOverGround(final))
	fmt.Fprintf(w, "final course\t%.2f deg\n", marine.Rad2Deg(sim.CourseAngle(final)))
	fmt.Fprintf(w, "final crab angle\t%.2f deg\n", marine.Rad2Deg(sim.CrabAngle(final)))
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.6f\n", name, val)
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3fs\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	log, err := st.LoadLog(args[0])
	if err != nil {
		return err
	}
	if len(log) == 0 {
		return fmt.Errorf("no data to plot")
	}

	result := &sim.Result{Log: log}
	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Scenario)

	if plotColumn != "" {
		col := -1
		for i, name := range sim.Columns() {
			if name == plotColumn {
				col = i
				break
			}
		}
		if col < 0 {
			return fmt.Errorf("unknown column %q (see export-csv header)", plotColumn)
		}
		graph := asciigraph.Plot(result.Series(col),
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(plotColumn+" vs time"),
		)
		fmt.Println(graph)
		return nil
	}

	courseDeg := make([]float64, len(log))
	for i, v := range result.CourseSeries() {
		courseDeg[i] = marine.Rad2Deg(v)
	}
	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{courseDeg, "course angle (deg)"},
		{result.SpeedSeries(), "speed over ground (m/s)"},
		{result.Series(18), "port propeller (rad/s)"},
		{result.Series(19), "starboard propeller (rad/s)"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	path := filepath.Join(dataDir, args[0], "log.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		if _, metaErr := st.Load(args[0]); metaErr != nil {
			return metaErr
		}
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	log, err := st.LoadLog(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(meta, log)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	log, err := st.LoadLog(args[0])
	if err != nil {
		return err
	}
	if len(log) < 2 {
		return fmt.Errorf("no data to export")
	}
	result := &sim.Result{Log: log}

	track := make([]export.Point, len(log))
	for i, row := range log {
		track[i] = export.Point{X: row[1+marine.StateNorth], Y: row[1+marine.StateEast]}
	}

	trackPath := filepath.Join(outDir, args[0]+"_track.svg")
	if err := os.WriteFile(trackPath, []byte(export.TrackSVG(track, 600, 600, "#00ff00")), 0644); err != nil {
		return err
	}

	coursePath := filepath.Join(outDir, args[0]+"_course.svg")
	courseSVG := export.SeriesSVG(result.Times(), result.CourseSeries(), 800, 300, "#00aaff")
	if err := os.WriteFile(coursePath, []byte(courseSVG), 0644); err != nil {
		return err
	}

	fmt.Println(trackPath)
	fmt.Println(coursePath)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	runner, simCfg, err := cfg.BuildRunner()
	if err != nil {
		return err
	}
	rec := viz.NewRecorder(cfg.Steps + 1)
	runner.AddObserver(rec)

	if _, err := runner.Run(simCfg); err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(preset, rec, frameRate))
	_, err = p.Run()
	return err
}
