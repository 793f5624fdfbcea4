package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mkalland/simworld/internal/config"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/scene"
	"github.com/mkalland/simworld/internal/viewer"
	"github.com/mkalland/simworld/internal/viz"
	"github.com/mkalland/simworld/internal/world"

	_ "github.com/mkalland/simworld/internal/collision"
	_ "github.com/mkalland/simworld/internal/controllers"
	_ "github.com/mkalland/simworld/internal/modules"
	_ "github.com/mkalland/simworld/internal/physics"
)

var (
	step       float64
	duration   float64
	realTime   bool
	checker    string
	engine     string
	track      string
	live       bool
	serve      string
	configFile string
	preset     string
	steps      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simworld",
		Short: "robot simulation world coordinator",
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "timestep in seconds")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().BoolVar(&realTime, "real-time", false, "pace steps against the wall clock")
	runCmd.Flags().StringVar(&checker, "checker", config.DefaultChecker, "collision checker type")
	runCmd.Flags().StringVar(&engine, "engine", config.DefaultEngine, "physics engine type")
	runCmd.Flags().StringVar(&track, "track", "", "body to track and plot")
	runCmd.Flags().BoolVar(&live, "live", false, "show the live terminal view")
	runCmd.Flags().StringVar(&serve, "serve", "", "serve body states on a websocket address")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	stepCmd := &cobra.Command{
		Use:   "step [scene]",
		Short: "advance a scene by a fixed number of steps and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  stepScene,
	}
	stepCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "timestep in seconds")
	stepCmd.Flags().IntVar(&steps, "n", 1, "number of steps")
	stepCmd.Flags().StringVar(&checker, "checker", config.DefaultChecker, "collision checker type")
	stepCmd.Flags().StringVar(&engine, "engine", config.DefaultEngine, "physics engine type")

	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "list loaded plugins and the types they provide",
		RunE:  listPlugins,
	}

	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "scene file utilities",
	}
	sceneCheckCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "validate a scene file",
		Args:  cobra.ExactArgs(1),
		RunE:  checkScene,
	}
	sceneConvertCmd := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "parse a scene file and write it back normalized",
		Args:  cobra.ExactArgs(2),
		RunE:  convertScene,
	}
	sceneCmd.AddCommand(sceneCheckCmd, sceneConvertCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, stepCmd, pluginsCmd, sceneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig merges preset, config file and flags, in increasing
// precedence. Flags only override when explicitly set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(names, ", "))
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

	if cmd.Flags().Changed("step") {
		cfg.Step = step
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("real-time") {
		cfg.RealTime = realTime
	}
	if cmd.Flags().Changed("checker") {
		cfg.Checker = checker
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engine
	}
	if cmd.Flags().Changed("track") {
		cfg.Track = track
	}
	if cmd.Flags().Changed("serve") {
		cfg.ViewerAddr = serve
	}
	if len(args) > 0 {
		cfg.Scene = args[0]
	}
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", cfg.Step)
	}
	return cfg, nil
}

// setupEnv builds an environment from cfg: parser, collision checker,
// physics engine, scene and modules.
func setupEnv(cfg *config.Config) (*world.Environment, error) {
	e := world.New()
	e.SetSceneParser(scene.NewParser())

	if cfg.Checker != "" {
		c := e.CreateCollisionChecker(cfg.Checker)
		if c == nil {
			e.Destroy()
			return nil, fmt.Errorf("unknown collision checker: %s", cfg.Checker)
		}
		e.SetCollisionChecker(c)
	}
	if cfg.Engine != "" {
		p := e.CreatePhysicsEngine(cfg.Engine)
		if p == nil {
			e.Destroy()
			return nil, fmt.Errorf("unknown physics engine: %s", cfg.Engine)
		}
		e.SetPhysicsEngine(p)
		p.SetGravity(cfg.Gravity)
	}

	if cfg.Scene != "" {
		if !e.Load(cfg.Scene) {
			e.Destroy()
			return nil, fmt.Errorf("failed to load scene: %s", cfg.Scene)
		}
	}

	for _, m := range cfg.Modules {
		mod := e.CreateModule(m.Type)
		if mod == nil {
			e.Destroy()
			return nil, fmt.Errorf("unknown module: %s", m.Type)
		}
		if code := e.LoadModule(mod, m.Args); code != 0 {
			e.Destroy()
			return nil, fmt.Errorf("module %s refused to load (exit %d)", m.Type, code)
		}
	}
	return e, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	e, err := setupEnv(cfg)
	if err != nil {
		return err
	}
	defer e.Destroy()

	if cmd.Flags().Changed("serve") && cfg.ViewerAddr != "" {
		v := viewer.New(cfg.ViewerAddr)
		if !e.AttachViewer(v) {
			return fmt.Errorf("failed to bind viewer on %s", cfg.ViewerAddr)
		}
		fmt.Printf("serving body states on ws://%s/ws\n", v.Addr())
	}

	if live {
		return viz.Run(e, cfg.Step, cfg.RealTime)
	}

	n := cfg.Steps()
	fmt.Printf("running %d steps of %gs...\n", n, cfg.Step)
	start := time.Now()

	var heights []float64
	for i := 0; i < n; i++ {
		e.StepSimulation(cfg.Step)
		if cfg.RealTime {
			time.Sleep(time.Duration(cfg.Step * float64(time.Second)))
		}
		if cfg.Track != "" {
			if b := e.Body(cfg.Track); b != nil {
				heights = append(heights, b.Pose().Trans[2])
			}
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("sim time: %.3fs\n", float64(e.SimulationTime())/1e6)
	fmt.Printf("bodies: %d (robots: %d)\n", len(e.Bodies()), len(e.Robots()))

	if cfg.Track != "" {
		if len(heights) == 0 {
			return fmt.Errorf("tracked body not found: %s", cfg.Track)
		}
		fmt.Println()
		graph := asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s height (z)", cfg.Track)),
		)
		fmt.Println(graph)
	}
	return nil
}

func stepScene(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	e, err := setupEnv(cfg)
	if err != nil {
		return err
	}
	defer e.Destroy()

	for i := 0; i < steps; i++ {
		e.StepSimulation(cfg.Step)
	}
	e.UpdatePublishedBodies()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tX\tY\tZ\tJOINTS\tENABLED")
	for _, s := range e.PublishedBodies() {
		joints := "-"
		if len(s.JointValues) > 0 {
			vals := make([]string, len(s.JointValues))
			for i, v := range s.JointValues {
				vals[i] = fmt.Sprintf("%.3f", v)
			}
			joints = strings.Join(vals, ",")
		}
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%.3f\t%s\t%v\n",
			s.ID, s.Name, s.Pose.Trans[0], s.Pose.Trans[1], s.Pose.Trans[2], joints, s.Enabled)
	}
	return w.Flush()
}

func listPlugins(cmd *cobra.Command, args []string) error {
	e := world.New()
	defer e.Destroy()

	infos := e.PluginInfo()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLUGIN\tKIND\tTYPES")
	for _, info := range infos {
		for _, kind := range iface.Kinds() {
			types := info.Types[kind]
			if len(types) == 0 {
				continue
			}
			sort.Strings(types)
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, kind, strings.Join(types, ", "))
		}
	}
	return w.Flush()
}

func checkScene(cmd *cobra.Command, args []string) error {
	doc, err := scene.NewParser().ParseFile(args[0], nil)
	if err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	fmt.Printf("ok: %d bodies, %d robots\n", len(doc.Bodies), len(doc.Robots))
	if doc.CheckerType != "" {
		fmt.Printf("checker: %s\n", doc.CheckerType)
	}
	if doc.EngineType != "" {
		fmt.Printf("engine: %s\n", doc.EngineType)
	}
	return nil
}

func convertScene(cmd *cobra.Command, args []string) error {
	p := scene.NewParser()
	doc, err := p.ParseFile(args[0], nil)
	if err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	return p.SerializeFile(args[1], doc)
}
