package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sensor-sim/sensor-sim/sim"
)

var (
	// Inputs
	configPath   string // Run config YAML (optional)
	scenarioPath string // Replay scenario YAML
	networkPath  string // Network description YAML, overrides the scenario's
	logLevel     string // Log verbosity level

	// Run config overrides, applied only when set on the command line
	totalSteps         int64    // Loop length in ticks
	collectionInterval int64    // Ticks between feature collections
	capacity           int      // Feature store rows
	seed               int64    // Seed for module randomness
	traceLevel         string   // Run trace verbosity
	strategyName       string   // Cost strategy
	threshold          float64  // Edge threshold
	selfLoops          bool     // Keep graph diagonal
	progressInterval   int64    // Progress module trigger, 0 = off
	flowInterval       int64    // Flow control trigger, 0 = off
	seriesSensors      []string // Sensors reported after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sensor-sim",
	Short: "Sensor graph builder and feature collector for road-traffic simulations",
}

// runCmd replays a scenario through the full pipeline
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the sensor graph and collect features over a replayed run",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		eng, net, err := loadInputs(scenarioPath, networkPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		p, err := NewPipeline(cfg, eng, net)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := p.Run(); err != nil {
			logrus.Fatalf("run failed: %v", err)
		}
		p.Report(os.Stdout)
		logrus.Info("Run complete.")
	},
}

// graphCmd builds the sensor graph only and prints its edges
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the sensor graph and print its edge list",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		eng, net, err := loadInputs(scenarioPath, networkPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		p, err := NewPipeline(cfg, eng, net)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		PrintGraph(os.Stdout, p.Graph)
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveConfig loads the run config file (or defaults) and applies every
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*sim.RunConfig, error) {
	cfg := sim.DefaultRunConfig()
	if configPath != "" {
		loaded, err := sim.LoadRunConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.TotalSteps = totalSteps
	}
	if flags.Changed("interval") {
		cfg.CollectionInterval = collectionInterval
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = traceLevel
	}
	if flags.Changed("strategy") {
		cfg.Topology.Strategy = strategyName
	}
	if flags.Changed("threshold") {
		cfg.Topology.Threshold = threshold
	}
	if flags.Changed("self-loops") {
		cfg.Topology.SelfLoops = selfLoops
	}
	if flags.Changed("progress-interval") {
		cfg.Modules.ProgressInterval = progressInterval
	}
	if flags.Changed("flow-interval") {
		cfg.Modules.FlowControlInterval = flowInterval
	}
	if flags.Changed("series") {
		cfg.Modules.SeriesSensors = seriesSensors
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	if rows := cfg.ExpectedRows(); rows > int64(cfg.Capacity) {
		logrus.Warnf("run collects %d rows but capacity is %d; the run will fail when the store is full", rows, cfg.Capacity)
	}
	return &cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Run config YAML")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Replay scenario YAML (required)")
	cmd.Flags().StringVar(&networkPath, "network", "", "Network description YAML (default: the scenario's network)")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	_ = cmd.MarkFlagRequired("scenario")

	def := sim.DefaultRunConfig()
	cmd.Flags().StringVar(&strategyName, "strategy", def.Topology.Strategy, fmt.Sprintf("Cost strategy (%v)", sim.CostStrategyNames()))
	cmd.Flags().Float64Var(&threshold, "threshold", def.Topology.Threshold, "Edge threshold: seconds for shortest-path, network units for geometric")
	cmd.Flags().BoolVar(&selfLoops, "self-loops", def.Topology.SelfLoops, "Keep sensor self-loops in the graph")
}

func registerRunFlags(cmd *cobra.Command) {
	def := sim.DefaultRunConfig()
	cmd.Flags().Int64Var(&totalSteps, "steps", def.TotalSteps, "Total engine ticks")
	cmd.Flags().Int64Var(&collectionInterval, "interval", def.CollectionInterval, "Ticks between feature collections")
	cmd.Flags().IntVar(&capacity, "capacity", def.Capacity, "Feature store rows")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "Seed for module randomness")
	cmd.Flags().StringVar(&traceLevel, "trace", def.TraceLevel, "Trace level (none, events)")
	cmd.Flags().Int64Var(&progressInterval, "progress-interval", 0, "Progress report interval in ticks (0 = off)")
	cmd.Flags().Int64Var(&flowInterval, "flow-interval", 0, "Flow control interval in ticks (0 = off)")
	cmd.Flags().StringSliceVar(&seriesSensors, "series", nil, "Sensors whose speed series is printed after the run")
}

// init sets up CLI flags and subcommands
func init() {
	registerInputFlags(runCmd)
	registerRunFlags(runCmd)
	registerInputFlags(graphCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
}
