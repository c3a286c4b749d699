package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/gtfs"
	"github.com/theoremus-urban-solutions/transit-network-mapper/logging"
	"github.com/theoremus-urban-solutions/transit-network-mapper/mapper"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
)

var (
	networkFile    string
	scheduleFile   string
	gtfsFile       string
	outputSchedule string
	outputNetwork  string
	outputReport   string
	streetNetwork  string
	configFile     string
	generateConfig bool
	verbose        bool
	threads        int
	logFormat      string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "transit-network-mapper",
		Short: "Maps public transit schedules onto multimodal networks",
		Long: `Maps every transit route of a schedule onto a concrete link sequence
through a multimodal network. Input is a MATSim transit schedule or a
GTFS feed plus a MATSim network; output is the mapped schedule, the
adjusted network and a mapping report.

Examples:
  transit-network-mapper -n network.xml -s schedule.xml
  transit-network-mapper -n network.xml -g feed.zip --config mapper.yaml
  transit-network-mapper -n network.xml -s schedule.xml --report report.json`,
		RunE: mapCommand,
	}

	rootCmd.Flags().StringVarP(&networkFile, "network", "n", "", "Input network XML file (required)")
	rootCmd.Flags().StringVarP(&scheduleFile, "schedule", "s", "", "Input transit schedule XML file")
	rootCmd.Flags().StringVarP(&gtfsFile, "gtfs", "g", "", "Input GTFS feed (zip or directory), alternative to --schedule")
	rootCmd.Flags().StringVar(&outputSchedule, "out-schedule", "", "Output schedule file (default: from config)")
	rootCmd.Flags().StringVar(&outputNetwork, "out-network", "", "Output network file (default: from config)")
	rootCmd.Flags().StringVar(&outputReport, "report", "", "Write the mapping report as JSON to this file")
	rootCmd.Flags().StringVar(&streetNetwork, "street-network", "", "Write a street-only network subset to this file")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&generateConfig, "generate-config", false, "Generate default configuration file and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().IntVar(&threads, "threads", 0, "Worker count override (0 = use config)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default: from config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func mapCommand(cmd *cobra.Command, args []string) error {
	if generateConfig {
		path := configFile
		if path == "" {
			path = "mapper-config.yaml"
		}
		if err := config.DefaultConfig().SaveConfig(path); err != nil {
			return err
		}
		fmt.Printf("Default configuration written to %s\n", path)
		return nil
	}

	if networkFile == "" {
		return fmt.Errorf("network file is required (use -n)")
	}
	if (scheduleFile == "") == (gtfsFile == "") {
		return fmt.Errorf("exactly one of --schedule and --gtfs is required")
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if threads > 0 {
		cfg.Mapper.NThreads = threads
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if outputSchedule != "" {
		cfg.Output.ScheduleFile = outputSchedule
	}
	if outputNetwork != "" {
		cfg.Output.NetworkFile = outputNetwork
	}
	if outputReport != "" {
		cfg.Output.ReportFile = outputReport
	}
	if streetNetwork != "" {
		cfg.Output.StreetNetworkFile = streetNetwork
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	net, err := network.ReadFile(networkFile)
	if err != nil {
		return err
	}

	var s *schedule.Schedule
	var shapes map[string]*geometry.Shape
	if gtfsFile != "" {
		s, shapes, err = gtfs.LoadFile(gtfsFile)
	} else {
		s, err = schedule.ReadFile(scheduleFile)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := mapper.DefaultOptions().
		WithConfig(cfg).
		WithShapes(shapes).
		WithLogger(log).
		WithVerbose(verbose)

	result, err := mapper.MapSchedule(ctx, s, net, opts)
	if err != nil {
		return err
	}

	if err := schedule.WriteFile(s, cfg.Output.ScheduleFile); err != nil {
		return err
	}
	if err := network.WriteFile(net, cfg.Output.NetworkFile); err != nil {
		return err
	}
	if cfg.Output.StreetNetworkFile != "" {
		street := net.FilterByModes(cfg.Output.StreetModes)
		if err := network.WriteFile(street, cfg.Output.StreetNetworkFile); err != nil {
			return err
		}
	}
	if cfg.Output.ReportFile != "" {
		if err := result.WriteJSONFile(cfg.Output.ReportFile); err != nil {
			return err
		}
	}

	fmt.Println(result.Summary())
	return nil
}
