/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Smart Energy Management System. Provides
single-shot and interactive inference, response-surface and membership-curve reports, and
rule-base inspection, with configuration from flags, files and SEMS_ environment variables.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/sems-fuzzy/cmd/sems/commands"
	"github.com/kleascm/sems-fuzzy/pkg/reporting"
	"github.com/kleascm/sems-fuzzy/pkg/surface"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	rulesFile  string
	outputDir  string

	// Logging configuration
	logLevel    string
	logDir      string
	logFormat   string
	logMaxFiles int
	logCompress bool

	// Report configuration
	reportTitle      string
	reportFormat     string
	reportScreenshot bool
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "sems",
		Short: "Smart Energy Management System - fuzzy cooling and lighting control",
		Long: `SEMS recommends an air conditioner's cooling capacity and the indoor light intensity
from room temperature, time of day, outdoor light and room size, using a Mamdani fuzzy
inference engine over a 49-rule base. Rule bases can also be loaded from YAML files.`,
		Version:      reporting.Version,
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "Rule-base YAML file (default: built-in SEMS rule base)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "./sems_output", "Directory for saved results and reports")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory (empty for console only)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "events", "Log format (text, json, custom, events)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress old log files")

	// Add report flags
	rootCmd.PersistentFlags().StringVar(&reportTitle, "title", "", "Report title")
	rootCmd.PersistentFlags().StringVar(&reportFormat, "format", "html", "Report format (html, json, both)")
	rootCmd.PersistentFlags().BoolVar(&reportScreenshot, "screenshot", false, "Also capture a PNG of HTML reports with headless Chrome")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("rules_file", rootCmd.PersistentFlags().Lookup("rules"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))
	viper.BindPFlag("report.title", rootCmd.PersistentFlags().Lookup("title"))
	viper.BindPFlag("report.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("report.screenshot", rootCmd.PersistentFlags().Lookup("screenshot"))

	// Add compute command
	computeCmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute cooling capacity and indoor light for one set of conditions",
		Long: `Compute the outputs for the given inputs. Inputs come from the per-input flags,
repeated --input name=value assignments, the inputs section of the configuration file or
SEMS_INPUTS_<NAME> environment variables. Values outside their limits are rejected unless
--clamp is given, in which case the engine clamps them to the variable's universe.`,
		RunE: commands.RunCompute,
	}

	computeCmd.Flags().Float64("temperature", 0, "Temperature (20-40 °C)")
	computeCmd.Flags().Float64("time", 0, "Time of day (0-24 hours)")
	computeCmd.Flags().Float64("light", 0, "Outdoor light intensity (0-100 klux)")
	computeCmd.Flags().Float64("size", 0, "Room size (0-500 square meters)")
	computeCmd.Flags().StringToString("input", map[string]string{}, "Input assignment name=value (repeatable)")
	computeCmd.Flags().Bool("clamp", false, "Clamp out-of-range inputs instead of rejecting them")
	computeCmd.Flags().Bool("json", false, "Print the result as JSON")
	computeCmd.Flags().Bool("save", false, "Save the result under the output directory")
	computeCmd.Flags().Bool("report", false, "Write a report of the computation")

	// Bind compute flags to viper
	viper.BindPFlag("inputs.temperature", computeCmd.Flags().Lookup("temperature"))
	viper.BindPFlag("inputs.timeOfDay", computeCmd.Flags().Lookup("time"))
	viper.BindPFlag("inputs.outdoorLight", computeCmd.Flags().Lookup("light"))
	viper.BindPFlag("inputs.roomSize", computeCmd.Flags().Lookup("size"))
	viper.BindPFlag("compute.clamp", computeCmd.Flags().Lookup("clamp"))
	viper.BindPFlag("compute.json", computeCmd.Flags().Lookup("json"))
	viper.BindPFlag("compute.save", computeCmd.Flags().Lookup("save"))
	viper.BindPFlag("compute.report", computeCmd.Flags().Lookup("report"))

	rootCmd.AddCommand(computeCmd)

	// Add interactive command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "interactive",
		Short: "Prompt for room conditions and show recommendations",
		Long: `Run the interactive session: enter the room conditions, see the recommended cooling
capacity and indoor light intensity, optionally write membership-curve and 3D surface
reports, and go again.`,
		RunE: commands.RunInteractive,
	})

	// Add surface command
	surfaceCmd := &cobra.Command{
		Use:   "surface",
		Short: "Sweep two inputs and report the response surface",
		Long: `Sweep two inputs across their limits with the others held fixed and report how the
outputs respond. Points that cannot be computed are counted and left blank.`,
		RunE: commands.RunSurface,
	}

	surfaceCmd.Flags().String("x", "", "Input swept along the x-axis (required)")
	surfaceCmd.Flags().String("y", "", "Input swept along the y-axis (required)")
	surfaceCmd.Flags().StringToString("fixed", map[string]string{}, "Value of a held input name=value (repeatable)")
	surfaceCmd.Flags().StringSlice("outputs", []string{}, "Outputs to plot (default: all)")
	surfaceCmd.Flags().Int("steps", surface.DefaultSteps, "Samples per axis")
	surfaceCmd.Flags().Int("workers", 0, "Rows computed in parallel (0 = number of CPUs)")
	surfaceCmd.Flags().Bool("save", false, "Save the surface data under the output directory")

	surfaceCmd.MarkFlagRequired("x")
	surfaceCmd.MarkFlagRequired("y")

	viper.BindPFlag("surface.x", surfaceCmd.Flags().Lookup("x"))
	viper.BindPFlag("surface.y", surfaceCmd.Flags().Lookup("y"))
	viper.BindPFlag("surface.outputs", surfaceCmd.Flags().Lookup("outputs"))
	viper.BindPFlag("surface.steps", surfaceCmd.Flags().Lookup("steps"))
	viper.BindPFlag("surface.workers", surfaceCmd.Flags().Lookup("workers"))
	viper.BindPFlag("surface.save", surfaceCmd.Flags().Lookup("save"))

	rootCmd.AddCommand(surfaceCmd)

	// Add curves command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "curves",
		Short: "Report the membership curves of every variable",
		RunE:  commands.RunCurves,
	})

	// Add rules command
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the variables and rules of the rule base",
		RunE:  commands.ListRules,
	}
	rulesCmd.Flags().Bool("yaml", false, "Print the rule base as YAML")
	viper.BindPFlag("rules.yaml", rulesCmd.Flags().Lookup("yaml"))
	rootCmd.AddCommand(rulesCmd)

	// Add check command for rule-base validation
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check [rule-base.yaml...]",
		Short: "Validate rule-base files",
		Long: `Parse and build rule-base files, reporting every problem found. Without arguments
the configured rule base, or the built-in SEMS rule base, is checked. Useful in CI.`,
		RunE: commands.CheckRuleBase,
	})

	// Add logs command
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Summarize the log directory",
		RunE:  commands.ShowLogs,
	}
	logsCmd.Flags().Bool("cleanup", false, "Apply retention and compression before summarizing")
	viper.BindPFlag("logs.cleanup", logsCmd.Flags().Lookup("cleanup"))
	rootCmd.AddCommand(logsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
