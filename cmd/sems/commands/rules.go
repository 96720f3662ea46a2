/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rules.go
Description: Rule-base commands: list the rules of the loaded rule base, validate rule-base
files, and summarize the log directory.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/kleascm/sems-fuzzy/pkg/logging"
	"github.com/kleascm/sems-fuzzy/pkg/rulebase"
	"github.com/kleascm/sems-fuzzy/pkg/sems"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ListRules prints the variables and rules of the loaded rule base
func ListRules(cmd *cobra.Command, args []string) error {
	ws, err := setup()
	if err != nil {
		return err
	}
	defer ws.close()

	if viper.GetBool("rules.yaml") {
		return ws.writeDocument(os.Stdout)
	}
	ws.printRules(os.Stdout)
	return nil
}

func (ws *workspace) printRules(w io.Writer) {
	fmt.Fprintf(w, "Rule base: %s\n\n", ws.source)
	fmt.Fprintln(w, "Inputs:")
	for _, r := range ws.ranges {
		v, _ := ws.engine.Antecedent(r.Name)
		fmt.Fprintf(w, "  %-16s %g-%g %-14s %v\n", r.Name, r.Min, r.Max, r.Unit, v.Labels())
	}
	fmt.Fprintln(w, "Outputs:")
	for _, name := range ws.engine.Consequents() {
		v, _ := ws.engine.Consequent(name)
		u := v.Universe()
		fmt.Fprintf(w, "  %-16s %g-%g %-14s %v\n", name, u.Min(), u.Max(), ws.units[name], v.Labels())
	}

	fmt.Fprintf(w, "\nRules (%d):\n", ws.engine.RuleCount())
	for i, rule := range ws.engine.Rules() {
		fmt.Fprintf(w, "%3d. %-16s %s\n", i+1, rule.Name, rule.String())
	}
}

// writeDocument prints the rule base as YAML
func (ws *workspace) writeDocument(w io.Writer) error {
	if ws.source == embeddedSource {
		_, err := w.Write(sems.Document())
		return err
	}
	def, err := rulebase.Load(ws.source)
	if err != nil {
		return err
	}
	data, err := def.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// CheckRuleBase validates rule-base files, or the configured rule base when none are given
func CheckRuleBase(cmd *cobra.Command, args []string) error {
	fmt.Println("SEMS - Rule Base Check")
	fmt.Println("======================")
	fmt.Println()

	if len(args) == 0 {
		if path := viper.GetString("rules_file"); path != "" {
			args = []string{path}
		}
	}

	failed := 0
	if len(args) == 0 {
		summary, err := checkDocument(sems.Document())
		failed += reportCheck(os.Stdout, embeddedSource, summary, err)
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			failed += reportCheck(os.Stdout, path, nil, err)
			continue
		}
		summary, err := checkDocument(data)
		failed += reportCheck(os.Stdout, path, summary, err)
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d rule base(s) failed validation", failed)
	}
	fmt.Println("All rule bases are valid.")
	return nil
}

// checkSummary describes a rule base that built successfully
type checkSummary struct {
	name        string
	antecedents int
	consequents int
	rules       int
}

// checkDocument parses and builds a rule-base document
func checkDocument(data []byte) (*checkSummary, error) {
	def, err := rulebase.Parse(data)
	if err != nil {
		return nil, err
	}
	engine, err := def.Build()
	if err != nil {
		return nil, err
	}
	return &checkSummary{
		name:        def.Name,
		antecedents: len(engine.Antecedents()),
		consequents: len(engine.Consequents()),
		rules:       engine.RuleCount(),
	}, nil
}

// reportCheck prints one check result and returns 1 if it failed
func reportCheck(w io.Writer, source string, summary *checkSummary, err error) int {
	if err != nil {
		fmt.Fprintf(w, "FAILED %s\n", source)
		for _, line := range flatten(err) {
			fmt.Fprintf(w, "  - %s\n", line)
		}
		return 1
	}
	fmt.Fprintf(w, "PASSED %s (%s: %d inputs, %d outputs, %d rules)\n",
		source, summary.name, summary.antecedents, summary.consequents, summary.rules)
	return 0
}

// flatten lists the messages of a joined error, one per problem
func flatten(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var lines []string
		for _, e := range joined.Unwrap() {
			lines = append(lines, flatten(e)...)
		}
		return lines
	}
	return []string{err.Error()}
}

// ShowLogs prints statistics and an event summary of the log directory
func ShowLogs(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	dir := viper.GetString("log_dir")
	if dir == "" {
		return fmt.Errorf("no log directory configured")
	}
	manager := logging.NewLogManager(dir, viper.GetInt("log_max_files"), viper.GetBool("log_compress"))

	if viper.GetBool("logs.cleanup") {
		if err := manager.CleanupOldLogs(); err != nil {
			return err
		}
	}

	stats, err := manager.GetLogStats()
	if err != nil {
		return err
	}
	fmt.Printf("Log directory: %s\n", dir)
	fmt.Printf("Files: %d (%d compressed), %d bytes\n", stats.TotalFiles, stats.CompressedFiles, stats.TotalSize)
	if stats.TotalFiles == 0 {
		return nil
	}

	analysis, err := manager.AnalyzeLogs()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(analysis.GetLogSummary())
	return nil
}
