package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/scenario"
)

var checkCmd = &cobra.Command{
	Use:   "check [file|dir ...]",
	Short: "Run scenario checks",
	Long: `Run the checks of one or more scenario files.

Arguments may be files or directories; directories are searched for
*.yaml and *.yml files. With no arguments the scenario directory from
settings (or --scenario-dir) is used. Exits non-zero if any check fails.

Examples:
  mcoracle check
  mcoracle check scenarios/lag-failover.yaml
  mcoracle check --json scenarios/ > report.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{cfg.ScenarioDir}
		}
		scenarios, err := loadScenarios(args)
		if err != nil {
			return err
		}
		if len(scenarios) == 0 {
			return fmt.Errorf("no scenarios found in %s", strings.Join(args, ", "))
		}

		var reports []*scenario.Report
		for _, s := range scenarios {
			h, err := s.Build()
			if err != nil {
				return err
			}
			reports = append(reports, h.Run())
		}

		if cfg.JSON {
			if err := printJSON(reportsJSON(reports)); err != nil {
				return err
			}
		} else {
			printReports(os.Stdout, reports)
		}
		return summarize(reports)
	},
}

func init() {
	checkCmd.Flags().String("scenario-dir", "", "Scenario directory used when no arguments are given")
	bindFlags(checkCmd.Flags())
}

// loadScenarios parses files and the scenario files inside directories.
func loadScenarios(paths []string) ([]*scenario.Scenario, error) {
	var all []*scenario.Scenario
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := scenario.ParseAllScenarios(p)
			if err != nil {
				return nil, err
			}
			all = append(all, found...)
			continue
		}
		s, err := scenario.ParseScenario(p)
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	for _, s := range all {
		applyPlatform(s)
	}
	return all, nil
}

// applyPlatform fills in the configured platform when a scenario omits it.
func applyPlatform(s *scenario.Scenario) {
	if s.Platform == "" {
		s.Platform = cfg.Platform
	}
}

const dotWidth = 40

func printReports(w io.Writer, reports []*scenario.Report) {
	for _, r := range reports {
		fmt.Fprintln(w, cli.Bold(r.Scenario))
		for _, res := range r.Results {
			fmt.Fprintf(w, "  %s %s\n", cli.DotPad(res.Name, dotWidth), cli.Status(res.Passed()))
			if !res.Passed() {
				fmt.Fprintf(w, "    %s\n", cli.Dim(res.Query))
				for _, line := range strings.Split(strings.TrimRight(res.Reason(), "\n"), "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
		}
	}
}

func summarize(reports []*scenario.Report) error {
	total, failed := 0, 0
	for _, r := range reports {
		total += len(r.Results)
		failed += r.Failed()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, total)
	}
	if !cfg.JSON {
		fmt.Printf("\n%s %d checks in %d scenarios\n", cli.Green("OK"), total, len(reports))
	}
	return nil
}

type checkJSON struct {
	scenario.CheckResult
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

type reportJSON struct {
	Scenario string      `json:"scenario"`
	Results  []checkJSON `json:"results"`
}

func reportsJSON(reports []*scenario.Report) []reportJSON {
	out := make([]reportJSON, 0, len(reports))
	for _, r := range reports {
		rj := reportJSON{Scenario: r.Scenario}
		for _, res := range r.Results {
			cj := checkJSON{CheckResult: res, Passed: res.Passed()}
			if res.Err != nil {
				cj.Error = res.Err.Error()
			}
			rj.Results = append(rj.Results, cj)
		}
		out = append(out, rj)
	}
	return out
}
