// Mcoracle - multicast replication oracle
//
// Computes the ports a switch ASIC replicates a multicast packet to, from
// the tree, LAG, ECMP, prune and liveness state a test configured, and
// checks scenario files against those results.
//
// Examples:
//
//	mcoracle check scenarios/                         # Run every scenario in a directory
//	mcoracle query -f lag.yaml --tree 100 --rid 5 --yid 7 --hash2 4
//	mcoracle bitmap encode --width 288 1-3,130        # Port list to hex bitmap
//	mcoracle bitmap decode --width 288 0e00...        # Hex bitmap to port list
//	mcoracle sync -f lag.yaml --ssh 10.0.0.1          # Pull liveness from STATE_DB, then check
//	mcoracle settings set redis 10.0.0.1:6379
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/settings"
	"github.com/newtron-network/mcoracle/pkg/util"
	"github.com/newtron-network/mcoracle/pkg/version"
)

var (
	cfg          Config
	userSettings *settings.Settings
)

// logLevel is quiet by default, verbose on -v.
func logLevel(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "warn"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "mcoracle",
	Short:             "Multicast replication oracle",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Mcoracle computes the expected replication of a multicast packet:
which ports receive a copy, for which branch RID, given the trees, LAGs,
ECMP groups, prune lists and port liveness a test configured.

Scenario files describe that state and the replicas each query must
produce; 'check' runs them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if err := loadConfig(userSettings); err != nil {
			return err
		}

		if err := util.SetLogLevel(logLevel(cfg.Verbose)); err != nil {
			return fmt.Errorf("setting log level: %w", err)
		}
		if cfg.LogJSON {
			util.SetJSONFormat()
		}
		if cfg.NoColor {
			cli.SetColor(false)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "JSON output")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("platform", "", "Platform for scenarios that do not name one (tofino, tofino2, tofino3)")
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddGroup(
		&cobra.Group{ID: "oracle", Title: "Oracle:"},
		&cobra.Group{ID: "device", Title: "Device:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{checkCmd, queryCmd, bitmapCmd} {
		cmd.GroupID = "oracle"
		rootCmd.AddCommand(cmd)
	}

	syncCmd.GroupID = "device"
	rootCmd.AddCommand(syncCmd)

	for _, cmd := range []*cobra.Command{settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JSON {
			return printJSON(version.Fields())
		}
		printVersion("mcoracle")
		return nil
	},
}

func printVersion(tool string) {
	if version.Version == "dev" {
		fmt.Printf("%s dev build (version is set with -ldflags)\n", tool)
	} else {
		fmt.Printf("%s %s (%s)\n", tool, version.Version, version.GitCommit)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
