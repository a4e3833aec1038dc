package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/oracle"
	"github.com/newtron-network/mcoracle/pkg/scenario"
)

var (
	queryFile        string
	queryTree        uint16
	queryRID         uint16
	queryXID         uint16
	queryYID         uint16
	queryHash1       uint32
	queryHash2       uint32
	queryAfterChecks bool
	queryWidth       int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Compute the replicas of one packet",
	Long: `Build the state described by a scenario file and compute the
replicas of one ingress packet on a tree.

By default only the scenario's initial state is used. With --after-checks
the events of every check are applied first.

Examples:
  mcoracle query -f lag.yaml --tree 100 --rid 5 --xid 99 --yid 7 --hash2 4
  mcoracle query -f lag.yaml --tree 100 --bitmap 288`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryFile == "" {
			return fmt.Errorf("scenario file required: use -f <file>")
		}
		s, err := scenario.ParseScenario(queryFile)
		if err != nil {
			return err
		}
		applyPlatform(s)

		h, err := s.Build()
		if err != nil {
			return err
		}
		if queryAfterChecks {
			for _, c := range s.Checks {
				for _, e := range c.Events {
					if err := h.Apply(e); err != nil {
						return fmt.Errorf("check %s: %w", c.Name, err)
					}
				}
			}
		}

		replicas, err := h.Query(model.MGID(queryTree), scenario.QueryBlock{
			RID:   queryRID,
			XID:   queryXID,
			YID:   queryYID,
			Hash1: queryHash1,
			Hash2: queryHash2,
		})
		if err != nil {
			return err
		}

		var bitmap *model.PortBitmap
		if queryWidth > 0 {
			if bitmap, err = oracle.ReplicaBitmap(replicas, queryWidth); err != nil {
				return err
			}
		}

		if cfg.JSON {
			out := map[string]interface{}{"replicas": replicas, "copies": copiesJSON(replicas)}
			if bitmap != nil {
				out["bitmap"] = bitmap.Hex()
			}
			return printJSON(out)
		}
		printReplicas(os.Stdout, replicas)
		printCopies(os.Stdout, replicas)
		if bitmap != nil {
			fmt.Printf("\nbitmap (%d bits): %s\n", bitmap.Width(), bitmap.Hex())
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Scenario file")
	queryCmd.Flags().Uint16Var(&queryTree, "tree", 0, "Multicast group id")
	queryCmd.Flags().Uint16Var(&queryRID, "rid", 0, "Ingress RID")
	queryCmd.Flags().Uint16Var(&queryXID, "xid", 0, "Ingress XID")
	queryCmd.Flags().Uint16Var(&queryYID, "yid", 0, "Ingress YID")
	queryCmd.Flags().Uint32Var(&queryHash1, "hash1", 0, "ECMP hash")
	queryCmd.Flags().Uint32Var(&queryHash2, "hash2", 0, "LAG hash")
	queryCmd.Flags().BoolVar(&queryAfterChecks, "after-checks", false, "Apply every check's events before querying")
	queryCmd.Flags().IntVar(&queryWidth, "bitmap", 0, "Also print the port bitmap of this width (288 or 576)")
}

func printReplicas(w io.Writer, replicas []oracle.Replica) {
	if len(replicas) == 0 {
		fmt.Fprintln(w, "no replicas")
		return
	}
	t := cli.NewTableTo(w, "RID", "PORTS", "COUNT")
	for _, r := range replicas {
		t.Row(fmt.Sprint(r.RID), portList(r.Ports), fmt.Sprint(len(r.Ports)))
	}
	t.Flush()
}

// portList renders ports in order, keeping duplicates.
func portList(ports []model.Port) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}

// printCopies lists ports that receive more than one copy.
func printCopies(w io.Writer, replicas []oracle.Replica) {
	counts := oracle.PortCounts(replicas)
	var multi []model.Port
	for p, n := range counts {
		if n > 1 {
			multi = append(multi, p)
		}
	}
	if len(multi) == 0 {
		return
	}
	fmt.Fprintln(w, "\nports with multiple copies:")
	for _, p := range model.SortedPorts(multi) {
		fmt.Fprintf(w, "  %d x%d\n", p, counts[p])
	}
}

func copiesJSON(replicas []oracle.Replica) map[string]int {
	out := make(map[string]int)
	for p, n := range oracle.PortCounts(replicas) {
		out[strconv.Itoa(int(p))] = n
	}
	return out
}
