package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/scenario"
	"github.com/newtron-network/mcoracle/pkg/statedb"
	"github.com/newtron-network/mcoracle/pkg/util"
)

var (
	syncFile    string
	syncNoCheck bool
	syncTimeout time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull port liveness from STATE_DB, then run checks",
	Long: `Read PORT_TABLE oper_status from a switch's STATE_DB and mark the
scenario's mapped ports hardware-down or up before running its checks.

The scenario's port_map names the STATE_DB ports. Redis is reached
directly (--redis) or through an SSH tunnel to the switch (--ssh); the
SSH password is read from MCORACLE_SSH_PASS.

Examples:
  mcoracle sync -f lag.yaml --redis 127.0.0.1:6379
  MCORACLE_SSH_PASS=... mcoracle sync -f lag.yaml --ssh 10.0.0.1 --ssh-user admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncFile == "" {
			return fmt.Errorf("scenario file required: use -f <file>")
		}
		s, err := scenario.ParseScenario(syncFile)
		if err != nil {
			return err
		}
		applyPlatform(s)
		if len(s.PortMap) == 0 {
			return fmt.Errorf("scenario %s has no port_map", s.Name)
		}

		h, err := s.Build()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		addr := cfg.Redis
		if cfg.SSHHost != "" {
			tunnel, err := statedb.NewSSHTunnel(cfg.SSHHost, cfg.SSHUser, cfg.SSHPass)
			if err != nil {
				return err
			}
			defer tunnel.Close()
			addr = tunnel.LocalAddr()
		}

		client := statedb.NewClient(addr)
		defer client.Close()
		if err := client.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to STATE_DB at %s: %w", addr, err)
		}

		res, err := statedb.SyncLiveness(ctx, client, h.Ctx.Liveness, portMap(s))
		if err != nil {
			return err
		}

		if syncNoCheck {
			if cfg.JSON {
				return printJSON(res)
			}
			printSyncResult(os.Stdout, res)
			return nil
		}

		report := h.Run()
		if cfg.JSON {
			if err := printJSON(map[string]interface{}{
				"sync":   res,
				"report": reportsJSON([]*scenario.Report{report}),
			}); err != nil {
				return err
			}
		} else {
			printSyncResult(os.Stdout, res)
			fmt.Println()
			printReports(os.Stdout, []*scenario.Report{report})
		}
		return summarize([]*scenario.Report{report})
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "", "Scenario file")
	syncCmd.Flags().BoolVar(&syncNoCheck, "no-check", false, "Only sync and print liveness")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 30*time.Second, "STATE_DB timeout")
	syncCmd.Flags().String("redis", "", "STATE_DB Redis address (host:port)")
	syncCmd.Flags().String("ssh", "", "Switch to tunnel to over SSH")
	syncCmd.Flags().String("ssh-user", "", "SSH login")
	bindFlags(syncCmd.Flags())
}

func portMap(s *scenario.Scenario) map[string]model.Port {
	m := make(map[string]model.Port, len(s.PortMap))
	for name, p := range s.PortMap {
		m[name] = model.Port(p)
	}
	return m
}

func printSyncResult(w io.Writer, res statedb.SyncResult) {
	fmt.Fprintf(w, "up:   %s\n", orNone(model.FormatPorts(res.Up)))
	fmt.Fprintf(w, "down: %s\n", orNone(model.FormatPorts(res.Down)))
	for _, name := range res.Missing {
		fmt.Fprintln(w, cli.Yellow("missing from STATE_DB: "+name))
	}
	if len(res.Unknown) > 0 {
		util.Debugf("STATE_DB ports not in port_map: %v", res.Unknown)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
