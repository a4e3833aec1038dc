package scenario

import (
	"fmt"
	"strings"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/oracle"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// Harness holds the oracle state built from a scenario.
type Harness struct {
	Scenario *Scenario
	Ctx      *oracle.SimulationContext
	Topo     *oracle.Topology

	ecmps map[string]oracle.EcmpHandle
}

// Build creates a fresh simulation context and topology from the scenario.
func (s *Scenario) Build() (*Harness, error) {
	platform, err := model.ParsePlatform(s.Platform)
	if err != nil {
		return nil, err
	}
	h := &Harness{
		Scenario: s,
		Ctx:      oracle.NewSimulationContext(platform),
		Topo:     oracle.NewTopology(),
		ecmps:    make(map[string]oracle.EcmpHandle),
	}
	if err := h.load(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return h, nil
}

func (h *Harness) load() error {
	s := h.Scenario
	ctx := h.Ctx

	ctx.Yids.SetGlobalRID(model.RID(s.GlobalRID))

	swDown, err := model.ParsePorts(s.Ports.SWDown)
	if err != nil {
		return fmt.Errorf("ports.sw_down: %w", err)
	}
	for _, p := range swDown {
		ctx.Liveness.SWPortDown(p)
	}
	hwDown, err := model.ParsePorts(s.Ports.HWDown)
	if err != nil {
		return fmt.Errorf("ports.hw_down: %w", err)
	}
	for _, p := range hwDown {
		ctx.Liveness.HWPortDown(p)
	}
	for _, key := range sortedKeys(s.Ports.Backups) {
		primary, err := parseID(key, 0x10000)
		if err != nil {
			return fmt.Errorf("ports.backups: %w", err)
		}
		ctx.Liveness.SetBackupPort(model.Port(primary), model.Port(s.Ports.Backups[key]))
	}
	if s.Ports.BackupEnabled {
		ctx.Liveness.EnableBackupPorts()
	}

	for _, key := range sortedKeys(s.YIDs) {
		yid, err := parseID(key, model.NumYIDs)
		if err != nil {
			return fmt.Errorf("yids.%s: %w", key, err)
		}
		ports, err := model.ParsePorts(s.YIDs[key])
		if err != nil {
			return fmt.Errorf("yids.%s: %w", key, err)
		}
		if err := ctx.Yids.SetPrunedPorts(model.YID(yid), ports); err != nil {
			return err
		}
	}

	for _, key := range sortedKeys(s.LAGs) {
		id, err := parseID(key, model.NumLAGs)
		if err != nil {
			return fmt.Errorf("lags.%s: %w", key, err)
		}
		block := s.LAGs[key]
		members, err := model.ParsePorts(block.Members)
		if err != nil {
			return fmt.Errorf("lags.%s: %w", key, err)
		}
		g, err := ctx.Lags.Group(model.LagID(id))
		if err != nil {
			return err
		}
		g.AddMembers(members...)
		g.SetRemoteCounts(block.Left, block.Right)
	}

	for _, name := range sortedKeys(s.ECMPs) {
		eh := h.Topo.CreateEcmp()
		group, err := h.Topo.Ecmp(eh)
		if err != nil {
			return err
		}
		for i, n := range s.ECMPs[name].Members {
			ports, lags, err := nodeMembers(n)
			if err != nil {
				return fmt.Errorf("ecmps.%s.members[%d]: %w", name, i, err)
			}
			if _, err := group.AddMember(model.RID(n.RID), ports, lags); err != nil {
				return fmt.Errorf("ecmps.%s: %w", name, err)
			}
		}
		h.ecmps[name] = eh
	}

	for _, key := range sortedKeys(s.Trees) {
		id, err := parseID(key, 0x10000)
		if err != nil {
			return fmt.Errorf("trees.%s: %w", key, err)
		}
		mgid := model.MGID(id)
		if _, err := h.Topo.CreateTree(mgid); err != nil {
			return err
		}
		tree := s.Trees[key]
		for i, n := range tree.Nodes {
			ports, lags, err := nodeMembers(n)
			if err != nil {
				return fmt.Errorf("trees.%s.nodes[%d]: %w", key, i, err)
			}
			nh, err := h.Topo.CreateNode(model.RID(n.RID), ports, lags)
			if err != nil {
				return err
			}
			if err := h.Topo.AssociateNode(mgid, nh, model.XIDFromPtr(n.XID)); err != nil {
				return err
			}
		}
		for _, ref := range tree.ECMPs {
			eh, ok := h.ecmps[ref.ECMP]
			if !ok {
				return util.NewNotFoundError("ecmp", ref.ECMP)
			}
			if err := h.Topo.AssociateEcmp(mgid, eh, model.XIDFromPtr(ref.XID)); err != nil {
				return err
			}
		}
	}

	util.WithScenario(s.Name).Debugf("built %d trees, %d ecmp groups on %s",
		len(s.Trees), len(s.ECMPs), ctx.Platform)
	return nil
}

func nodeMembers(n NodeBlock) ([]model.Port, []model.LagID, error) {
	ports, err := model.ParsePorts(n.Ports)
	if err != nil {
		return nil, nil, err
	}
	lags, err := parseLags(n.Lags)
	if err != nil {
		return nil, nil, err
	}
	return ports, lags, nil
}

// Ecmp returns the handle of a named ECMP group.
func (h *Harness) Ecmp(name string) (oracle.EcmpHandle, bool) {
	eh, ok := h.ecmps[name]
	return eh, ok
}

// Apply applies one event to the simulation context.
func (h *Harness) Apply(e Event) error {
	l := h.Ctx.Liveness
	switch e.Action {
	case ActionSWPortDown:
		l.SWPortDown(model.Port(*e.Port))
	case ActionSWPortUp:
		l.SWPortUp(model.Port(*e.Port))
	case ActionHWPortDown:
		l.HWPortDown(model.Port(*e.Port))
	case ActionHWPortUp:
		l.HWPortUp(model.Port(*e.Port))
	case ActionSetBackup:
		l.SetBackupPort(model.Port(*e.Port), model.Port(*e.Backup))
	case ActionClearBackup:
		return l.ClearBackupPort(model.Port(*e.Port))
	case ActionEnableBackups:
		l.EnableBackupPorts()
	case ActionDisableBackups:
		l.DisableBackupPorts()
	case ActionSetGlobalRID:
		h.Ctx.Yids.SetGlobalRID(model.RID(*e.RID))
	case ActionSetPrunedPorts:
		ports, err := model.ParsePorts(e.Ports)
		if err != nil {
			return err
		}
		return h.Ctx.Yids.SetPrunedPorts(model.YID(*e.YID), ports)
	case ActionLAGAddMembers, ActionLAGRemoveMembers:
		ports, err := model.ParsePorts(e.Ports)
		if err != nil {
			return err
		}
		g, err := h.Ctx.Lags.Group(model.LagID(*e.LAG))
		if err != nil {
			return err
		}
		if e.Action == ActionLAGAddMembers {
			g.AddMembers(ports...)
			return nil
		}
		return g.RemoveMembers(ports...)
	default:
		return fmt.Errorf("unknown action '%s'", e.Action)
	}
	return nil
}

// Query runs one replication query against tree mgid.
func (h *Harness) Query(mgid model.MGID, q QueryBlock) ([]oracle.Replica, error) {
	return h.Topo.GetPorts(h.Ctx, mgid, oracle.Query{
		RID:   model.RID(q.RID),
		XID:   q.XID,
		YID:   model.YID(q.YID),
		Hash1: q.Hash1,
		Hash2: q.Hash2,
	})
}

// Run executes every check in order and returns the report. Events are
// cumulative across checks.
func (h *Harness) Run() *Report {
	logger := util.WithScenario(h.Scenario.Name)
	report := &Report{Scenario: h.Scenario.Name}

	for _, c := range h.Scenario.Checks {
		result := h.runCheck(c)
		if result.Passed() {
			logger.Debugf("check %s passed: %s", c.Name, oracle.FormatReplicas(result.Actual))
		} else {
			logger.Warnf("check %s failed: %s", c.Name, result.Reason())
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (h *Harness) runCheck(c Check) CheckResult {
	result := CheckResult{Name: c.Name, Query: formatQuery(c.Tree, c.Query)}

	for i, e := range c.Events {
		if err := h.Apply(e); err != nil {
			result.Err = fmt.Errorf("event %d (%s): %w", i, e.Action, err)
			return result
		}
	}

	expected, err := expectedReplicas(c.Expect)
	if err != nil {
		result.Err = err
		return result
	}
	result.Expected = expected

	actual, err := h.Query(model.MGID(c.Tree), c.Query)
	if err != nil {
		result.Err = err
		return result
	}
	result.Actual = oracle.Normalize(actual)
	result.Diff = diffReplicas(result.Expected, result.Actual)
	return result
}

func expectedReplicas(expect []ExpectBlock) ([]oracle.Replica, error) {
	var out []oracle.Replica
	for i, e := range expect {
		ports, err := parseReplicaPorts(e.Ports)
		if err != nil {
			return nil, fmt.Errorf("expect[%d]: %w", i, err)
		}
		out = append(out, oracle.Replica{RID: model.RID(e.RID), Ports: ports})
	}
	return out, nil
}

// parseReplicaPorts expands an expected port list, keeping duplicates: a
// port listed twice must receive two copies.
func parseReplicaPorts(spec string) ([]model.Port, error) {
	var ports []model.Port
	for _, part := range strings.Split(spec, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		expanded, err := model.ParsePorts(part)
		if err != nil {
			return nil, err
		}
		ports = append(ports, expanded...)
	}
	return model.SortedPorts(ports), nil
}

// formatQuery renders a query the way the CLI accepts it.
func formatQuery(tree uint16, q QueryBlock) string {
	return fmt.Sprintf("mgid=%d rid=%d xid=%d yid=%d hash1=%d hash2=%d",
		tree, q.RID, q.XID, q.YID, q.Hash1, q.Hash2)
}
