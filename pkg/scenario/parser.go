package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/oracle"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// ParseScenario reads a YAML scenario file and returns a validated Scenario.
func ParseScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	s.path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	applyDefaults(&s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseAllScenarios reads all .yaml files in dir and returns parsed scenarios.
func ParseAllScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios dir %s: %w", dir, err)
	}

	var scenarios []*Scenario
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		s, err := ParseScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func applyDefaults(s *Scenario) {
	for i := range s.Checks {
		if s.Checks[i].Name == "" {
			s.Checks[i].Name = fmt.Sprintf("check-%d", i+1)
		}
	}
}

// eventValidation declares which fields an event action requires.
type eventValidation struct {
	port   bool
	backup bool
	rid    bool
	yid    bool
	lag    bool
	ports  bool
}

var eventValidations = map[EventAction]eventValidation{
	ActionSWPortDown:       {port: true},
	ActionSWPortUp:         {port: true},
	ActionHWPortDown:       {port: true},
	ActionHWPortUp:         {port: true},
	ActionSetBackup:        {port: true, backup: true},
	ActionClearBackup:      {port: true},
	ActionEnableBackups:    {},
	ActionDisableBackups:   {},
	ActionSetGlobalRID:     {rid: true},
	ActionSetPrunedPorts:   {yid: true},
	ActionLAGAddMembers:    {lag: true, ports: true},
	ActionLAGRemoveMembers: {lag: true, ports: true},
}

// Validate checks ids, port lists and cross references.
func (s *Scenario) Validate() error {
	v := &util.ValidationBuilder{}

	if _, err := model.ParsePlatform(s.Platform); err != nil {
		v.AddError(err.Error())
	}
	checkPorts(v, "ports.sw_down", s.Ports.SWDown)
	checkPorts(v, "ports.hw_down", s.Ports.HWDown)
	for _, primary := range sortedKeys(s.Ports.Backups) {
		backup := s.Ports.Backups[primary]
		if _, err := parseID(primary, 0x10000); err != nil {
			v.AddErrorf("ports.backups: primary %s: %v", primary, err)
		}
		v.Add(model.Port(backup).Valid(), fmt.Sprintf("ports.backups[%s]: invalid backup port %d", primary, backup))
	}

	yids := make(map[int]string)
	for _, key := range sortedKeys(s.YIDs) {
		ports := s.YIDs[key]
		checkID(v, "yids", key, model.NumYIDs, yids)
		checkPorts(v, "yids."+key, ports)
	}

	lags := make(map[int]string)
	for _, key := range sortedKeys(s.LAGs) {
		lag := s.LAGs[key]
		checkID(v, "lags", key, model.NumLAGs, lags)
		checkPorts(v, "lags."+key+".members", lag.Members)
	}

	for _, name := range sortedKeys(s.ECMPs) {
		ecmp := s.ECMPs[name]
		v.Add(len(ecmp.Members) <= oracle.EcmpGroupSize,
			fmt.Sprintf("ecmps.%s: %d members exceeds %d slots", name, len(ecmp.Members), oracle.EcmpGroupSize))
		for i, n := range ecmp.Members {
			prefix := fmt.Sprintf("ecmps.%s.members[%d]", name, i)
			v.Add(n.XID == nil, prefix+": xid belongs on the tree association")
			checkNode(v, prefix, n)
		}
	}

	v.Add(len(s.Trees) > 0, "at least one tree is required")
	trees := make(map[int]string)
	for _, key := range sortedKeys(s.Trees) {
		tree := s.Trees[key]
		checkID(v, "trees", key, 0x10000, trees)
		for i, n := range tree.Nodes {
			checkNode(v, fmt.Sprintf("trees.%s.nodes[%d]", key, i), n)
		}
		seen := make(map[string]bool)
		for i, ref := range tree.ECMPs {
			_, ok := s.ECMPs[ref.ECMP]
			v.Add(ok, fmt.Sprintf("trees.%s.ecmps[%d]: unknown ecmp '%s'", key, i, ref.ECMP))
			v.Add(!seen[ref.ECMP], fmt.Sprintf("trees.%s.ecmps[%d]: ecmp '%s' listed twice", key, i, ref.ECMP))
			seen[ref.ECMP] = true
		}
	}

	for _, name := range sortedKeys(s.PortMap) {
		port := s.PortMap[name]
		v.Add(model.Port(port).Valid(), fmt.Sprintf("port_map.%s: invalid port %d", name, port))
	}

	for i, c := range s.Checks {
		prefix := fmt.Sprintf("checks[%d] (%s)", i, c.Name)
		_, ok := trees[int(c.Tree)]
		v.Add(ok, fmt.Sprintf("%s: unknown tree %d", prefix, c.Tree))
		v.Add(c.Query.YID < model.NumYIDs, fmt.Sprintf("%s: query yid %d out of range", prefix, c.Query.YID))
		for j, e := range c.Events {
			checkEvent(v, fmt.Sprintf("%s.events[%d]", prefix, j), e)
		}
		for j, e := range c.Expect {
			checkPorts(v, fmt.Sprintf("%s.expect[%d]", prefix, j), e.Ports)
		}
	}

	return v.Build()
}

// checkID validates a numeric map key and records it in seen, so keys
// naming the same id ("7" and "07") are reported.
func checkID(v *util.ValidationBuilder, field, key string, limit int, seen map[int]string) {
	id, err := parseID(key, limit)
	if err != nil {
		v.AddErrorf("%s.%s: %v", field, key, err)
		return
	}
	if prev, ok := seen[id]; ok {
		v.AddErrorf("%s.%s: id %d already defined as '%s'", field, key, id, prev)
		return
	}
	seen[id] = key
}

func checkPorts(v *util.ValidationBuilder, field, spec string) {
	if _, err := model.ParsePorts(spec); err != nil {
		v.AddErrorf("%s: %v", field, err)
	}
}

func checkNode(v *util.ValidationBuilder, prefix string, n NodeBlock) {
	checkPorts(v, prefix+".ports", n.Ports)
	if _, err := parseLags(n.Lags); err != nil {
		v.AddErrorf("%s.lags: %v", prefix, err)
	}
}

func checkEvent(v *util.ValidationBuilder, prefix string, e Event) {
	req, ok := eventValidations[e.Action]
	if !ok {
		v.AddErrorf("%s: unknown action '%s'", prefix, e.Action)
		return
	}
	v.Add(!req.port || e.Port != nil, prefix+": port is required")
	v.Add(!req.backup || e.Backup != nil, prefix+": backup is required")
	v.Add(!req.rid || e.RID != nil, prefix+": rid is required")
	v.Add(!req.yid || e.YID != nil, prefix+": yid is required")
	v.Add(!req.lag || e.LAG != nil, prefix+": lag is required")
	v.Add(!req.ports || e.Ports != "", prefix+": ports is required")
	if e.YID != nil {
		v.Add(*e.YID < model.NumYIDs, fmt.Sprintf("%s: yid %d out of range", prefix, *e.YID))
	}
	if e.LAG != nil {
		v.Add(*e.LAG < model.NumLAGs, fmt.Sprintf("%s: lag %d out of range", prefix, *e.LAG))
	}
	checkPorts(v, prefix+".ports", e.Ports)
}

// parseID parses a decimal map key bounded by limit.
func parseID(key string, limit int) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, fmt.Errorf("invalid id '%s'", key)
	}
	if err := util.CheckRange("id", id, limit); err != nil {
		return 0, err
	}
	return id, nil
}

func parseLags(spec string) ([]model.LagID, error) {
	values, err := util.ExpandRange(spec)
	if err != nil {
		return nil, err
	}
	lags := make([]model.LagID, 0, len(values))
	for _, v := range values {
		if err := util.CheckRange("lag id", v, model.NumLAGs); err != nil {
			return nil, err
		}
		lags = append(lags, model.LagID(v))
	}
	return lags, nil
}

// sortedKeys returns the decimal keys of m in numeric order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimSpace(keys[i]))
		b, _ := strconv.Atoi(strings.TrimSpace(keys[j]))
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
