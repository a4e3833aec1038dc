package scenario

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/oracle"
	"github.com/newtron-network/mcoracle/pkg/util"
)

func mustBuild(t *testing.T, s *Scenario) *Harness {
	t.Helper()
	h, err := s.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return h
}

func mustParse(t *testing.T, yamlContent string) *Scenario {
	t.Helper()
	s, err := Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return s
}

func u16(v uint16) *uint16 { return &v }
func u8(v uint8) *uint8    { return &v }

func TestHarness_RunTestdata(t *testing.T) {
	scenarios, err := ParseAllScenarios("testdata")
	if err != nil {
		t.Fatalf("ParseAllScenarios error: %v", err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			report := mustBuild(t, s).Run()
			if len(report.Results) != len(s.Checks) {
				t.Fatalf("len(Results) = %d, want %d", len(report.Results), len(s.Checks))
			}
			for _, r := range report.Results {
				if !r.Passed() {
					t.Errorf("check %s (%s): %s", r.Name, r.Query, r.Reason())
				}
			}
			if !report.Passed() {
				t.Errorf("report failed %d checks", report.Failed())
			}
		})
	}
}

func TestHarness_Build(t *testing.T) {
	s, err := ParseScenario(filepath.Join("testdata", "basic.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	h := mustBuild(t, s)

	if h.Ctx.Platform != model.PlatformTofino {
		t.Errorf("Platform = %s, want %s", h.Ctx.Platform, model.PlatformTofino)
	}
	if got := h.Ctx.Yids.PrunedPorts(7); !cmp.Equal(got, []model.Port{2}) {
		t.Errorf("PrunedPorts(7) = %v, want [2]", got)
	}
	g, err := h.Ctx.Lags.Group(3)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Members(); !cmp.Equal(got, []model.Port{10, 11, 12, 13}) {
		t.Errorf("lag 3 members = %v", got)
	}

	eh, ok := h.Ecmp("edge")
	if !ok {
		t.Fatal("ecmp 'edge' not registered")
	}
	group, err := h.Topo.Ecmp(eh)
	if err != nil {
		t.Fatal(err)
	}
	if group.Len() != 2 {
		t.Errorf("edge Len() = %d, want 2", group.Len())
	}

	tree, err := h.Topo.Tree(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Nodes()) != 2 || tree.EcmpCount() != 1 {
		t.Errorf("tree 100 has %d nodes and %d ecmps, want 2 and 1", len(tree.Nodes()), tree.EcmpCount())
	}
	if x, ok := tree.Nodes()[1].XID().Get(); !ok || x != 9 {
		t.Errorf("node rid 6 XID = %s, want 9", tree.Nodes()[1].XID())
	}
}

func TestHarness_BuildInitialPorts(t *testing.T) {
	s := mustParse(t, `
platform: tofino2
global_rid: 42
ports:
  sw_down: "1"
  hw_down: "2-3"
  backups: {"1": 9}
  backup_enabled: true
`+minimalScenario)
	h := mustBuild(t, s)
	l := h.Ctx.Liveness

	if !l.IsSWDown(1) || !l.IsHWDown(2) || !l.IsHWDown(3) {
		t.Errorf("DownPorts() = %v, want [1 2 3]", l.DownPorts())
	}
	if !l.BackupsEnabled() || l.BackupOf(1) != 9 {
		t.Errorf("BackupOf(1) = %d, want 9", l.BackupOf(1))
	}
	if h.Ctx.Yids.GlobalRID() != 42 {
		t.Errorf("GlobalRID() = %d, want 42", h.Ctx.Yids.GlobalRID())
	}

	replicas, err := h.Query(1, QueryBlock{})
	if err != nil {
		t.Fatal(err)
	}
	want := []oracle.Replica{{RID: 1, Ports: []model.Port{9, 2}}}
	if diff := cmp.Diff(want, replicas); diff != "" {
		t.Errorf("Query() mismatch (-want +got):\n%s", diff)
	}
}

func TestHarness_Apply(t *testing.T) {
	h := mustBuild(t, mustParse(t, minimalScenario))
	l := h.Ctx.Liveness

	steps := []Event{
		{Action: ActionSWPortDown, Port: u16(1)},
		{Action: ActionHWPortDown, Port: u16(2)},
		{Action: ActionSetBackup, Port: u16(1), Backup: u16(5)},
		{Action: ActionEnableBackups},
		{Action: ActionSetGlobalRID, RID: u16(7)},
		{Action: ActionSetPrunedPorts, YID: u16(3), Ports: "1-2"},
		{Action: ActionLAGAddMembers, LAG: u8(4), Ports: "10-12"},
		{Action: ActionLAGRemoveMembers, LAG: u8(4), Ports: "11"},
	}
	for _, e := range steps {
		if err := h.Apply(e); err != nil {
			t.Fatalf("Apply(%s) error: %v", e.Action, err)
		}
	}

	if !l.IsSWDown(1) || !l.IsHWDown(2) {
		t.Error("ports 1 and 2 should be down")
	}
	if l.Effective(1) != 5 {
		t.Errorf("Effective(1) = %d, want 5", l.Effective(1))
	}
	if h.Ctx.Yids.GlobalRID() != 7 {
		t.Errorf("GlobalRID() = %d, want 7", h.Ctx.Yids.GlobalRID())
	}
	if !h.Ctx.Yids.IsPortPruned(3, 2) {
		t.Error("port 2 should be pruned for yid 3")
	}
	g, _ := h.Ctx.Lags.Group(4)
	if got := g.Members(); !cmp.Equal(got, []model.Port{10, 12}) {
		t.Errorf("lag 4 members = %v, want [10 12]", got)
	}

	for _, e := range []Event{
		{Action: ActionSWPortUp, Port: u16(1)},
		{Action: ActionHWPortUp, Port: u16(2)},
		{Action: ActionClearBackup, Port: u16(1)},
		{Action: ActionDisableBackups},
	} {
		if err := h.Apply(e); err != nil {
			t.Fatalf("Apply(%s) error: %v", e.Action, err)
		}
	}
	if len(l.DownPorts()) != 0 || l.BackupsEnabled() || l.BackupOf(1) != 1 {
		t.Error("liveness should be back to defaults")
	}
}

func TestHarness_ApplyErrors(t *testing.T) {
	h := mustBuild(t, mustParse(t, minimalScenario))

	err := h.Apply(Event{Action: ActionClearBackup, Port: u16(1)})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("clear-backup without backup: err = %v, want ErrNotFound", err)
	}
	err = h.Apply(Event{Action: ActionLAGRemoveMembers, LAG: u8(0), Ports: "1"})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("lag-remove-members absent: err = %v, want ErrNotFound", err)
	}
	err = h.Apply(Event{Action: ActionLAGAddMembers, LAG: u8(255), Ports: "1"})
	if !errors.Is(err, util.ErrOutOfRange) {
		t.Errorf("lag 255: err = %v, want ErrOutOfRange", err)
	}
	if err := h.Apply(Event{Action: "bogus"}); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestHarness_RunFailures(t *testing.T) {
	s := mustParse(t, `
name: failing
trees:
  "1":
    nodes:
      - {rid: 1, ports: "1-2"}
checks:
  - name: wrong-ports
    tree: 1
    query: {rid: 0, xid: 0, yid: 0}
    expect:
      - {rid: 1, ports: "1"}
  - name: bad-event
    events:
      - {action: clear-backup, port: 4}
    tree: 1
    query: {rid: 0, xid: 0, yid: 0}
    expect:
      - {rid: 1, ports: "1,2"}
  - name: ok
    tree: 1
    query: {rid: 0, xid: 0, yid: 0}
    expect:
      - {rid: 1, ports: "2,1"}
`)
	report := mustBuild(t, s).Run()

	if report.Passed() || report.Failed() != 2 {
		t.Fatalf("Failed() = %d, want 2", report.Failed())
	}
	wrong := report.Results[0]
	if wrong.Diff == "" || wrong.Err != nil {
		t.Errorf("wrong-ports: Diff = %q, Err = %v", wrong.Diff, wrong.Err)
	}
	if !strings.Contains(wrong.Reason(), "replicas differ") {
		t.Errorf("Reason() = %q", wrong.Reason())
	}
	bad := report.Results[1]
	if !errors.Is(bad.Err, util.ErrNotFound) {
		t.Errorf("bad-event: Err = %v, want ErrNotFound", bad.Err)
	}
	if !report.Results[2].Passed() {
		t.Errorf("ok: %s", report.Results[2].Reason())
	}
	if report.Results[2].Query != "mgid=1 rid=0 xid=0 yid=0 hash1=0 hash2=0" {
		t.Errorf("Query = %q", report.Results[2].Query)
	}
}

func TestParseReplicaPorts(t *testing.T) {
	tests := []struct {
		spec string
		want []model.Port
	}{
		{"", nil},
		{"3,1", []model.Port{1, 3}},
		{"1-2,2", []model.Port{1, 2, 2}},
		{"5, 5", []model.Port{5, 5}},
	}
	for _, tt := range tests {
		got, err := parseReplicaPorts(tt.spec)
		if err != nil {
			t.Fatalf("parseReplicaPorts(%q) error: %v", tt.spec, err)
		}
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("parseReplicaPorts(%q) mismatch (-want +got):\n%s", tt.spec, diff)
		}
	}
}
