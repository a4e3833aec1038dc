package oracle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

func mustNode(t *testing.T, rid model.RID, ports []model.Port, lags []model.LagID) *L1Node {
	t.Helper()
	n, err := NewL1Node(rid, ports, lags)
	if err != nil {
		t.Fatalf("NewL1Node: %v", err)
	}
	return n
}

func TestReplicationTree_YIDPruning(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino)
	if err := ctx.Yids.SetPrunedPorts(7, []model.Port{2}); err != nil {
		t.Fatal(err)
	}
	tree := NewReplicationTree(100)
	if err := tree.Associate(mustNode(t, 5, []model.Port{1, 2, 3}, nil), model.NoXID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		globalRID model.RID
		q         Query
		want      []Replica
	}{
		{"rid match prunes", 0, Query{RID: 5, XID: 99, YID: 7}, []Replica{{RID: 5, Ports: []model.Port{1, 3}}}},
		{"rid mismatch keeps", 0, Query{RID: 6, XID: 99, YID: 7}, []Replica{{RID: 5, Ports: []model.Port{1, 2, 3}}}},
		{"global rid prunes", 6, Query{RID: 6, XID: 99, YID: 7}, []Replica{{RID: 5, Ports: []model.Port{1, 3}}}},
		{"other yid keeps", 0, Query{RID: 5, XID: 99, YID: 8}, []Replica{{RID: 5, Ports: []model.Port{1, 2, 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx.Yids.SetGlobalRID(tt.globalRID)
			got := tree.GetPorts(ctx, tt.q)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetPorts() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReplicationTree_XIDExclusion(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino)
	tree := NewReplicationTree(100)
	tree.Associate(mustNode(t, 1, []model.Port{1}, nil), model.SomeXID(9))
	tree.Associate(mustNode(t, 2, []model.Port{2}, nil), model.NoXID)

	g := NewEcmpGroup()
	g.AddMember(3, []model.Port{3}, nil)
	if err := tree.AssociateEcmp(g, model.SomeXID(4)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		xid  uint16
		want []model.RID
	}{
		{0, []model.RID{1, 2, 3}},
		{9, []model.RID{2, 3}},
		{4, []model.RID{1, 2}},
	}
	for _, tt := range tests {
		var rids []model.RID
		for _, r := range tree.GetPorts(ctx, Query{RID: 50, XID: tt.xid}) {
			rids = append(rids, r.RID)
		}
		if diff := cmp.Diff(tt.want, rids); diff != "" {
			t.Errorf("xid %d: rids mismatch (-want +got):\n%s", tt.xid, diff)
		}
	}
}

func TestReplicationTree_LagsAndBackups(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino)
	lag, _ := ctx.Lags.Group(3)
	lag.AddMembers(10, 11, 12, 13)
	ctx.Liveness.HWPortDown(1)
	ctx.Liveness.SetBackupPort(1, 40)
	ctx.Liveness.EnableBackupPorts()

	tree := NewReplicationTree(100)
	tree.Associate(mustNode(t, 5, []model.Port{1, 3, 10}, []model.LagID{3}), model.NoXID)

	got := tree.GetPorts(ctx, Query{RID: 6, Hash2: 4})
	want := []Replica{{RID: 5, Ports: []model.Port{40, 3, 10, 10}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetPorts() mismatch (-want +got):\n%s", diff)
	}

	ctx.Liveness.DisableBackupPorts()
	got = tree.GetPorts(ctx, Query{RID: 6, Hash2: 4})
	want = []Replica{{RID: 5, Ports: []model.Port{1, 3, 10, 10}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("backups disabled mismatch (-want +got):\n%s", diff)
	}
}

func TestReplicationTree_NodesBeforeEcmp(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino2)
	tree := NewReplicationTree(1)

	g := NewEcmpGroup()
	g.AddMember(20, []model.Port{20}, nil)
	g.AddMember(21, []model.Port{21}, nil)
	tree.AssociateEcmp(g, model.NoXID)
	tree.Associate(mustNode(t, 10, []model.Port{10}, nil), model.NoXID)

	got := tree.GetPorts(ctx, Query{RID: 99, Hash1: 1})
	want := []Replica{
		{RID: 10, Ports: []model.Port{10}},
		{RID: 21, Ports: []model.Port{21}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetPorts() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplicationTree_EmptyBranches(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino2)
	tree := NewReplicationTree(1)
	tree.AssociateEcmp(NewEcmpGroup(), model.NoXID)
	tree.Associate(mustNode(t, 10, nil, nil), model.NoXID)

	got := tree.GetPorts(ctx, Query{RID: 1})
	want := []Replica{{RID: 10}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("GetPorts() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplicationTree_Association(t *testing.T) {
	a := NewReplicationTree(1)
	b := NewReplicationTree(2)
	n := mustNode(t, 5, []model.Port{1}, nil)

	if err := a.Associate(n, model.SomeXID(3)); err != nil {
		t.Fatal(err)
	}
	if n.Tree() != a || n.XID() != model.SomeXID(3) {
		t.Errorf("after Associate: tree=%v xid=%s", n.Tree(), n.XID())
	}
	if err := b.Associate(n, model.NoXID); !errors.Is(err, util.ErrAlreadyExists) {
		t.Errorf("second Associate err = %v, want ErrAlreadyExists", err)
	}
	if err := b.Dissociate(n); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Dissociate from wrong tree err = %v, want ErrNotFound", err)
	}
	if err := a.Dissociate(n); err != nil {
		t.Fatal(err)
	}
	if len(a.Nodes()) != 0 || n.Tree() != nil || n.XID().IsSet() {
		t.Error("Dissociate did not clear bookkeeping")
	}
	if err := b.Associate(n, model.NoXID); err != nil {
		t.Errorf("Associate after Dissociate: %v", err)
	}

	g := NewEcmpGroup()
	if err := a.AssociateEcmp(g, model.NoXID); err != nil {
		t.Fatal(err)
	}
	if err := a.AssociateEcmp(g, model.NoXID); !errors.Is(err, util.ErrAlreadyExists) {
		t.Errorf("duplicate AssociateEcmp err = %v", err)
	}
	if err := a.DissociateEcmp(g); err != nil {
		t.Fatal(err)
	}
	if err := a.DissociateEcmp(g); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("second DissociateEcmp err = %v, want ErrNotFound", err)
	}
}

func TestReplicationTree_PanicsOnDanglingGroup(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino2)
	tree := NewReplicationTree(1)
	tree.ecmps = append(tree.ecmps, ecmpRef{})

	defer func() {
		if recover() == nil {
			t.Error("GetPorts with a nil group should panic")
		}
	}()
	tree.GetPorts(ctx, Query{})
}

func TestReplicationTree_PanicsOnForeignNode(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino2)
	a := NewReplicationTree(1)
	n := mustNode(t, 5, nil, nil)
	a.nodes = append(a.nodes, n)

	defer func() {
		if recover() == nil {
			t.Error("GetPorts with an unowned node should panic")
		}
	}()
	a.GetPorts(ctx, Query{})
}
