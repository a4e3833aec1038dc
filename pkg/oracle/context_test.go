package oracle

import (
	"testing"

	"github.com/newtron-network/mcoracle/pkg/model"
)

func TestSimulationContext_Reset(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino3)
	ctx.Liveness.HWPortDown(1)
	ctx.Yids.SetGlobalRID(4)
	ctx.Yids.SetPrunedPorts(1, []model.Port{1})
	g, _ := ctx.Lags.Group(0)
	g.AddMembers(1, 2)

	ctx.Reset()

	if ctx.Platform != model.PlatformTofino3 {
		t.Errorf("Reset changed platform to %s", ctx.Platform)
	}
	if ctx.Liveness.IsDown(1) || ctx.Yids.GlobalRID() != 0 || ctx.Yids.IsPortPruned(1, 1) || len(g.Members()) != 0 {
		t.Error("Reset left state behind")
	}
}

func TestSimulationContext_PruneApplies(t *testing.T) {
	ctx := NewSimulationContext(model.PlatformTofino2)
	ctx.Yids.SetGlobalRID(9)

	tests := []struct {
		packetRID, nodeRID model.RID
		want               bool
	}{
		{5, 5, true},
		{9, 5, true},
		{6, 5, false},
	}
	for _, tt := range tests {
		if got := ctx.pruneApplies(tt.packetRID, tt.nodeRID); got != tt.want {
			t.Errorf("pruneApplies(%d, %d) = %v, want %v", tt.packetRID, tt.nodeRID, got, tt.want)
		}
	}
}
