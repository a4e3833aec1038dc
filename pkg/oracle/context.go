package oracle

import (
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// SimulationContext holds the device-wide state every replication
// decision consults.
type SimulationContext struct {
	Platform model.Platform
	Liveness *PortLiveness
	Yids     *YidTable
	Lags     *LagTable
}

// NewSimulationContext creates an empty context for platform.
func NewSimulationContext(platform model.Platform) *SimulationContext {
	return &SimulationContext{
		Platform: platform,
		Liveness: NewPortLiveness(),
		Yids:     NewYidTable(),
		Lags:     NewLagTable(),
	}
}

// Reset returns the liveness store, YID table and LAG table to their
// initial state. The platform is kept.
func (c *SimulationContext) Reset() {
	c.Liveness.Reset()
	c.Yids.Reset()
	c.Lags.Reset()
	util.WithField("platform", c.Platform).Debug("simulation context reset")
}

// pruneApplies reports whether YID pruning is in effect for a branch with
// nodeRID when the packet carries packetRID.
func (c *SimulationContext) pruneApplies(packetRID, nodeRID model.RID) bool {
	return packetRID == nodeRID || packetRID == c.Yids.GlobalRID()
}
