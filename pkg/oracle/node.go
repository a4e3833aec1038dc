package oracle

import (
	"fmt"
	"sort"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// L1Node is one replication branch: an RID, the ports it copies to and
// the LAGs it sends one copy into each. The XID is recorded when the node
// is associated with a tree.
type L1Node struct {
	rid   model.RID
	xid   model.XID
	ports []model.Port
	lags  []model.LagID

	tree *ReplicationTree
	ecmp *EcmpGroup
}

// NewL1Node creates a free node.
func NewL1Node(rid model.RID, ports []model.Port, lags []model.LagID) (*L1Node, error) {
	n := &L1Node{rid: rid, ports: model.PortSet(ports)}
	if err := n.SetLags(lags); err != nil {
		return nil, err
	}
	return n, nil
}

// RID returns the replication id.
func (n *L1Node) RID() model.RID {
	return n.rid
}

// XID returns the exclusion id recorded at association.
func (n *L1Node) XID() model.XID {
	return n.xid
}

// Tree returns the owning tree, or nil.
func (n *L1Node) Tree() *ReplicationTree {
	return n.tree
}

// Ports returns a copy of the member ports, sorted.
func (n *L1Node) Ports() []model.Port {
	out := make([]model.Port, len(n.ports))
	copy(out, n.ports)
	return out
}

// Lags returns a copy of the member LAG ids, sorted.
func (n *L1Node) Lags() []model.LagID {
	out := make([]model.LagID, len(n.lags))
	copy(out, n.lags)
	return out
}

// AddPorts adds member ports.
func (n *L1Node) AddPorts(ports ...model.Port) {
	n.ports = model.PortSet(append(n.Ports(), ports...))
}

// SetPorts replaces the member ports.
func (n *L1Node) SetPorts(ports []model.Port) {
	n.ports = model.PortSet(ports)
}

// RemovePorts removes member ports. If any is absent nothing is removed.
func (n *L1Node) RemovePorts(ports ...model.Port) error {
	drop := make(map[model.Port]struct{}, len(ports))
	for _, p := range ports {
		if !containsPort(n.ports, p) {
			return util.NewNotFoundError("node port", p)
		}
		drop[p] = struct{}{}
	}
	var kept []model.Port
	for _, p := range n.ports {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	n.ports = kept
	return nil
}

// AddLags adds member LAGs.
func (n *L1Node) AddLags(lags ...model.LagID) error {
	return n.SetLags(append(n.Lags(), lags...))
}

// SetLags replaces the member LAGs.
func (n *L1Node) SetLags(lags []model.LagID) error {
	for _, id := range lags {
		if err := util.CheckRange("lag id", int(id), model.NumLAGs); err != nil {
			return err
		}
	}
	n.lags = lagSet(lags)
	return nil
}

// RemoveLags removes member LAGs. If any is absent nothing is removed.
func (n *L1Node) RemoveLags(lags ...model.LagID) error {
	drop := make(map[model.LagID]struct{}, len(lags))
	for _, id := range lags {
		if _, ok := indexLag(n.lags, id); !ok {
			return util.NewNotFoundError("node lag", id)
		}
		drop[id] = struct{}{}
	}
	var kept []model.LagID
	for _, id := range n.lags {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	n.lags = kept
	return nil
}

func (n *L1Node) associate(tree *ReplicationTree, xid model.XID) error {
	if n.tree != nil {
		return fmt.Errorf("node rid %d already in mgid %d: %w", n.rid, n.tree.mgid, util.ErrAlreadyExists)
	}
	if n.ecmp != nil {
		return fmt.Errorf("node rid %d is an ecmp member: %w", n.rid, util.ErrInvalidConfig)
	}
	n.tree = tree
	n.xid = xid
	return nil
}

func (n *L1Node) dissociate(tree *ReplicationTree) error {
	if n.tree != tree {
		return util.NewNotFoundError(fmt.Sprintf("node in mgid %d", tree.mgid), n.rid)
	}
	n.tree = nil
	n.xid = model.NoXID
	return nil
}

// ResolvePorts returns the ports this branch copies a packet to. Ports are
// pruned when the RID condition holds, down ports are replaced by their
// backups, then one port per member LAG is appended. Duplicates are kept.
func (n *L1Node) ResolvePorts(ctx *SimulationContext, packetRID model.RID, packetXID uint16, packetYID model.YID, hash2 uint32) []model.Port {
	ports := n.Ports()
	if ctx.pruneApplies(packetRID, n.rid) {
		ports = ctx.Yids.PrunePorts(packetYID, ports)
	}
	for i, p := range ports {
		ports[i] = ctx.Liveness.Effective(p)
	}
	for _, id := range n.lags {
		if p, ok := ctx.Lags.mustGroup(id).ResolveByHash(ctx, hash2, packetRID, n.rid, packetYID); ok {
			ports = append(ports, p)
		}
	}
	return ports
}

func containsPort(sorted []model.Port, p model.Port) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= p })
	return i < len(sorted) && sorted[i] == p
}

func lagSet(lags []model.LagID) []model.LagID {
	if len(lags) == 0 {
		return nil
	}
	out := make([]model.LagID, len(lags))
	copy(out, lags)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

func indexLag(sorted []model.LagID, id model.LagID) (int, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= id })
	return i, i < len(sorted) && sorted[i] == id
}
