package oracle

import (
	"fmt"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// Query describes the ingress packet a replication is computed for.
type Query struct {
	RID   model.RID
	XID   uint16
	YID   model.YID
	Hash1 uint32 // ECMP member selection
	Hash2 uint32 // LAG member selection
}

// Replica is one copy class the tree emits: the branch RID and the ports
// that receive it.
type Replica struct {
	RID   model.RID    `json:"rid" yaml:"rid"`
	Ports []model.Port `json:"ports" yaml:"ports"`
}

type ecmpRef struct {
	group *EcmpGroup
	xid   model.XID
}

// ReplicationTree is the set of branches of one multicast group: L1 nodes
// it owns and ECMP groups it references, each with an optional XID.
type ReplicationTree struct {
	mgid  model.MGID
	nodes []*L1Node
	ecmps []ecmpRef
}

// NewReplicationTree creates an empty tree for mgid.
func NewReplicationTree(mgid model.MGID) *ReplicationTree {
	return &ReplicationTree{mgid: mgid}
}

// MGID returns the multicast group id.
func (t *ReplicationTree) MGID() model.MGID {
	return t.mgid
}

// Nodes returns the owned nodes in association order.
func (t *ReplicationTree) Nodes() []*L1Node {
	out := make([]*L1Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// EcmpCount returns the number of associated ECMP groups.
func (t *ReplicationTree) EcmpCount() int {
	return len(t.ecmps)
}

// Associate adds node to the tree with an optional XID.
func (t *ReplicationTree) Associate(node *L1Node, xid model.XID) error {
	if err := node.associate(t, xid); err != nil {
		return err
	}
	t.nodes = append(t.nodes, node)
	util.WithGroup(t.mgid).Debugf("node rid %d associated, xid %s", node.rid, xid)
	return nil
}

// Dissociate removes node from the tree.
func (t *ReplicationTree) Dissociate(node *L1Node) error {
	if err := node.dissociate(t); err != nil {
		return err
	}
	for i, n := range t.nodes {
		if n == node {
			t.nodes = append(t.nodes[:i], t.nodes[i+1:]...)
			break
		}
	}
	util.WithGroup(t.mgid).Debugf("node rid %d dissociated", node.rid)
	return nil
}

// AssociateEcmp references group from the tree with an optional XID.
func (t *ReplicationTree) AssociateEcmp(group *EcmpGroup, xid model.XID) error {
	if t.HasEcmp(group) {
		return fmt.Errorf("ecmp group already in mgid %d: %w", t.mgid, util.ErrAlreadyExists)
	}
	t.ecmps = append(t.ecmps, ecmpRef{group: group, xid: xid})
	util.WithGroup(t.mgid).Debugf("ecmp associated, xid %s", xid)
	return nil
}

// DissociateEcmp drops the reference to group.
func (t *ReplicationTree) DissociateEcmp(group *EcmpGroup) error {
	for i, ref := range t.ecmps {
		if ref.group == group {
			t.ecmps = append(t.ecmps[:i], t.ecmps[i+1:]...)
			return nil
		}
	}
	return util.NewNotFoundError(fmt.Sprintf("ecmp group in mgid %d", t.mgid), fmt.Sprintf("%p", group))
}

// HasEcmp reports whether group is associated.
func (t *ReplicationTree) HasEcmp(group *EcmpGroup) bool {
	for _, ref := range t.ecmps {
		if ref.group == group {
			return true
		}
	}
	return false
}

// GetPorts computes the copies the hardware emits for q: owned nodes
// first, in association order, then one member per ECMP group. A branch
// whose XID equals the packet XID is skipped entirely.
//
// An inconsistent topology panics.
func (t *ReplicationTree) GetPorts(ctx *SimulationContext, q Query) []Replica {
	var out []Replica
	for _, n := range t.nodes {
		if n.tree != t {
			panic(fmt.Sprintf("oracle: mgid %d holds node rid %d owned elsewhere", t.mgid, n.rid))
		}
		if n.xid.Excludes(q.XID) {
			continue
		}
		out = append(out, Replica{RID: n.rid, Ports: n.ResolvePorts(ctx, q.RID, q.XID, q.YID, q.Hash2)})
	}
	for _, ref := range t.ecmps {
		if ref.group == nil {
			panic(fmt.Sprintf("oracle: mgid %d references a nil ecmp group", t.mgid))
		}
		if ref.xid.Excludes(q.XID) {
			continue
		}
		n := ref.group.ResolveByHash(q.Hash1)
		if n == nil {
			continue
		}
		out = append(out, Replica{RID: n.rid, Ports: n.ResolvePorts(ctx, q.RID, q.XID, q.YID, q.Hash2)})
	}
	return out
}
