package oracle

import (
	"fmt"
	"sort"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// NodeHandle identifies a free-standing L1 node in a Topology.
type NodeHandle uint32

// EcmpHandle identifies an ECMP group in a Topology.
type EcmpHandle uint32

// Topology is the registry of trees, nodes and ECMP groups a test builds,
// addressed by typed handles the way the driver returns them.
type Topology struct {
	nextNode NodeHandle
	nextEcmp EcmpHandle
	nodes    map[NodeHandle]*L1Node
	ecmps    map[EcmpHandle]*EcmpGroup
	trees    map[model.MGID]*ReplicationTree
}

// NewTopology returns an empty registry.
func NewTopology() *Topology {
	t := &Topology{}
	t.Reset()
	return t
}

// Reset drops every tree, node and group.
func (t *Topology) Reset() {
	t.nextNode = 1
	t.nextEcmp = 1
	t.nodes = make(map[NodeHandle]*L1Node)
	t.ecmps = make(map[EcmpHandle]*EcmpGroup)
	t.trees = make(map[model.MGID]*ReplicationTree)
}

// CreateTree creates the tree for mgid.
func (t *Topology) CreateTree(mgid model.MGID) (*ReplicationTree, error) {
	if _, ok := t.trees[mgid]; ok {
		return nil, fmt.Errorf("mgid %d: %w", mgid, util.ErrAlreadyExists)
	}
	tree := NewReplicationTree(mgid)
	t.trees[mgid] = tree
	util.WithGroup(mgid).Debug("tree created")
	return tree, nil
}

// Tree returns the tree for mgid.
func (t *Topology) Tree(mgid model.MGID) (*ReplicationTree, error) {
	tree, ok := t.trees[mgid]
	if !ok {
		return nil, util.NewNotFoundError("mgid", mgid)
	}
	return tree, nil
}

// Trees returns the ids of every tree, sorted.
func (t *Topology) Trees() []model.MGID {
	ids := make([]model.MGID, 0, len(t.trees))
	for id := range t.trees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DestroyTree removes the tree for mgid. Its nodes become free and its
// ECMP references are dropped.
func (t *Topology) DestroyTree(mgid model.MGID) error {
	tree, err := t.Tree(mgid)
	if err != nil {
		return err
	}
	for _, n := range tree.Nodes() {
		if err := tree.Dissociate(n); err != nil {
			return err
		}
	}
	tree.ecmps = nil
	delete(t.trees, mgid)
	util.WithGroup(mgid).Debug("tree destroyed")
	return nil
}

// CreateNode creates a free L1 node.
func (t *Topology) CreateNode(rid model.RID, ports []model.Port, lags []model.LagID) (NodeHandle, error) {
	n, err := NewL1Node(rid, ports, lags)
	if err != nil {
		return 0, err
	}
	h := t.nextNode
	t.nextNode++
	t.nodes[h] = n
	return h, nil
}

// Node returns the node for h.
func (t *Topology) Node(h NodeHandle) (*L1Node, error) {
	n, ok := t.nodes[h]
	if !ok {
		return nil, util.NewNotFoundError("node handle", h)
	}
	return n, nil
}

// DestroyNode dissociates the node from its tree, if any, and removes it.
func (t *Topology) DestroyNode(h NodeHandle) error {
	n, err := t.Node(h)
	if err != nil {
		return err
	}
	if n.tree != nil {
		if err := n.tree.Dissociate(n); err != nil {
			return err
		}
	}
	delete(t.nodes, h)
	return nil
}

// AssociateNode adds node h to the tree of mgid.
func (t *Topology) AssociateNode(mgid model.MGID, h NodeHandle, xid model.XID) error {
	tree, err := t.Tree(mgid)
	if err != nil {
		return err
	}
	n, err := t.Node(h)
	if err != nil {
		return err
	}
	return tree.Associate(n, xid)
}

// DissociateNode removes node h from the tree of mgid.
func (t *Topology) DissociateNode(mgid model.MGID, h NodeHandle) error {
	tree, err := t.Tree(mgid)
	if err != nil {
		return err
	}
	n, err := t.Node(h)
	if err != nil {
		return err
	}
	return tree.Dissociate(n)
}

// CreateEcmp creates an empty ECMP group.
func (t *Topology) CreateEcmp() EcmpHandle {
	h := t.nextEcmp
	t.nextEcmp++
	t.ecmps[h] = NewEcmpGroup()
	return h
}

// Ecmp returns the group for h.
func (t *Topology) Ecmp(h EcmpHandle) (*EcmpGroup, error) {
	g, ok := t.ecmps[h]
	if !ok {
		return nil, util.NewNotFoundError("ecmp handle", h)
	}
	return g, nil
}

// DestroyEcmp removes group h. Groups still referenced by a tree cannot
// be destroyed.
func (t *Topology) DestroyEcmp(h EcmpHandle) error {
	g, err := t.Ecmp(h)
	if err != nil {
		return err
	}
	var users []string
	for _, mgid := range t.Trees() {
		if t.trees[mgid].HasEcmp(g) {
			users = append(users, fmt.Sprintf("mgid %d", mgid))
		}
	}
	if len(users) > 0 {
		return util.NewInUseError(fmt.Sprintf("ecmp %d", h), users...)
	}
	delete(t.ecmps, h)
	return nil
}

// AssociateEcmp references group h from the tree of mgid.
func (t *Topology) AssociateEcmp(mgid model.MGID, h EcmpHandle, xid model.XID) error {
	tree, err := t.Tree(mgid)
	if err != nil {
		return err
	}
	g, err := t.Ecmp(h)
	if err != nil {
		return err
	}
	return tree.AssociateEcmp(g, xid)
}

// DissociateEcmp drops the reference to group h from the tree of mgid.
func (t *Topology) DissociateEcmp(mgid model.MGID, h EcmpHandle) error {
	tree, err := t.Tree(mgid)
	if err != nil {
		return err
	}
	g, err := t.Ecmp(h)
	if err != nil {
		return err
	}
	return tree.DissociateEcmp(g)
}

// GetPorts runs the query against the tree of mgid.
func (t *Topology) GetPorts(ctx *SimulationContext, mgid model.MGID, q Query) ([]Replica, error) {
	tree, err := t.Tree(mgid)
	if err != nil {
		return nil, err
	}
	return tree.GetPorts(ctx, q), nil
}
