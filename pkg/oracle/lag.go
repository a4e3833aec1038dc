package oracle

import (
	"fmt"
	"sort"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// lagHashMask is the width of the LAG hash and of the packed member count
// register.
const lagHashMask = 0x1FFF

// LagGroup is one LAG table entry: local members in hash order plus the
// number of members that live on the remote chassis to the left and right.
type LagGroup struct {
	id         model.LagID
	members    []model.Port
	leftCount  uint32
	rightCount uint32
}

func newLagGroup(id model.LagID) *LagGroup {
	return &LagGroup{id: id}
}

// ID returns the LAG id.
func (g *LagGroup) ID() model.LagID {
	return g.id
}

// Members returns a copy of the local members, sorted.
func (g *LagGroup) Members() []model.Port {
	out := make([]model.Port, len(g.members))
	copy(out, g.members)
	return out
}

// RemoteCounts returns the left and right remote member counts.
func (g *LagGroup) RemoteCounts() (left, right uint32) {
	return g.leftCount, g.rightCount
}

// SetRemoteCounts sets the remote member counts.
func (g *LagGroup) SetRemoteCounts(left, right uint32) {
	g.leftCount, g.rightCount = left, right
	util.WithLAG(g.id).Debugf("remote counts left=%d right=%d", left, right)
}

// AddMembers adds ports to the LAG. Ports already present are ignored.
func (g *LagGroup) AddMembers(ports ...model.Port) {
	g.members = model.PortSet(append(g.members, ports...))
	util.WithLAG(g.id).Debugf("members [%s]", model.FormatPorts(g.members))
}

// RemoveMembers removes ports from the LAG. If any port is not a member
// nothing is removed.
func (g *LagGroup) RemoveMembers(ports ...model.Port) error {
	for _, p := range ports {
		if !g.HasMember(p) {
			return fmt.Errorf("lag %d: %w", g.id, util.NewNotFoundError("lag member", p))
		}
	}
	drop := make(map[model.Port]struct{}, len(ports))
	for _, p := range ports {
		drop[p] = struct{}{}
	}
	kept := g.members[:0]
	for _, m := range g.members {
		if _, ok := drop[m]; !ok {
			kept = append(kept, m)
		}
	}
	g.members = kept
	util.WithLAG(g.id).Debugf("members [%s]", model.FormatPorts(g.members))
	return nil
}

// HasMember reports whether p is a local member.
func (g *LagGroup) HasMember(p model.Port) bool {
	i := sort.Search(len(g.members), func(i int) bool { return g.members[i] >= p })
	return i < len(g.members) && g.members[i] == p
}

// Reset removes every member and zeroes the remote counts.
func (g *LagGroup) Reset() {
	g.members = nil
	g.leftCount, g.rightCount = 0, 0
}

// MemberView is the two member orderings the hardware hashes over.
// Packed is every local member in table order; the hash first picks a
// slot across right-remote, Packed and left-remote members. Live is
// Packed without down ports and is used to re-pick when the packed
// choice is down.
type MemberView struct {
	Packed []model.Port
	Live   []model.Port
	Left   uint32
	Right  uint32
}

// View captures the member views of g under the given liveness.
func (g *LagGroup) View(l *PortLiveness) MemberView {
	v := MemberView{
		Packed: g.Members(),
		Left:   g.leftCount,
		Right:  g.rightCount,
	}
	for _, p := range v.Packed {
		if l.IsLive(p) {
			v.Live = append(v.Live, p)
		}
	}
	return v
}

// PackedIndex returns the slot the hash selects across all members,
// local and remote.
func (v MemberView) PackedIndex(h uint32) uint32 {
	lenPack := (v.Left + uint32(len(v.Packed)) + v.Right) & lagHashMask
	if lenPack == 0 {
		return 0
	}
	return h % lenPack
}

// LiveIndex returns the index the hash selects among live members.
func (v MemberView) LiveIndex(h uint32) int {
	if len(v.Live) == 0 {
		return 0
	}
	return int(h % uint32(len(v.Live)))
}

// Select returns the local member chosen by h, or false when h lands on
// a remote member. A down packed choice is replaced by the live re-pick
// unless every member is down.
func (v MemberView) Select(h uint32, l *PortLiveness) (model.Port, bool) {
	if len(v.Packed) == 0 {
		return 0, false
	}
	indexPack := v.PackedIndex(h)
	if indexPack < v.Right {
		return 0, false
	}
	if indexPack >= uint32(len(v.Packed))+v.Right {
		return 0, false
	}
	candidate := v.Packed[indexPack-v.Right]
	if len(v.Live) == 0 || l.IsLive(candidate) {
		return candidate, true
	}
	return v.Live[v.LiveIndex(h)], true
}

// lagHash returns the hash value member selection runs on.
func lagHash(platform model.Platform, hash uint32, nodeRID model.RID) uint32 {
	if !platform.MixesRIDIntoLAGHash() {
		return hash
	}
	return (hash ^ uint32(nodeRID)) & lagHashMask
}

// ResolveByHash returns the port a copy for a branch with nodeRID egresses
// on when it is sent to this LAG, or false when the copy goes to a remote
// member or is pruned.
func (g *LagGroup) ResolveByHash(ctx *SimulationContext, hash uint32, packetRID, nodeRID model.RID, yid model.YID) (model.Port, bool) {
	h := lagHash(ctx.Platform, hash, nodeRID)
	port, ok := g.View(ctx.Liveness).Select(h, ctx.Liveness)
	if !ok {
		return 0, false
	}
	if ctx.pruneApplies(packetRID, nodeRID) && ctx.Yids.IsPortPruned(yid, port) {
		return 0, false
	}
	return ctx.Liveness.Effective(port), true
}

// LagTable is the device LAG table, NumLAGs entries created up front.
type LagTable struct {
	groups [model.NumLAGs]*LagGroup
}

// NewLagTable creates a table of empty LAGs.
func NewLagTable() *LagTable {
	t := &LagTable{}
	for i := range t.groups {
		t.groups[i] = newLagGroup(model.LagID(i))
	}
	return t
}

// Group returns the LAG with id.
func (t *LagTable) Group(id model.LagID) (*LagGroup, error) {
	if err := util.CheckRange("lag id", int(id), model.NumLAGs); err != nil {
		return nil, err
	}
	return t.groups[id], nil
}

func (t *LagTable) mustGroup(id model.LagID) *LagGroup {
	g, err := t.Group(id)
	if err != nil {
		panic(fmt.Sprintf("oracle: %v", err))
	}
	return g
}

// Reset empties every LAG.
func (t *LagTable) Reset() {
	for _, g := range t.groups {
		g.Reset()
	}
}
