package oracle

import (
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// EcmpGroupSize is the number of member slots in an ECMP group.
const EcmpGroupSize = 32

// EcmpGroup selects one of up to 32 L1 nodes per packet. Slot identity is
// stable across adds and removes; new members take the first empty slot.
type EcmpGroup struct {
	slots [EcmpGroupSize]*L1Node
}

// NewEcmpGroup creates an empty group.
func NewEcmpGroup() *EcmpGroup {
	return &EcmpGroup{}
}

// AddMember creates a node and places it in the first empty slot.
func (g *EcmpGroup) AddMember(rid model.RID, ports []model.Port, lags []model.LagID) (int, error) {
	slot := -1
	for i, n := range g.slots {
		if n == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, util.NewCapacityError("ecmp group", EcmpGroupSize)
	}
	n, err := NewL1Node(rid, ports, lags)
	if err != nil {
		return 0, err
	}
	n.ecmp = g
	g.slots[slot] = n
	util.WithFields(map[string]interface{}{"slot": slot, "rid": rid}).Debug("ecmp member added")
	return slot, nil
}

// RemoveMember clears slot.
func (g *EcmpGroup) RemoveMember(slot int) error {
	if err := util.CheckRange("ecmp slot", slot, EcmpGroupSize); err != nil {
		return err
	}
	if g.slots[slot] == nil {
		return util.NewNotFoundError("ecmp member in slot", slot)
	}
	g.slots[slot].ecmp = nil
	g.slots[slot] = nil
	util.WithField("slot", slot).Debug("ecmp member removed")
	return nil
}

// Member returns the node in slot, or nil when the slot is empty or out
// of range.
func (g *EcmpGroup) Member(slot int) *L1Node {
	if slot < 0 || slot >= EcmpGroupSize {
		return nil
	}
	return g.slots[slot]
}

// Len returns the number of occupied slots.
func (g *EcmpGroup) Len() int {
	n := 0
	for _, m := range g.slots {
		if m != nil {
			n++
		}
	}
	return n
}

// OccupiedSlots returns the occupied slot indexes in order.
func (g *EcmpGroup) OccupiedSlots() []int {
	var slots []int
	for i, m := range g.slots {
		if m != nil {
			slots = append(slots, i)
		}
	}
	return slots
}

// ResolveByHash picks the member for hash1: the slot hash1 addresses
// directly when occupied, otherwise the occupied slot at the position
// hash1 selects among occupied slots. Returns nil for an empty group.
func (g *EcmpGroup) ResolveByHash(hash1 uint32) *L1Node {
	liveCount := uint32(g.Len())
	idx1 := hash1 % EcmpGroupSize
	idx2 := idx1
	if liveCount != 0 {
		idx2 = hash1 % liveCount
	}

	if n := g.slots[idx1]; n != nil {
		return n
	}
	var pos uint32
	for _, n := range g.slots {
		if n == nil {
			continue
		}
		if pos == idx2 {
			return n
		}
		pos++
	}
	return nil
}
