package oracle

import (
	"sort"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// YidTable holds the per-YID prune lists and the global RID register.
// It does not decide whether pruning applies; callers compare RIDs.
type YidTable struct {
	pruneLists map[model.YID][]model.Port
	globalRID  model.RID
}

// NewYidTable returns a table with empty prune lists and global RID 0.
func NewYidTable() *YidTable {
	t := &YidTable{}
	t.Reset()
	return t
}

// Reset clears every prune list and the global RID.
func (t *YidTable) Reset() {
	t.pruneLists = make(map[model.YID][]model.Port)
	t.globalRID = 0
}

// SetGlobalRID stores the global RID.
func (t *YidTable) SetGlobalRID(rid model.RID) {
	t.globalRID = rid
	util.WithField("rid", rid).Debug("global rid set")
}

// GlobalRID returns the global RID.
func (t *YidTable) GlobalRID() model.RID {
	return t.globalRID
}

// SetPrunedPorts replaces the prune list of yid.
func (t *YidTable) SetPrunedPorts(yid model.YID, ports []model.Port) error {
	if err := util.CheckRange("yid", int(yid), model.NumYIDs); err != nil {
		return err
	}
	set := model.PortSet(ports)
	if len(set) == 0 {
		delete(t.pruneLists, yid)
	} else {
		t.pruneLists[yid] = set
	}
	util.WithField("yid", yid).Debugf("prune list set to [%s]", model.FormatPorts(set))
	return nil
}

// PrunedPorts returns a copy of the prune list of yid.
func (t *YidTable) PrunedPorts(yid model.YID) []model.Port {
	list := t.pruneLists[yid]
	if len(list) == 0 {
		return nil
	}
	out := make([]model.Port, len(list))
	copy(out, list)
	return out
}

// IsPortPruned reports whether port is on the prune list of yid.
func (t *YidTable) IsPortPruned(yid model.YID, p model.Port) bool {
	list := t.pruneLists[yid]
	i := sort.Search(len(list), func(i int) bool { return list[i] >= p })
	return i < len(list) && list[i] == p
}

// PrunePorts returns ports without the members of the prune list of yid.
// Order and duplicates of the remaining ports are preserved.
func (t *YidTable) PrunePorts(yid model.YID, ports []model.Port) []model.Port {
	out := ports[:0:0]
	for _, p := range ports {
		if !t.IsPortPruned(yid, p) {
			out = append(out, p)
		}
	}
	return out
}
