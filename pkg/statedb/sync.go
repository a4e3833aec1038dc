package statedb

import (
	"context"
	"sort"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// OperStatusUp is the PORT_TABLE oper_status of a live port.
const OperStatusUp = "up"

// HWLiveness receives hardware link state.
type HWLiveness interface {
	HWPortDown(p model.Port)
	HWPortUp(p model.Port)
}

// SyncResult summarizes one liveness sync.
type SyncResult struct {
	Up      []model.Port `json:"up,omitempty"`
	Down    []model.Port `json:"down,omitempty"`
	Unknown []string     `json:"unknown,omitempty"` // in STATE_DB, not in the port map
	Missing []string     `json:"missing,omitempty"` // in the port map, not in STATE_DB
}

// ApplyOperStatus marks mapped ports hardware-down unless their oper_status
// is "up". Ports absent from statuses are left unchanged.
func ApplyOperStatus(l HWLiveness, portMap map[string]model.Port, statuses map[string]string) SyncResult {
	var res SyncResult

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		port, ok := portMap[name]
		if !ok {
			res.Unknown = append(res.Unknown, name)
			util.WithField("port", name).Debug("STATE_DB port not in port map, skipping")
			continue
		}
		if statuses[name] == OperStatusUp {
			l.HWPortUp(port)
			res.Up = append(res.Up, port)
		} else {
			l.HWPortDown(port)
			res.Down = append(res.Down, port)
		}
	}

	for name := range portMap {
		if _, ok := statuses[name]; !ok {
			res.Missing = append(res.Missing, name)
		}
	}
	sort.Strings(res.Missing)
	for _, name := range res.Missing {
		util.WithField("port", name).Warn("mapped port missing from STATE_DB")
	}

	res.Up = model.SortedPorts(res.Up)
	res.Down = model.SortedPorts(res.Down)
	return res
}

// SyncLiveness reads PORT_TABLE and applies it to l.
func SyncLiveness(ctx context.Context, c *Client, l HWLiveness, portMap map[string]model.Port) (SyncResult, error) {
	statuses, err := c.PortOperStatus(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	res := ApplyOperStatus(l, portMap, statuses)
	util.WithFields(map[string]interface{}{
		"up":      len(res.Up),
		"down":    len(res.Down),
		"unknown": len(res.Unknown),
		"missing": len(res.Missing),
	}).Info("synced port liveness from STATE_DB")
	return res, nil
}
