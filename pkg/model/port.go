// Package model defines the identifiers shared by the replication oracle:
// device ports, replication/exclusion/prune ids and port bitmaps.
package model

import (
	"fmt"
	"sort"

	"github.com/newtron-network/mcoracle/pkg/util"
)

// Device port numbering: the pipe lives above bit 7, the pipe-local port
// below it. Only the first 72 local ports of a pipe exist.
const (
	PortsPerPipe  = 72
	localPortBits = 7
	localPortMask = 1<<localPortBits - 1
	maxPortValue  = 1 << 16
	// MaxPipes is the number of pipes a 16-bit port id can address.
	MaxPipes = maxPortValue >> localPortBits
)

// Port is a device port id.
type Port uint16

// NewPort composes a device port from its pipe and pipe-local port.
func NewPort(pipe, localPort int) Port {
	return Port(pipe<<localPortBits | localPort&localPortMask)
}

// Pipe returns the pipe the port belongs to.
func (p Port) Pipe() int {
	return int(p) >> localPortBits
}

// LocalPort returns the port number within its pipe.
func (p Port) LocalPort() int {
	return int(p) & localPortMask
}

// Valid reports whether the local port is below PortsPerPipe.
func (p Port) Valid() bool {
	return p.LocalPort() < PortsPerPipe
}

// BitIndex returns the flat bitmap index of the port.
func (p Port) BitIndex() int {
	return ToBitIndex(p)
}

// ToBitIndex maps a device port to its flat bit index: pipe*72 + localPort.
func ToBitIndex(p Port) int {
	return p.Pipe()*PortsPerPipe + p.LocalPort()
}

// FromBitIndex is the inverse of ToBitIndex.
func FromBitIndex(index int) Port {
	return Port((index/PortsPerPipe)<<localPortBits | index%PortsPerPipe)
}

// PortSet returns a sorted, deduplicated copy of ports.
func PortSet(ports []Port) []Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]Port, len(ports))
	copy(out, ports)
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

// SortedPorts returns a sorted copy of ports, keeping duplicates.
func SortedPorts(ports []Port) []Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]Port, len(ports))
	copy(out, ports)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsePorts expands range notation ("1-3,130") into a sorted port set.
func ParsePorts(spec string) ([]Port, error) {
	values, err := util.ExpandRangeMax(spec, maxPortValue)
	if err != nil {
		return nil, fmt.Errorf("ports %q: %w", spec, err)
	}
	ports := make([]Port, 0, len(values))
	for _, v := range values {
		p := Port(v)
		if !p.Valid() {
			return nil, fmt.Errorf("port %d: local port %d beyond %d ports per pipe", v, p.LocalPort(), PortsPerPipe)
		}
		ports = append(ports, p)
	}
	if len(ports) == 0 {
		return nil, nil
	}
	return ports, nil
}

// FormatPorts renders ports in compact range notation.
func FormatPorts(ports []Port) string {
	values := make([]int, len(ports))
	for i, p := range ports {
		values[i] = int(p)
	}
	return util.CompactRange(values)
}
