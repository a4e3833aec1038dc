package model

import (
	"fmt"
	"strconv"
)

// Table sizes.
const (
	NumYIDs = 288
	NumLAGs = 255
)

// RID is a replication id.
type RID uint16

// YID selects a prune list.
type YID uint16

// LagID identifies a LAG in the LAG table.
type LagID uint8

// MGID identifies a multicast group.
type MGID uint16

// XID is an optional exclusion id. The zero value is unset.
type XID struct {
	value uint16
	set   bool
}

// NoXID is the unset exclusion id.
var NoXID = XID{}

// SomeXID returns a set exclusion id.
func SomeXID(v uint16) XID {
	return XID{value: v, set: true}
}

// XIDFromPtr converts an optional pointer (as decoded from config) to an XID.
func XIDFromPtr(v *uint16) XID {
	if v == nil {
		return NoXID
	}
	return SomeXID(*v)
}

// Get returns the value and whether it is set.
func (x XID) Get() (uint16, bool) {
	return x.value, x.set
}

// IsSet reports whether the exclusion id is set.
func (x XID) IsSet() bool {
	return x.set
}

// Excludes reports whether a packet carrying packetXID is excluded from
// the branch owning this XID.
func (x XID) Excludes(packetXID uint16) bool {
	return x.set && x.value == packetXID
}

func (x XID) String() string {
	if !x.set {
		return "none"
	}
	return strconv.Itoa(int(x.value))
}

// Platform names the ASIC generation being modeled.
type Platform string

const (
	PlatformTofino  Platform = "tofino"
	PlatformTofino2 Platform = "tofino2"
	PlatformTofino3 Platform = "tofino3"
)

// DefaultPlatform is used when none is configured.
const DefaultPlatform = PlatformTofino2

// ParsePlatform validates a platform name. Empty selects DefaultPlatform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case "":
		return DefaultPlatform, nil
	case PlatformTofino, PlatformTofino2, PlatformTofino3:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform '%s'", s)
	}
}

// MixesRIDIntoLAGHash reports whether the LAG hash is XORed with the
// node RID before member selection. Only the first generation does not.
func (p Platform) MixesRIDIntoLAGHash() bool {
	return p != PlatformTofino
}
