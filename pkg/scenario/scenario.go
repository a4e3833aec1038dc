// Package scenario loads replication scenarios from YAML: device state,
// multicast trees, liveness events and the replicas each query must
// produce. A Harness builds the oracle state from a scenario and runs its
// checks.
package scenario

// Scenario is a parsed scenario file.
//
// Map keys for yids, lags and trees are decimal ids written as strings so
// YAML accepts them either quoted or bare. Port lists use range notation
// ("1-3,130").
type Scenario struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Platform    string               `yaml:"platform,omitempty"`
	GlobalRID   uint16               `yaml:"global_rid,omitempty"`
	Ports       PortsBlock           `yaml:"ports,omitempty"`
	YIDs        map[string]string    `yaml:"yids,omitempty"`
	LAGs        map[string]LAGBlock  `yaml:"lags,omitempty"`
	ECMPs       map[string]ECMPBlock `yaml:"ecmps,omitempty"`
	Trees       map[string]TreeBlock `yaml:"trees"`
	Checks      []Check              `yaml:"checks"`

	// PortMap maps STATE_DB port names to device ports for liveness sync.
	PortMap map[string]uint16 `yaml:"port_map,omitempty"`

	path string
}

// Path returns the file the scenario was parsed from.
func (s *Scenario) Path() string {
	return s.path
}

// PortsBlock is the initial port liveness state.
type PortsBlock struct {
	SWDown        string            `yaml:"sw_down,omitempty"`
	HWDown        string            `yaml:"hw_down,omitempty"`
	Backups       map[string]uint16 `yaml:"backups,omitempty"` // primary -> backup
	BackupEnabled bool              `yaml:"backup_enabled,omitempty"`
}

// LAGBlock is one LAG table entry.
type LAGBlock struct {
	Members string `yaml:"members"`
	Left    uint32 `yaml:"left,omitempty"`
	Right   uint32 `yaml:"right,omitempty"`
}

// NodeBlock is one L1 node. XID only applies to nodes owned by a tree.
type NodeBlock struct {
	RID   uint16  `yaml:"rid"`
	XID   *uint16 `yaml:"xid,omitempty"`
	Ports string  `yaml:"ports,omitempty"`
	Lags  string  `yaml:"lags,omitempty"`
}

// ECMPBlock is an ECMP group; members fill slots in order.
type ECMPBlock struct {
	Members []NodeBlock `yaml:"members"`
}

// ECMPRef associates a named ECMP group with a tree.
type ECMPRef struct {
	ECMP string  `yaml:"ecmp"`
	XID  *uint16 `yaml:"xid,omitempty"`
}

// TreeBlock is one multicast group.
type TreeBlock struct {
	Nodes []NodeBlock `yaml:"nodes,omitempty"`
	ECMPs []ECMPRef   `yaml:"ecmps,omitempty"`
}

// Check applies events, runs one query and compares the result.
// Events accumulate: later checks see the state earlier checks left.
type Check struct {
	Name   string        `yaml:"name"`
	Events []Event       `yaml:"events,omitempty"`
	Tree   uint16        `yaml:"tree"`
	Query  QueryBlock    `yaml:"query"`
	Expect []ExpectBlock `yaml:"expect"`
}

// QueryBlock describes the ingress packet.
type QueryBlock struct {
	RID   uint16 `yaml:"rid"`
	XID   uint16 `yaml:"xid"`
	YID   uint16 `yaml:"yid"`
	Hash1 uint32 `yaml:"hash1,omitempty"`
	Hash2 uint32 `yaml:"hash2,omitempty"`
}

// ExpectBlock is one expected replica.
type ExpectBlock struct {
	RID   uint16 `yaml:"rid"`
	Ports string `yaml:"ports"`
}

// Event is a state change applied before a check's query.
type Event struct {
	Action EventAction `yaml:"action"`
	Port   *uint16     `yaml:"port,omitempty"`
	Backup *uint16     `yaml:"backup,omitempty"`
	RID    *uint16     `yaml:"rid,omitempty"`
	YID    *uint16     `yaml:"yid,omitempty"`
	LAG    *uint8      `yaml:"lag,omitempty"`
	Ports  string      `yaml:"ports,omitempty"`
}

// EventAction identifies the kind of event.
type EventAction string

const (
	ActionSWPortDown       EventAction = "sw-port-down"
	ActionSWPortUp         EventAction = "sw-port-up"
	ActionHWPortDown       EventAction = "hw-port-down"
	ActionHWPortUp         EventAction = "hw-port-up"
	ActionSetBackup        EventAction = "set-backup"
	ActionClearBackup      EventAction = "clear-backup"
	ActionEnableBackups    EventAction = "enable-backups"
	ActionDisableBackups   EventAction = "disable-backups"
	ActionSetGlobalRID     EventAction = "set-global-rid"
	ActionSetPrunedPorts   EventAction = "set-pruned-ports"
	ActionLAGAddMembers    EventAction = "lag-add-members"
	ActionLAGRemoveMembers EventAction = "lag-remove-members"
)
