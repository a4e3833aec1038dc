// Package oracle is a software model of the switch ASIC's multicast
// replication engine. Given the configured L1 nodes, LAGs, ECMP groups,
// YID prune lists and port liveness, it computes the (RID, ports) copies
// the hardware emits for one ingress packet, bit for bit, so tests can
// compare it against packets captured from the device.
//
// All state is owned by the caller and threaded explicitly through a
// SimulationContext. Nothing here is safe for concurrent mutation; tests
// that run in parallel must each build their own context and topology.
package oracle
