//go:build integration

package testutil

import (
	"testing"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/statedb"
)

// StateDBClient returns a connected STATE_DB client for the test Redis,
// seeded from statedb.json. The client is closed via t.Cleanup.
func StateDBClient(t *testing.T) *statedb.Client {
	t.Helper()

	SkipIfNoRedis(t)
	SetupStateDB(t)

	c := statedb.NewClient(RedisAddr())
	if err := c.Connect(Context(t)); err != nil {
		t.Fatalf("connecting to STATE_DB: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// SeedPortMap maps the ports in statedb.json to device ports: EthernetN
// is local port N/4 on pipe 0.
func SeedPortMap() map[string]model.Port {
	return map[string]model.Port{
		"Ethernet0":  model.NewPort(0, 0),
		"Ethernet4":  model.NewPort(0, 1),
		"Ethernet8":  model.NewPort(0, 2),
		"Ethernet12": model.NewPort(0, 3),
	}
}
