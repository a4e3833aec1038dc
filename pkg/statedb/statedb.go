// Package statedb reads port operational state from a SONiC STATE_DB
// (Redis DB 6) and feeds it into the oracle's hardware liveness.
package statedb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"
)

// StateDBIndex is the Redis database number of STATE_DB.
const StateDBIndex = 6

const portTable = "PORT_TABLE"

// PortStateEntry represents interface operational state from PORT_TABLE
type PortStateEntry struct {
	AdminStatus string `json:"admin_status,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
	Speed       string `json:"speed,omitempty"`
	MTU         string `json:"mtu,omitempty"`
}

// Client reads STATE_DB tables.
type Client struct {
	client *redis.Client
}

// NewClient creates a STATE_DB client for the Redis server at addr.
func NewClient(addr string) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   StateDBIndex,
		}),
	}
}

// Connect tests the connection
func (c *Client) Connect(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection
func (c *Client) Close() error {
	return c.client.Close()
}

// GetEntry reads a single STATE_DB entry as raw map[string]string.
// Returns (nil, nil) if the entry does not exist.
func (c *Client) GetEntry(ctx context.Context, table, key string) (map[string]string, error) {
	vals, err := c.client.HGetAll(ctx, table+"|"+key).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals, nil
}

// PortStates reads every PORT_TABLE entry keyed by port name.
func (c *Client) PortStates(ctx context.Context) (map[string]PortStateEntry, error) {
	keys, err := scanKeys(ctx, c.client, portTable+"|*", 100)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", portTable, err)
	}
	sort.Strings(keys)

	states := make(map[string]PortStateEntry, len(keys))
	for _, key := range keys {
		vals, err := c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		name := strings.TrimPrefix(key, portTable+"|")
		states[name] = PortStateEntry{
			AdminStatus: vals["admin_status"],
			OperStatus:  vals["oper_status"],
			Speed:       vals["speed"],
			MTU:         vals["mtu"],
		}
	}
	return states, nil
}

// PortOperStatus returns oper_status for every port in PORT_TABLE.
func (c *Client) PortOperStatus(ctx context.Context) (map[string]string, error) {
	states, err := c.PortStates(ctx)
	if err != nil {
		return nil, err
	}
	status := make(map[string]string, len(states))
	for name, s := range states {
		status[name] = s.OperStatus
	}
	return status, nil
}

// scanKeys collects keys matching pattern with cursor-based SCAN.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, nextCursor, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
