package oracle

import (
	"fmt"
	"strings"

	"github.com/newtron-network/mcoracle/pkg/model"
)

// Flatten returns every port of every replica, sorted, duplicates kept.
func Flatten(replicas []Replica) []model.Port {
	var ports []model.Port
	for _, r := range replicas {
		ports = append(ports, r.Ports...)
	}
	return model.SortedPorts(ports)
}

// PortCounts returns how many copies each port receives.
func PortCounts(replicas []Replica) map[model.Port]int {
	counts := make(map[model.Port]int)
	for _, r := range replicas {
		for _, p := range r.Ports {
			counts[p]++
		}
	}
	return counts
}

// ReplicaBitmap returns the bitmap of ports receiving at least one copy.
func ReplicaBitmap(replicas []Replica, width int) (*model.PortBitmap, error) {
	return model.PortBitmapOf(width, Flatten(replicas))
}

// Normalize returns replicas with each port list sorted, so lists can be
// compared without regard to LAG append order.
func Normalize(replicas []Replica) []Replica {
	out := make([]Replica, len(replicas))
	for i, r := range replicas {
		out[i] = Replica{RID: r.RID, Ports: model.SortedPorts(r.Ports)}
	}
	return out
}

// FormatReplicas renders replicas as "rid:ports" pairs.
func FormatReplicas(replicas []Replica) string {
	parts := make([]string, len(replicas))
	for i, r := range replicas {
		parts[i] = fmt.Sprintf("%d:[%s]", r.RID, joinPorts(r.Ports))
	}
	return strings.Join(parts, " ")
}

func joinPorts(ports []model.Port) string {
	s := make([]string, len(ports))
	for i, p := range ports {
		s[i] = fmt.Sprint(uint16(p))
	}
	return strings.Join(s, ",")
}
