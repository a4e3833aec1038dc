package scenario

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/newtron-network/mcoracle/pkg/oracle"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string           `json:"name"`
	Query    string           `json:"query"`
	Expected []oracle.Replica `json:"expected,omitempty"`
	Actual   []oracle.Replica `json:"actual,omitempty"`
	Diff     string           `json:"diff,omitempty"`
	Err      error            `json:"-"`
}

// Passed reports whether the check ran and matched.
func (r CheckResult) Passed() bool {
	return r.Err == nil && r.Diff == ""
}

// Reason describes why a check failed.
func (r CheckResult) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Diff != "":
		return "replicas differ (-want +got):\n" + r.Diff
	default:
		return ""
	}
}

// Report collects the results of a scenario run.
type Report struct {
	Scenario string        `json:"scenario"`
	Results  []CheckResult `json:"results"`
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	return r.Failed() == 0
}

// Failed returns the number of failed checks.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

// diffReplicas compares replica lists in order; port lists must already
// be sorted.
func diffReplicas(want, got []oracle.Replica) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}
