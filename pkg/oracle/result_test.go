package oracle

import (
	"reflect"
	"testing"

	"github.com/newtron-network/mcoracle/pkg/model"
)

func TestResultHelpers(t *testing.T) {
	replicas := []Replica{
		{RID: 1, Ports: []model.Port{3, 1}},
		{RID: 2, Ports: []model.Port{128, 1}},
	}

	if want := []model.Port{1, 1, 3, 128}; !reflect.DeepEqual(Flatten(replicas), want) {
		t.Errorf("Flatten() = %v, want %v", Flatten(replicas), want)
	}
	if want := map[model.Port]int{1: 2, 3: 1, 128: 1}; !reflect.DeepEqual(PortCounts(replicas), want) {
		t.Errorf("PortCounts() = %v, want %v", PortCounts(replicas), want)
	}

	b, err := ReplicaBitmap(replicas, model.PlainBitmapWidth)
	if err != nil {
		t.Fatal(err)
	}
	if want := []model.Port{1, 3, 128}; !reflect.DeepEqual(b.Ports(), want) {
		t.Errorf("ReplicaBitmap ports = %v, want %v", b.Ports(), want)
	}

	norm := Normalize(replicas)
	if want := []model.Port{1, 3}; !reflect.DeepEqual(norm[0].Ports, want) {
		t.Errorf("Normalize()[0] = %v, want %v", norm[0].Ports, want)
	}
	if want := []model.Port{3, 1}; !reflect.DeepEqual(replicas[0].Ports, want) {
		t.Error("Normalize modified its input")
	}

	if got, want := FormatReplicas(replicas), "1:[3,1] 2:[128,1]"; got != want {
		t.Errorf("FormatReplicas() = %q, want %q", got, want)
	}
}
