package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/oracle"
	"github.com/newtron-network/mcoracle/pkg/scenario"
	"github.com/newtron-network/mcoracle/pkg/settings"
	"github.com/newtron-network/mcoracle/pkg/statedb"
	"github.com/newtron-network/mcoracle/pkg/util"
)

var scenarioTestdata = filepath.Join("..", "..", "pkg", "scenario", "testdata")

func TestParsePortArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    []model.Port
		wantErr bool
	}{
		{arg: "1-3", want: []model.Port{1, 2, 3}},
		{arg: "130", want: []model.Port{130}},
		{arg: "0-1:0-1", want: []model.Port{0, 1, 128, 129}},
		{arg: "2:5", want: []model.Port{model.NewPort(2, 5)}},
		{arg: "0:72", wantErr: true},
		{arg: "72", wantErr: true},
		{arg: "x:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePortArg(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePortArg(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); !tt.wantErr && diff != "" {
				t.Errorf("parsePortArg(%q) mismatch (-want +got):\n%s", tt.arg, diff)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	defer util.SetLogLevel("info")
	for _, verbose := range []bool{false, true} {
		if err := util.SetLogLevel(logLevel(verbose)); err != nil {
			t.Errorf("SetLogLevel(logLevel(%v)) error = %v", verbose, err)
		}
	}
	if got := logLevel(true); got != "debug" {
		t.Errorf("logLevel(true) = %q, want debug", got)
	}
	if got := util.Logger.GetLevel().String(); got != "debug" {
		t.Errorf("Logger level = %q, want debug", got)
	}
}

func TestApplySetting(t *testing.T) {
	s := &settings.Settings{}
	for name, value := range map[string]string{
		"platform":  "tofino3",
		"scenarios": "/srv/scenarios",
		"redis":     "10.0.0.1:6379",
		"ssh_user":  "ops",
	} {
		if err := applySetting(s, name, value); err != nil {
			t.Fatalf("applySetting(%s) error: %v", name, err)
		}
		got, err := getSetting(s, name)
		if err != nil || got != value {
			t.Errorf("getSetting(%s) = %q, %v; want %q", name, got, err, value)
		}
	}

	if err := applySetting(s, "platform", "tofino9"); err == nil {
		t.Error("expected error for unknown platform")
	}
	if err := applySetting(s, "bogus", "x"); err == nil {
		t.Error("expected error for unknown setting")
	}
	if _, err := getSetting(s, "bogus"); err == nil {
		t.Error("expected error for unknown setting")
	}
}

func TestPrintReplicas(t *testing.T) {
	var buf bytes.Buffer
	printReplicas(&buf, []oracle.Replica{
		{RID: 5, Ports: []model.Port{1, 3, 3}},
		{RID: 6},
	})
	want := "RID  PORTS  COUNT\n" +
		"---  -----  -----\n" +
		"5    1,3,3  3\n" +
		"6    -      0\n"
	if buf.String() != want {
		t.Errorf("printReplicas:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	printReplicas(&buf, nil)
	if buf.String() != "no replicas\n" {
		t.Errorf("printReplicas(nil) = %q", buf.String())
	}
}

func TestPrintCopies(t *testing.T) {
	var buf bytes.Buffer
	printCopies(&buf, []oracle.Replica{
		{RID: 5, Ports: []model.Port{1, 3, 3}},
		{RID: 6, Ports: []model.Port{1}},
		{RID: 7, Ports: []model.Port{2}},
	})
	want := "\nports with multiple copies:\n  1 x2\n  3 x2\n"
	if buf.String() != want {
		t.Errorf("printCopies = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	printCopies(&buf, []oracle.Replica{{RID: 1, Ports: []model.Port{1, 2}}})
	if buf.Len() != 0 {
		t.Errorf("printCopies with single copies = %q, want empty", buf.String())
	}
}

func TestWidthFor(t *testing.T) {
	tests := []struct {
		name  string
		ports []model.Port
		want  int
	}{
		{"empty", nil, model.PlainBitmapWidth},
		{"pipe 3", []model.Port{model.NewPort(3, 71)}, model.PlainBitmapWidth},
		{"pipe 4", []model.Port{1, model.NewPort(4, 0)}, model.ExtendedBitmapWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := widthFor(tt.ports); got != tt.want {
				t.Errorf("widthFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadScenariosAndReport(t *testing.T) {
	cli.SetColor(false)

	scenarios, err := loadScenarios([]string{
		scenarioTestdata,
		filepath.Join(scenarioTestdata, "basic.yaml"),
	})
	if err != nil {
		t.Fatalf("loadScenarios error: %v", err)
	}
	if len(scenarios) != 3 {
		t.Fatalf("len(scenarios) = %d, want 3", len(scenarios))
	}

	var reports []*scenario.Report
	for _, s := range scenarios {
		h, err := s.Build()
		if err != nil {
			t.Fatal(err)
		}
		reports = append(reports, h.Run())
	}
	if err := summarize(reports); err != nil {
		t.Errorf("summarize() = %v", err)
	}

	var buf bytes.Buffer
	printReports(&buf, reports[:1])
	out := buf.String()
	if !strings.HasPrefix(out, reports[0].Scenario+"\n") {
		t.Errorf("report should start with the scenario name:\n%s", out)
	}
	if !strings.Contains(out, "PASS") || strings.Contains(out, "FAIL") {
		t.Errorf("unexpected report:\n%s", out)
	}

	js := reportsJSON(reports)
	if len(js) != 3 || !js[0].Results[0].Passed {
		t.Errorf("reportsJSON() = %+v", js)
	}
}

func TestLoadScenarios_Missing(t *testing.T) {
	if _, err := loadScenarios([]string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestApplyPlatform(t *testing.T) {
	prev := cfg
	defer func() { cfg = prev }()
	cfg.Platform = "tofino3"

	s := &scenario.Scenario{}
	applyPlatform(s)
	if s.Platform != "tofino3" {
		t.Errorf("Platform = %q, want tofino3", s.Platform)
	}

	s.Platform = "tofino"
	applyPlatform(s)
	if s.Platform != "tofino" {
		t.Errorf("explicit platform overwritten: %q", s.Platform)
	}
}

func TestSummarize_Failures(t *testing.T) {
	reports := []*scenario.Report{{
		Scenario: "x",
		Results:  []scenario.CheckResult{{Name: "a"}, {Name: "b", Diff: "-1 +2"}},
	}}
	err := summarize(reports)
	if err == nil || err.Error() != "1 of 2 checks failed" {
		t.Errorf("summarize() = %v", err)
	}
}

func TestPrintSyncResult(t *testing.T) {
	cli.SetColor(false)

	var buf bytes.Buffer
	printSyncResult(&buf, statedb.SyncResult{
		Up:      []model.Port{1, 2, 3},
		Missing: []string{"Ethernet8"},
	})
	want := "up:   1-3\ndown: (none)\nmissing from STATE_DB: Ethernet8\n"
	if buf.String() != want {
		t.Errorf("printSyncResult = %q, want %q", buf.String(), want)
	}
}
