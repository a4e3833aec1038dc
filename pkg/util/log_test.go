package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// saveLoggerState saves the current logger state for restoration
func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

// restoreLoggerState restores the logger to its previous state
func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLogLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestSetJSONFormat(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetJSONFormat()

	WithGroup(100).Info("test json")

	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Fatalf("Expected JSON output starting with '{', got: %s", output)
	}
	if !strings.Contains(output, `"mgid":100`) {
		t.Errorf("Expected mgid field in output: %s", output)
	}
}

func TestContextHelpers(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)

	WithLAG(7).Info("lag")
	WithScenario("failover").Info("scenario")
	WithFields(map[string]interface{}{"rid": 5, "yid": 2}).Info("fields")

	output := buf.String()
	for _, want := range []string{"lag=7", "scenario=failover", "rid=5", "yid=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output: %s", want, output)
		}
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel("info")

	Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output at info level, got: %s", buf.String())
	}

	SetLogLevel("debug")
	Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("Expected debug output, got: %s", buf.String())
	}
}

func TestLevels(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)

	Info("info message")
	Infof("info %d", 1)
	Warn("warn message")
	Warnf("warn %d", 2)
	Error("error message")
	Errorf("error %d", 3)

	if got := strings.Count(buf.String(), "\n"); got != 6 {
		t.Errorf("Expected 6 log lines, got %d: %s", got, buf.String())
	}
}
