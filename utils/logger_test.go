package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithLevel("warn")
	l.SetOutput(&buf)

	l.Info("[test] hidden %d", 1)
	l.Debug("[test] hidden %d", 2)
	l.Warn("[test] shown %d", 3)
	l.Error("[test] shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info/debug lines should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "[test] shown 3") || !strings.Contains(out, "[test] shown 4") {
		t.Errorf("warn/error lines missing: %q", out)
	}
}

func TestLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithLevel("chatty")
	l.SetOutput(&buf)

	l.Debug("[test] debug")
	l.Info("[test] info")

	out := buf.String()
	if strings.Contains(out, "[test] debug") {
		t.Errorf("debug should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "[test] info") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestLoggerErrorsGoToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerWithLevel("debug")
	l.SetOutputs(&out, &errOut)

	l.Info("[test] info line")
	l.Warn("[test] warn line")
	l.Error("[test] error line")

	if strings.Contains(out.String(), "error line") {
		t.Errorf("error leaked to stdout writer: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[test] error line") {
		t.Errorf("error missing from stderr writer: %q", errOut.String())
	}
	if !strings.Contains(out.String(), "[test] info line") || !strings.Contains(out.String(), "[test] warn line") {
		t.Errorf("info/warn missing from stdout writer: %q", out.String())
	}
	if strings.Contains(errOut.String(), "info line") {
		t.Errorf("info leaked to stderr writer: %q", errOut.String())
	}
}
