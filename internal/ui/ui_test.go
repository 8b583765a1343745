package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf}

	l.Debugf("hidden %d\n", 1)
	l.Infof("page #%d ready\n", 2)
	l.Errorf("page #%d failed\n", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line printed without debug mode")
	}
	if !strings.Contains(out, "[INFO] page #2 ready") || !strings.Contains(out, "[ERROR] page #3 failed") {
		t.Errorf("unexpected output %q", out)
	}

	buf.Reset()
	l.Debug = true
	l.Debugf("shown\n")
	if buf.String() != "[DEBUG] shown\n" {
		t.Errorf("unexpected debug output %q", buf.String())
	}
}

func TestProgressHandle_Completes(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(&buf)

	h := pm.Register("pages")
	h.SetTotal(5)
	h.Update(3, 5, 2048)
	h.MarkDone()
	h.Update(4, 5, 4096)

	empty := pm.Register("empty")
	empty.MarkDone()

	pm.Close()

	if h.bar.Current() != 3 {
		t.Errorf("updates after MarkDone should be ignored, current=%d", h.bar.Current())
	}
}
