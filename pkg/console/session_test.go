package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

func newTestSession(raw map[string]any) (*Session, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSession(settings.NewMemoryRepository(raw), offsets.Table{}, &buf, nil), &buf
}

func TestSession_PassThrough(t *testing.T) {
	s, buf := newTestSession(nil)
	if s.Handle("G0 X10") {
		t.Fatal("unexpected quit")
	}
	if got := buf.String(); got != "G0 X10\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSession_ToolChangeTracksTool(t *testing.T) {
	s, buf := newTestSession(nil)
	s.Handle(":tool 1")
	buf.Reset()

	s.Handle("M6 T3")
	if s.Tool != 3 {
		t.Errorf("tool = %d, want 3", s.Tool)
	}
	out := buf.String()
	if !strings.Contains(out, `# shown as "M6 T3"`) {
		t.Errorf("display note missing:\n%s", out)
	}
	if !strings.Contains(out, "(ATC T1 -> T3)") {
		t.Errorf("program missing:\n%s", out)
	}
}

func TestSession_Set(t *testing.T) {
	s, buf := newTestSession(nil)
	s.Handle(":set Pockets 3")
	if got := s.Repo.Snapshot().Pockets; got != 3 {
		t.Errorf("pockets = %d, want 3", got)
	}
	s.Handle(":set toolSensor Aux P2")
	if got := s.Repo.Snapshot().ToolSensor; got != "Aux P2" {
		t.Errorf("toolSensor = %q", got)
	}
	s.Handle(":set pocket1 {x: -10, y: 5}")
	if got := s.Repo.Snapshot().Pocket1; got != (settings.Point{X: -10, Y: 5}) {
		t.Errorf("pocket1 = %+v", got)
	}
	buf.Reset()
	s.Handle(":set nope 1")
	if !strings.Contains(buf.String(), "unknown setting") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSession_HomeFollowsSetting(t *testing.T) {
	s, buf := newTestSession(nil)
	s.Handle("$H")
	if buf.String() != "$H\n" {
		t.Errorf("home expanded while disabled: %q", buf.String())
	}
	s.Handle(":set performTlsAfterHome true")
	buf.Reset()
	s.Handle("$H")
	if !strings.Contains(buf.String(), "o100 IF") {
		t.Errorf("home guard missing:\n%s", buf.String())
	}
}

func TestSession_Simulate(t *testing.T) {
	s, buf := newTestSession(nil)
	s.Handle(":simulate")
	if !strings.Contains(buf.String(), "nothing expanded yet") {
		t.Errorf("output = %q", buf.String())
	}

	s.Handle("M6 T2")
	buf.Reset()
	s.Handle(":simulate 0")
	out := buf.String()
	if !strings.Contains(out, "status=recovered") || !strings.Contains(out, "(MSG, ATC:LOAD_FAILED)") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	s.Handle(":simulate 1 0")
	if !strings.Contains(buf.String(), "status=ok active_tool=T2") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSession_Directives(t *testing.T) {
	s, buf := newTestSession(nil)
	s.Handle(":units g20")
	if s.Units != "G20" {
		t.Errorf("units = %q", s.Units)
	}
	s.Handle(":tool x")
	if !strings.Contains(buf.String(), "invalid tool") {
		t.Errorf("output = %q", buf.String())
	}
	s.Handle(":bogus")
	if !strings.Contains(buf.String(), "Unknown directive") {
		t.Errorf("output = %q", buf.String())
	}
	if !s.Handle(":quit") {
		t.Error(":quit should end the session")
	}
}
