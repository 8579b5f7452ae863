package engine

import (
	"strings"
	"testing"

	"github.com/ormasoftchile/atcmacro/pkg/dryrun"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

func TestJobFile(t *testing.T) {
	s, err := settings.LoadFile("../../testdata/settings.yaml")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	table, err := offsets.LoadFile("../../testdata/offsets.yaml")
	if err != nil {
		t.Fatalf("offsets: %v", err)
	}
	cmds, err := LoadCommandFile("../../testdata/job.nc")
	if err != nil {
		t.Fatalf("job: %v", err)
	}

	ctx := Context{CurrentTool: 2, Offsets: table}
	var programs [][]string
	for {
		m, ok := Scan(cmds, s.PerformTLSAfterHome)
		if !ok {
			break
		}
		before := len(cmds)
		cmds = Process(cmds, ctx, s)
		programs = append(programs, Texts(cmds[m.Index:m.Index+len(cmds)-before+1]))
		if m.Trigger == TriggerToolChange {
			ctx.CurrentTool = m.Arg
		}
	}
	if len(programs) != 3 {
		t.Fatalf("expansions = %d, want 3 ($H, M6 T1, M06 T03)", len(programs))
	}

	home := programs[0]
	if home[0] != "$H" || !strings.Contains(strings.Join(home, "\n"), "G91 G0 Z-12") {
		t.Errorf("home should measure T2 with its Z offset:\n%s", strings.Join(home, "\n"))
	}

	// T2 -> T1, then T1 -> T3; both succeed with the sensor behaving
	for i, want := range []int{1, 3} {
		res, err := dryrun.Run(programs[i+1], dryrun.Machine{
			CurrentTool: ctx.CurrentTool,
			Readings:    []bool{false, true, false},
		})
		if err != nil {
			t.Fatalf("program %d: %v", i+1, err)
		}
		if res.ActiveTool != want || len(res.Markers) != 0 || !res.TLSDone {
			t.Errorf("program %d: tool=T%d markers=%v tls=%v", i+1, res.ActiveTool, res.Markers, res.TLSDone)
		}
	}

	joined := strings.Join(Texts(cmds), "\n")
	for _, want := range []string{"(facing with T1, contour with T3)", "; change for contour", "G1 X40 F600", "M64 P1", "M66 P0 L0"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in expanded job", want)
		}
	}
}
