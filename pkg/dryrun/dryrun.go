// Package dryrun walks a generated program the way the controller would,
// resolving every O-word branch against scripted sensor readings. It is a
// diagnostic aid for checking which path a macro takes; it does not model
// motion.
package dryrun

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/logger"
	"github.com/ormasoftchile/atcmacro/pkg/macro"
	"github.com/ormasoftchile/atcmacro/pkg/trace"
)

// Machine is the controller state a run starts from.
type Machine struct {
	CurrentTool int
	// ToolLengthOffset seeds #5403. Zero means no offset is active.
	ToolLengthOffset float64
	// Readings are consumed in order, one per sensor sample. When they run
	// out DefaultReading is used.
	Readings       []bool
	DefaultReading bool
	// StopAtPause ends the run at the first M0 instead of continuing as an
	// operator would after a manual recovery.
	StopAtPause bool
}

// Result is what a run did.
type Result struct {
	Executed          []string
	Markers           []gcode.Message
	Pauses            int
	Stopped           bool
	ActiveTool        int
	ToolLengthApplied bool
	TLSDone           bool
	ReadingsUsed      int
}

// Status summarizes the run for traces and the CLI.
func (r *Result) Status() string {
	switch {
	case r.Stopped:
		return "stopped"
	case len(r.Markers) > 0:
		return "recovered"
	default:
		return "ok"
	}
}

// Option configures Run.
type Option func(*runner)

// WithTrace writes run events to tw.
func WithTrace(tw *trace.Writer) Option {
	return func(r *runner) { r.trace = tw }
}

// WithLogger routes debug logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}

var (
	blockLine  = regexp.MustCompile(`(?i)^o(\d+)\s+(IF|ELSE|ENDIF)\b\s*(.*)$`)
	auxSample  = regexp.MustCompile(`(?i)^M66\s+P(\d+)\s+L0\b`)
	activate   = regexp.MustCompile(`(?i)^M61\s+Q(\d+)\b`)
	assignment = regexp.MustCompile(`^#<\s*([A-Za-z0-9_]+)\s*>\s*=\s*(-?[0-9.]+)$`)
	pause      = regexp.MustCompile(`(?i)^M0*0\b`)
	lengthSet  = regexp.MustCompile(`(?i)^G43\.1\b`)
)

const tlsDoneVar = "_atc_tls_done"

type params struct {
	named    map[string]float64
	numbered map[int]float64
}

type block struct {
	label     string
	condition string
	elseAt    int
	endAt     int
	program   *vm.Program
}

type runner struct {
	lines  []string
	blocks map[int]*block // keyed by the IF line
	owner  map[int]int    // ELSE line -> IF line
	params *params
	env    map[string]any

	machine  Machine
	readings int
	result   *Result

	trace *trace.Writer
	log   *zap.Logger
}

// Run executes lines, which may be indented, and reports the path taken.
// Malformed block structure or an unparseable condition is an error; other
// instructions are recorded without interpretation.
func Run(lines []string, m Machine, opts ...Option) (*Result, error) {
	r := &runner{
		machine: m,
		params: &params{
			named:    map[string]float64{"_current_tool": float64(m.CurrentTool)},
			numbered: map[int]float64{5403: m.ToolLengthOffset},
		},
		result: &Result{ActiveTool: m.CurrentTool},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.env = newEnv(r.params)

	r.lines = make([]string, len(lines))
	for i, l := range lines {
		r.lines[i] = strings.TrimSpace(l)
	}
	if err := r.index(); err != nil {
		return nil, err
	}

	if r.trace != nil {
		_ = r.trace.EmitRunStart(len(r.lines), map[string]any{
			"tool":               m.CurrentTool,
			"tool_length_offset": m.ToolLengthOffset,
			"readings":           len(m.Readings),
		})
	}
	if err := r.exec(); err != nil {
		return nil, err
	}
	r.result.ReadingsUsed = r.readings
	if r.trace != nil {
		_ = r.trace.EmitRunComplete(r.result.Status(), map[string]any{
			"active_tool": r.result.ActiveTool,
			"markers":     len(r.result.Markers),
			"pauses":      r.result.Pauses,
			"tls_done":    r.result.TLSDone,
		})
	}
	r.log.Debug("dry run complete",
		zap.Int(logger.FieldLines, len(r.result.Executed)),
		zap.Int(logger.FieldTool, r.result.ActiveTool),
		zap.Int(logger.FieldCount, len(r.result.Markers)),
	)
	return r.result, nil
}

// index pairs every IF with its ELSE and ENDIF and compiles conditions.
func (r *runner) index() error {
	r.blocks = map[int]*block{}
	r.owner = map[int]int{}
	var stack []int
	for i, line := range r.lines {
		m := blockLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label, keyword := "o"+m[1], strings.ToUpper(m[2])
		if keyword == "IF" {
			program, err := compile(m[3])
			if err != nil {
				return errors.Wrapf(err, "line %d", i+1)
			}
			r.blocks[i] = &block{label: label, condition: m[3], elseAt: -1, endAt: -1, program: program}
			stack = append(stack, i)
			continue
		}
		if len(stack) == 0 {
			return errors.Newf("line %d: %s %s without IF", i+1, label, keyword)
		}
		open := stack[len(stack)-1]
		b := r.blocks[open]
		if b.label != label {
			return errors.Newf("line %d: %s %s closes %s", i+1, label, keyword, b.label)
		}
		if keyword == "ELSE" {
			if b.elseAt >= 0 {
				return errors.Newf("line %d: second ELSE for %s", i+1, label)
			}
			b.elseAt = i
			r.owner[i] = open
			continue
		}
		b.endAt = i
		stack = stack[:len(stack)-1]
	}
	if len(stack) > 0 {
		b := r.blocks[stack[len(stack)-1]]
		return errors.Newf("%s IF is never closed", b.label)
	}
	return nil
}

func (r *runner) exec() error {
	for pc := 0; pc < len(r.lines); {
		line := r.lines[pc]
		if b, ok := r.blocks[pc]; ok {
			taken, err := r.branch(pc, b)
			if err != nil {
				return errors.Wrapf(err, "line %d", pc+1)
			}
			switch {
			case taken:
				pc++
			case b.elseAt >= 0:
				pc = b.elseAt + 1
			default:
				pc = b.endAt + 1
			}
			continue
		}
		if open, ok := r.owner[pc]; ok {
			// reached the ELSE from the taken branch
			pc = r.blocks[open].endAt + 1
			continue
		}
		if blockLine.MatchString(line) {
			pc++
			continue
		}
		if stop := r.instruction(pc, line); stop {
			return nil
		}
		pc++
	}
	return nil
}

func (r *runner) branch(pc int, b *block) (bool, error) {
	lower := strings.ToLower(b.condition)
	if strings.Contains(lower, "_probe_state") || strings.Contains(lower, "_toolsetter_state") {
		v := r.read(pc, "state")
		r.params.named["_probe_state"] = v
		r.params.named["_toolsetter_state"] = v
	}
	taken, err := evaluate(b.program, r.env)
	if err != nil {
		return false, err
	}
	if r.trace != nil {
		_ = r.trace.EmitBranch(pc, b.label, b.condition, taken)
	}
	return taken, nil
}

// read consumes the next scripted reading and returns it as 0 or 1.
func (r *runner) read(pc int, source string) float64 {
	triggered := r.machine.DefaultReading
	if r.readings < len(r.machine.Readings) {
		triggered = r.machine.Readings[r.readings]
	}
	r.readings++
	if r.trace != nil {
		_ = r.trace.EmitSensorRead(pc, source, triggered)
	}
	if triggered {
		return 1
	}
	return 0
}

// instruction records one non-block line and applies the controller state
// changes the simulator understands. It reports whether the run stops.
func (r *runner) instruction(pc int, line string) bool {
	res := r.result
	res.Executed = append(res.Executed, line)

	if msg, ok := macro.ParseMarker(line); ok {
		res.Markers = append(res.Markers, msg)
		if r.trace != nil {
			_ = r.trace.EmitMarker(pc, msg.Namespace, msg.Code)
		}
		return false
	}
	if m := auxSample.FindStringSubmatch(line); m != nil {
		r.params.numbered[5399] = r.read(pc, "aux P"+m[1])
		return false
	}
	if m := activate.FindStringSubmatch(line); m != nil {
		tool, _ := strconv.Atoi(m[1])
		res.ActiveTool = tool
		r.params.named["_current_tool"] = float64(tool)
		if r.trace != nil {
			_ = r.trace.Emit(trace.EventToolActivated, pc, map[string]any{"tool": tool})
		}
		return false
	}
	if m := assignment.FindStringSubmatch(line); m != nil {
		v, _ := strconv.ParseFloat(m[2], 64)
		name := strings.ToLower(m[1])
		r.params.named[name] = v
		if name == tlsDoneVar && v == 1 {
			res.TLSDone = true
		}
		return false
	}
	if lengthSet.MatchString(line) {
		res.ToolLengthApplied = true
		r.params.numbered[5403] = 1
		return false
	}
	if pause.MatchString(line) {
		res.Pauses++
		if r.trace != nil {
			_ = r.trace.Emit(trace.EventPause, pc, nil)
		}
		if r.machine.StopAtPause {
			res.Stopped = true
			return true
		}
	}
	return false
}

// ParseReadings parses a list such as "1,0" or "true false" into sensor
// readings.
func ParseReadings(s string) ([]bool, error) {
	var out []bool
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		b, err := strconv.ParseBool(field)
		if err != nil {
			return nil, errors.WithHint(errors.Newf("reading %q", field), "use 1/0 or true/false")
		}
		out = append(out, b)
	}
	return out, nil
}
