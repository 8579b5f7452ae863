package console

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/atcmacro/pkg/dryrun"
	"github.com/ormasoftchile/atcmacro/pkg/engine"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// Session is the state of an interactive console: the machine context the
// engine sees and the settings store the operator edits.
type Session struct {
	Repo    settings.Repository
	Offsets offsets.Provider
	Tool    int
	Units   string

	out      io.Writer
	log      *zap.Logger
	last     []string
	lastTool int
}

// NewSession returns a session writing to out.
func NewSession(repo settings.Repository, table offsets.Provider, out io.Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{Repo: repo, Offsets: table, Units: "G21", out: out, log: log}
}

// Commands lists the console directives for completion and help.
var Commands = []string{":tool", ":units", ":set", ":settings", ":simulate", ":last", ":help", ":quit"}

// Handle processes one input line. Lines starting with ':' are console
// directives; anything else is sent through the engine as an original
// command. It reports whether the session should end.
func (s *Session) Handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		s.expand(line)
		return false
	}

	parts := strings.Fields(line)
	switch parts[0] {
	case ":tool", ":t":
		if len(parts) != 2 {
			fmt.Fprintln(s.out, "usage: :tool <n>")
			break
		}
		var n int
		if _, err := fmt.Sscanf(parts[1], "%d", &n); err != nil || n < 0 {
			fmt.Fprintf(s.out, "invalid tool %q\n", parts[1])
			break
		}
		s.Tool = n
		fmt.Fprintf(s.out, "tool = T%d\n", n)
	case ":units":
		if len(parts) != 2 {
			fmt.Fprintln(s.out, "usage: :units G20|G21")
			break
		}
		s.Units = strings.ToUpper(parts[1])
		fmt.Fprintf(s.out, "units = %s\n", s.Units)
	case ":set":
		s.set(parts[1:])
	case ":settings":
		s.printSettings()
	case ":simulate", ":sim":
		s.simulate(strings.Join(parts[1:], ","))
	case ":last":
		for _, l := range s.last {
			fmt.Fprintln(s.out, l)
		}
	case ":help", ":?":
		s.help()
	case ":quit", ":q":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown directive: %q. Type ':help' for available commands.\n", parts[0])
	}
	return false
}

func (s *Session) expand(line string) {
	snap := s.Repo.Snapshot()
	cmds := []engine.Command{engine.Original(line)}
	m, ok := engine.Scan(cmds, snap.PerformTLSAfterHome)

	ctx := engine.Context{CurrentTool: s.Tool, Units: s.Units, Offsets: s.Offsets}
	out := engine.Process(cmds, ctx, snap, engine.WithLogger(s.log))
	if !ok {
		fmt.Fprintf(s.out, "%s\n", line)
		return
	}

	s.last = engine.Texts(out)
	s.lastTool = s.Tool
	for _, c := range out {
		switch {
		case c.DisplayCommand != nil:
			fmt.Fprintf(s.out, "%s\t# shown as %q\n", c.Command, *c.DisplayCommand)
		default:
			fmt.Fprintln(s.out, c.Command)
		}
	}
	if m.Trigger == engine.TriggerToolChange {
		s.Tool = m.Arg
		fmt.Fprintf(s.out, "# tool = T%d\n", s.Tool)
	}
}

func (s *Session) set(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: :set <key> <value>")
		return
	}
	key := canonicalKey(args[0])
	if key == "" {
		fmt.Fprintf(s.out, "unknown setting %q\n", args[0])
		return
	}
	var value any
	if err := yaml.Unmarshal([]byte(strings.Join(args[1:], " ")), &value); err != nil {
		fmt.Fprintf(s.out, "invalid value: %v\n", err)
		return
	}
	raw := s.Repo.Snapshot().Raw()
	raw[key] = value
	updated := s.Repo.Save(raw)
	fmt.Fprintf(s.out, "%s = %v\n", key, updated.Raw()[key])
}

func (s *Session) printSettings() {
	raw := s.Repo.Snapshot().Raw()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "%-20s %v\n", k, raw[k])
	}
}

func (s *Session) simulate(readings string) {
	if len(s.last) == 0 {
		fmt.Fprintln(s.out, "nothing expanded yet")
		return
	}
	values, err := dryrun.ParseReadings(readings)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	res, err := dryrun.Run(s.last, dryrun.Machine{CurrentTool: s.lastTool, Readings: values})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "status=%s active_tool=T%d pauses=%d readings=%d\n",
		res.Status(), res.ActiveTool, res.Pauses, res.ReadingsUsed)
	for _, m := range res.Markers {
		fmt.Fprintf(s.out, "  %s\n", m)
	}
}

func (s *Session) help() {
	fmt.Fprintln(s.out, `G-code lines are expanded as they would be on their way to the controller.
  :tool <n>           set the tool in the spindle
  :units G20|G21      set the units to restore after a macro
  :set <key> <value>  change a setting (YAML value)
  :settings           show normalized settings
  :simulate [r,...]   dry-run the last macro with sensor readings (1/0)
  :last               print the last expansion again
  :quit               leave the console`)
}

func canonicalKey(name string) string {
	for _, k := range settings.Keys {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return ""
}
