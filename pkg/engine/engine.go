// Package engine scans a command stream for trigger tokens and splices the
// generated macro in place of the first one found.
package engine

import (
	"go.uber.org/zap"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/logger"
	"github.com/ormasoftchile/atcmacro/pkg/macro"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

type options struct {
	log *zap.Logger
}

// Option configures Process.
type Option func(*options)

// WithLogger routes expansion logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Process returns commands with at most one trigger expanded. The input
// slice is not modified. Entries that are not expanded keep their order
// and content.
func Process(commands []Command, ctx Context, s settings.Settings, opts ...Option) []Command {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]Command, len(commands))
	copy(out, commands)

	m, ok := Scan(commands, s.PerformTLSAfterHome)
	if !ok {
		return out
	}

	lines := Expand(m, ctx, s)
	o.log.Debug("expanding trigger",
		zap.String(logger.FieldTrigger, m.Trigger.String()),
		zap.String(logger.FieldCommand, commands[m.Index].Command),
		zap.Int(logger.FieldIndex, m.Index),
		zap.Int(logger.FieldLines, len(lines)),
	)

	expanded := Splice(commands[m.Index], lines, s.ShowMacroCommand)
	result := make([]Command, 0, len(commands)-1+len(expanded))
	result = append(result, out[:m.Index]...)
	result = append(result, expanded...)
	return append(result, out[m.Index+1:]...)
}

// Expand builds and formats the program for a match.
func Expand(m Match, ctx Context, s settings.Settings) []string {
	var nodes []gcode.Node
	switch m.Trigger {
	case TriggerHome:
		nodes = macro.BuildHome(s, ctx.CurrentTool, ctx.Offsets, ctx.Units)
	case TriggerTLS:
		nodes = macro.BuildTLS(s, ctx.CurrentTool, ctx.Offsets, ctx.Units)
	case TriggerPocket:
		nodes = macro.BuildPocketMove(s, m.Arg, ctx.Units)
	case TriggerToolChange:
		nodes = macro.BuildToolChange(s, ctx.CurrentTool, m.Arg, ctx.Offsets, ctx.Units).Nodes()
	}
	return gcode.Render(nodes)
}

// Splice turns program lines into synthetic entries replacing original.
// With the macro hidden, the first entry shows the original's text and the
// rest are silent; with it shown, every line is displayed as sent.
func Splice(original Command, lines []string, showMacro bool) []Command {
	out := make([]Command, len(lines))
	for i, line := range lines {
		c := Command{Command: line}
		if !showMacro {
			if i == 0 {
				visible := original.Visible()
				c.DisplayCommand = &visible
			} else {
				c.Meta.Silent = true
			}
		}
		out[i] = c
	}
	return out
}
