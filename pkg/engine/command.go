package engine

import (
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
)

// Meta carries host-facing flags for a command entry.
type Meta struct {
	Silent bool `json:"silent,omitempty" yaml:"silent,omitempty"`
}

// Command is one entry of the command stream sent to the controller.
// Entries created by an expansion have IsOriginal false and are never
// scanned again.
type Command struct {
	Command        string  `json:"command" yaml:"command"`
	DisplayCommand *string `json:"displayCommand" yaml:"displayCommand"`
	IsOriginal     bool    `json:"isOriginal" yaml:"isOriginal"`
	Meta           Meta    `json:"meta" yaml:"meta,omitempty"`
}

// Original returns a user-authored entry.
func Original(text string) Command {
	return Command{Command: text, IsOriginal: true}
}

// Visible is the text a host shows for the entry.
func (c Command) Visible() string {
	if c.DisplayCommand != nil {
		return *c.DisplayCommand
	}
	return c.Command
}

// Texts returns the raw command text of each entry.
func Texts(commands []Command) []string {
	out := make([]string, len(commands))
	for i, c := range commands {
		out[i] = c.Command
	}
	return out
}

// Context is the machine state an expansion depends on.
type Context struct {
	// CurrentTool is the tool in the spindle: 0 for none, 99 for the probe.
	CurrentTool int
	// Units is the modal units word to restore, G20 or G21. Empty means G21.
	Units string
	// Offsets supplies per-tool offsets. Nil yields zero offsets.
	Offsets offsets.Provider
}
