// Package console is an interactive front end for the macro engine: type
// G-code, see what the controller would receive.
package console

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
)

// Run reads lines until :quit, EOF or interrupt.
func Run(s *Session) error {
	completer := readline.NewPrefixCompleter()
	for _, cmd := range Commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}
	for _, trigger := range []string{"$H", "$TLS", "$POCKET", "M6 T"} {
		completer.Children = append(completer.Children, readline.PcItem(trigger))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(s),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return errors.Wrap(err, "init readline")
	}
	defer rl.Close()
	s.out = rl.Stdout()

	fmt.Fprintf(s.out, "atcmacro console, %d pockets, sensor %s\n", s.Repo.Snapshot().Pockets, s.Repo.Snapshot().ToolSensor)
	fmt.Fprintf(s.out, "Type ':help' for available commands.\n\n")

	for {
		rl.SetPrompt(prompt(s))
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if s.Handle(line) {
			return nil
		}
	}
}

func prompt(s *Session) string {
	return fmt.Sprintf("atc[T%d %s]> ", s.Tool, s.Units)
}
