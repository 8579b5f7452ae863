package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Trigger identifies a recognized token.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerHome
	TriggerTLS
	TriggerPocket
	TriggerToolChange
)

func (t Trigger) String() string {
	switch t {
	case TriggerHome:
		return "home"
	case TriggerTLS:
		return "tls"
	case TriggerPocket:
		return "pocket"
	case TriggerToolChange:
		return "toolchange"
	default:
		return "none"
	}
}

// Match is a trigger found in a command stream.
type Match struct {
	Index   int
	Trigger Trigger
	// Arg is the tool number for a tool change and the pocket for a pocket
	// move.
	Arg int
}

var (
	homeToken   = regexp.MustCompile(`(?i)^\$H$`)
	tlsToken    = regexp.MustCompile(`(?i)^\$TLS$`)
	pocketToken = regexp.MustCompile(`(?i)^\$POCKET(?:\s*\[?\s*(\d+)\s*\]?)?$`)
	toolChange  = regexp.MustCompile(`(?i)(?:^|\s)(?:M0*6\s*T(\d+)|T(\d+)\s*M0*6)(?:\s|$)`)

	inlineComment = regexp.MustCompile(`\([^)]*\)`)
)

// code strips comments from a command. Lines that are entirely a comment
// come back empty.
func code(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") || strings.HasPrefix(text, ";") {
		return ""
	}
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(inlineComment.ReplaceAllString(text, " "))
}

// classify reports which trigger, if any, a single command carries.
func classify(text string) (Trigger, int) {
	c := code(text)
	if c == "" {
		return TriggerNone, 0
	}
	switch {
	case homeToken.MatchString(c):
		return TriggerHome, 0
	case tlsToken.MatchString(c):
		return TriggerTLS, 0
	}
	if m := pocketToken.FindStringSubmatch(c); m != nil {
		pocket := 1
		if m[1] != "" {
			pocket = atoi(m[1])
		}
		return TriggerPocket, pocket
	}
	if m := toolChange.FindStringSubmatch(c); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		return TriggerToolChange, atoi(n)
	}
	return TriggerNone, 0
}

func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// only overflow gets here; treat as an out-of-magazine tool
		return 1<<31 - 1
	}
	return n
}

// Scan finds the trigger to expand. Triggers are ranked home, TLS, pocket,
// tool change; within one rank the earliest entry wins. Only original
// entries are eligible, and home only when homeEnabled is set.
func Scan(commands []Command, homeEnabled bool) (Match, bool) {
	best := Match{Index: -1}
	for i, c := range commands {
		if !c.IsOriginal {
			continue
		}
		trigger, arg := classify(c.Command)
		if trigger == TriggerNone || (trigger == TriggerHome && !homeEnabled) {
			continue
		}
		if best.Index < 0 || trigger < best.Trigger {
			best = Match{Index: i, Trigger: trigger, Arg: arg}
		}
	}
	return best, best.Index >= 0
}
