package dryrun

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	namedParam    = regexp.MustCompile(`#<\s*([A-Za-z0-9_]+)\s*>`)
	numberedParam = regexp.MustCompile(`#(\d+)`)
	operatorWord  = regexp.MustCompile(`(?i)\b(EQ|NE|GT|GE|LT|LE|AND|OR|MOD)\b`)
)

var operators = map[string]string{
	"EQ": "==", "NE": "!=", "GT": ">", "GE": ">=", "LT": "<", "LE": "<=",
	"AND": "&&", "OR": "||", "MOD": "%",
}

// Translate rewrites an O-word condition into expr syntax. Named
// parameters become named("name") calls and numbered ones param(n).
// Indirect parameters (#[...]) are not supported.
func Translate(condition string) (string, error) {
	if strings.Contains(condition, "#[") {
		return "", errors.Newf("indirect parameter in %q", condition)
	}
	s := namedParam.ReplaceAllString(condition, `named("$1")`)
	s = numberedParam.ReplaceAllString(s, `param($1)`)
	s = operatorWord.ReplaceAllStringFunc(s, func(op string) string {
		return " " + operators[strings.ToUpper(op)] + " "
	})
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " "), nil
}

// newEnv builds the expression environment over a parameter store.
func newEnv(p *params) map[string]any {
	return map[string]any{
		"named": func(name string) float64 { return p.named[strings.ToLower(name)] },
		"param": func(n int) float64 { return p.numbered[n] },
	}
}

func compile(condition string) (*vm.Program, error) {
	src, err := Translate(condition)
	if err != nil {
		return nil, err
	}
	program, err := expr.Compile(src, expr.Env(newEnv(&params{})), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compile condition %q", condition)
	}
	return program, nil
}

func evaluate(program *vm.Program, e map[string]any) (bool, error) {
	out, err := expr.Run(program, e)
	if err != nil {
		return false, errors.Wrap(err, "eval condition")
	}
	result, ok := out.(bool)
	if !ok {
		return false, errors.Newf("condition returned %T", out)
	}
	return result, nil
}
