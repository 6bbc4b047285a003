// Package template expands shell-style variable references in plan files.
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var reference = regexp.MustCompile(`\$\{([^}]+)}`)

// operators in matching order; the two-character forms come first.
var operators = []string{":-", ":?", "-", "?"}

// Expand replaces ${VAR} references in input with values from the
// environment. The Compose forms are understood:
//
//	${VAR}          empty when unset
//	${VAR:-word}    word when unset or empty
//	${VAR-word}     word when unset
//	${VAR:?msg}     error when unset or empty
//	${VAR?msg}      error when unset
func Expand(input string) (string, error) {
	return ExpandWith(input, os.LookupEnv)
}

// ExpandWith is Expand with a custom variable lookup.
func ExpandWith(input string, lookup func(string) (string, bool)) (string, error) {
	var firstErr error
	out := reference.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}
		value, err := expand(match[2:len(match)-1], lookup)
		if err != nil {
			firstErr = err
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func expand(expr string, lookup func(string) (string, bool)) (string, error) {
	name, op, operand := expr, "", ""
	for _, candidate := range operators {
		if i := strings.Index(expr, candidate); i >= 0 {
			name, op, operand = expr[:i], candidate, expr[i+len(candidate):]
			break
		}
	}
	name = strings.TrimSpace(name)
	value, set := lookup(name)

	switch op {
	case "":
		return value, nil
	case "-":
		if set {
			return value, nil
		}
		return operand, nil
	case ":-":
		if value != "" {
			return value, nil
		}
		return operand, nil
	case "?":
		if set {
			return value, nil
		}
		return "", fmt.Errorf("variable %s is not set: %s", name, operand)
	default:
		if value != "" {
			return value, nil
		}
		return "", fmt.Errorf("variable %s is not set or empty: %s", name, operand)
	}
}
