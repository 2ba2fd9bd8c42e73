// Package identity validates participant identifiers.
package identity

import (
	"strconv"
	"strings"
)

const suffixWidth = 3

// Validator checks participant identifiers against the course identity rules:
// a fixed prefix followed by a fixed-width numeric suffix within [Min, Max].
type Validator struct {
	Prefix string
	Min    int
	Max    int
}

// Valid reports whether id is a well-formed participant identifier. Rules are
// checked in order and the first failure decides; the id is never mutated.
func (v Validator) Valid(id string) bool {
	if !strings.HasPrefix(id, v.Prefix) {
		return false
	}
	if len(id) != len(v.Prefix)+suffixWidth {
		return false
	}
	suffix := id[len(id)-suffixWidth:]
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return false
	}
	return n >= v.Min && n <= v.Max
}

// Example returns the lowest and highest valid identifiers, for diagnostics.
func (v Validator) Example() (string, string) {
	return v.Prefix + pad3(v.Min), v.Prefix + pad3(v.Max)
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < suffixWidth {
		s = "0" + s
	}
	return s
}
