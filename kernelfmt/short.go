// Package kernelfmt renders short forms of the kernel's 128-bit ids
// for log lines, the way nestybox-libs/formatter renders a short
// container id instead of the full UUID.
package kernelfmt

import "fmt"

// Short truncates a Stringer id (any of the domain package's id
// types) to its first 8 hex characters, which is enough entropy to
// disambiguate ids within one logged test run.
func Short(id fmt.Stringer) string {
	s := id.String()
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

// ShortString truncates an already-stringified id.
func ShortString(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
