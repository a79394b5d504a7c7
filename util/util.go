package util

import "log"

// Logging turns Logf on.  The commands flip this switch with their
// '-d' or '-v' flags.
var Logging = false

// Logf forwards to log.Printf when Logging is set and otherwise does
// nothing at all.
func Logf(format string, args ...interface{}) {
	if Logging {
		log.Printf(format, args...)
	}
}
