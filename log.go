package fem

import (
	"io"
	"log"
)

var logger = log.New(io.Discard, "fem: ", 0)

// SetLogger routes the package's diagnostic output (one line per non-linear
// iteration) to l.  A nil l silences it.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}
