package output

import "sync/atomic"

// Mode selects how commands render results: tables and tier badges for
// humans, JSON for CI pipelines consuming classify/discover/plan output.
type Mode int32

const (
	ModeText Mode = iota
	ModeJSON
)

func (m Mode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "text"
}

// The --json flag is resolved once at command setup; every helper in this
// package reads the process-wide mode from here.
var mode atomic.Int32

// SetOutputMode switches between text and JSON rendering.
func SetOutputMode(json bool) {
	if json {
		mode.Store(int32(ModeJSON))
	} else {
		mode.Store(int32(ModeText))
	}
}

// CurrentMode returns the active output mode.
func CurrentMode() Mode {
	return Mode(mode.Load())
}

// IsJSON reports whether output should be machine-readable.
func IsJSON() bool {
	return CurrentMode() == ModeJSON
}
