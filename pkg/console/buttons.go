package console

import (
	"github.com/ps4golib/pyps4go/pkg/pyps4err"
	"github.com/ps4golib/pyps4go/pkg/session"
)

var buttonOpcodes = map[string]session.Opcode{
	"up":       session.OpUp,
	"down":     session.OpDown,
	"right":    session.OpRight,
	"left":     session.OpLeft,
	"enter":    session.OpEnter,
	"back":     session.OpBack,
	"option":   session.OpOption,
	"ps":       session.OpPS,
	"ps_hold":  session.OpPS,
	"key_off":  session.OpKeyOff,
	"cancel":   session.OpCancel,
	"open_rc":  session.OpOpenRC,
	"close_rc": session.OpCloseRC,
}

// pressHoldMs is the hold duration (ms) a button carries regardless of
// what the caller passed in, for buttons whose hold semantics are fixed
// by name (spec.md §4.6: "ps_hold maps to opcode 128 with hold_ms
// overridden to 2000"). session.RemoteControl uses this value, not the
// opcode, to pick the ps hold gesture's 1s post-delay over the tap's 0.5s.
var pressHoldMs = map[string]uint32{
	"ps_hold": session.PSHoldMs,
}

// ButtonOpcode resolves a button name to its wire opcode and effective
// hold duration.
func ButtonOpcode(name string, holdMs uint32) (session.Opcode, uint32, error) {
	op, ok := buttonOpcodes[name]
	if !ok {
		return 0, 0, pyps4err.ErrUnknownButton
	}
	if override, ok := pressHoldMs[name]; ok {
		holdMs = override
	}
	return op, holdMs, nil
}
