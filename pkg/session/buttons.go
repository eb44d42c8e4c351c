package session

import "github.com/ps4golib/pyps4go/pkg/frame"

// Opcode is a remote-control button opcode (spec.md §4.6).
type Opcode uint32

const (
	OpUp      Opcode = Opcode(frame.OpUp)
	OpDown    Opcode = Opcode(frame.OpDown)
	OpRight   Opcode = Opcode(frame.OpRight)
	OpLeft    Opcode = Opcode(frame.OpLeft)
	OpEnter   Opcode = Opcode(frame.OpEnter)
	OpBack    Opcode = Opcode(frame.OpBack)
	OpOption  Opcode = Opcode(frame.OpOption)
	OpPS      Opcode = Opcode(frame.OpPS)
	OpKeyOff  Opcode = Opcode(frame.OpKeyOff)
	OpCancel  Opcode = Opcode(frame.OpCancel)
	OpOpenRC  Opcode = Opcode(frame.OpOpenRC)
	OpCloseRC Opcode = Opcode(frame.OpCloseRC)
)

// PSHoldMs is the hold_ms value "ps_hold" forces (spec.md §4.6), carried
// through RemoteControl's holdMs argument to pick the 1s hold post-delay
// instead of the 0.5s tap post-delay. There is no separate wire opcode for
// the hold gesture: ps_hold and ps both send OpPS.
const PSHoldMs = 2000
