package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps4golib/pyps4go/pkg/pyps4err"
	"github.com/ps4golib/pyps4go/pkg/session"
)

func TestButtonOpcodeKnownButtons(t *testing.T) {
	cases := []struct {
		name   string
		op     session.Opcode
		holdMs uint32
	}{
		{"up", session.OpUp, 0},
		{"down", session.OpDown, 0},
		{"right", session.OpRight, 0},
		{"left", session.OpLeft, 0},
		{"enter", session.OpEnter, 0},
		{"back", session.OpBack, 0},
		{"option", session.OpOption, 0},
		{"ps", session.OpPS, 0},
		{"key_off", session.OpKeyOff, 0},
		{"cancel", session.OpCancel, 0},
		{"open_rc", session.OpOpenRC, 0},
		{"close_rc", session.OpCloseRC, 0},
	}
	for _, tc := range cases {
		op, holdMs, err := ButtonOpcode(tc.name, 0)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.op, op, tc.name)
		assert.Equal(t, tc.holdMs, holdMs, tc.name)
	}
}

func TestButtonOpcodePSHoldOverridesHoldMs(t *testing.T) {
	op, holdMs, err := ButtonOpcode("ps_hold", 0)
	require.NoError(t, err)
	assert.Equal(t, session.OpPS, op)
	assert.Equal(t, session.PSHoldMs, holdMs)

	// Even if a caller passes a non-zero holdMs for a tap, ps_hold still
	// forces 2000.
	_, holdMs, err = ButtonOpcode("ps_hold", 10)
	require.NoError(t, err)
	assert.Equal(t, session.PSHoldMs, holdMs)
}

func TestButtonOpcodeUnknownButton(t *testing.T) {
	_, _, err := ButtonOpcode("triangle", 0)
	assert.ErrorIs(t, err, pyps4err.ErrUnknownButton)
}
