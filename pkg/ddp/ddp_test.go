package ddp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchMessageShape(t *testing.T) {
	msg := SearchMessage()
	assert.Equal(t, "SRCH * HTTP/1.1\ndevice-discovery-protocol-version:00020020\n", msg)
}

func TestWakeupMessageShape(t *testing.T) {
	msg := WakeupMessage("ABCDEF")
	assert.Equal(t, "WAKEUP * HTTP/1.1\nuser-credential:ABCDEF\nclient-type:a\nauth-type:C\ndevice-discovery-protocol-version:00020020\n", msg)
}

func TestParseResponseBasic(t *testing.T) {
	raw := "HTTP/1.1 200 Ok\n" +
		"host-id:AABBCCDDEEFF\n" +
		"host-name:Living PS4\n" +
		"host-type:PS4\n" +
		"host-request-port:997\n" +
		"running-app-titleid:CUSA00001\n" +
		"running-app-name:Some Game: Remastered\n" +
		"system-version:07020001\n"

	data, err := ParseResponse(raw)
	assert.NoError(t, err)
	assert.Equal(t, "200", data["status_code"])
	assert.Equal(t, "Ok", data["status"])
	// The value must preserve its embedded colon intact.
	assert.Equal(t, "Some Game: Remastered", data["running-app-name"])
}

func TestParseResponseSkipsEmptyLines(t *testing.T) {
	raw := "HTTP/1.1 620 Server Standby\n\nhost-id:AA\n\n"
	data, err := ParseResponse(raw)
	assert.NoError(t, err)
	assert.Equal(t, "620", data["status_code"])
	assert.Equal(t, "AA", data["host-id"])
}

func TestDecodeStatusStandbyHasNoRunningApp(t *testing.T) {
	raw := map[string]string{
		"status_code":       "620",
		"status":            "Server Standby",
		"host-id":           "AABBCCDDEEFF",
		"host-name":         "Living PS4",
		"host-type":         "PS4",
		"host-request-port": "997",
		"system-version":    "07020001",
	}
	status, err := DecodeStatus(raw)
	assert.NoError(t, err)
	assert.True(t, status.IsStandby())
	assert.Empty(t, status.RunningAppTitleID)
	assert.Empty(t, status.RunningAppName)
	assert.Equal(t, 997, status.HostRequestPort)
}

func TestParseVerb(t *testing.T) {
	v, err := ParseVerb(SearchMessage())
	assert.NoError(t, err)
	assert.Equal(t, VerbSearch, v)

	v, err = ParseVerb(WakeupMessage("x"))
	assert.NoError(t, err)
	assert.Equal(t, VerbWakeup, v)

	_, err = ParseVerb("GARBAGE * HTTP/1.1\n")
	assert.Error(t, err)
}

func TestFieldValue(t *testing.T) {
	msg := WakeupMessage("ABCDEF0123456789")
	v, ok := FieldValue(msg, "user-credential")
	assert.True(t, ok)
	assert.Equal(t, "ABCDEF0123456789", v)

	_, ok = FieldValue(msg, "not-present")
	assert.False(t, ok)
}
