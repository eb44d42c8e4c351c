// Package ddp implements the Device Discovery Protocol: the HTTP/1.1-like
// UDP messages PS4 consoles speak on port 987 for discovery, wakeup and
// title launch.
package ddp

import (
	"fmt"
	"strconv"
	"strings"
)

// Port is the UDP port DDP speaks on, both directions.
const Port = 987

// ProtocolVersion is the value carried in every message's trailing
// device-discovery-protocol-version line.
const ProtocolVersion = "00020020"

// Verb identifies a DDP request type.
type Verb string

const (
	VerbSearch Verb = "SRCH"
	VerbWakeup Verb = "WAKEUP"
	VerbLaunch Verb = "LAUNCH"
)

// BuildRequest renders a DDP request line, its key:value payload lines (in
// the order given), and the mandatory trailing version line.
func BuildRequest(verb Verb, payload []KV) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s * HTTP/1.1\n", verb)
	for _, kv := range payload {
		fmt.Fprintf(&b, "%s:%s\n", kv.Key, kv.Value)
	}
	fmt.Fprintf(&b, "device-discovery-protocol-version:%s\n", ProtocolVersion)
	return b.String()
}

// KV is an ordered key/value pair for request payload lines; DDP responses
// are unordered maps but requests care about a stable, reproducible order.
type KV struct {
	Key   string
	Value string
}

// SearchMessage builds the SRCH discovery request. It carries no payload.
func SearchMessage() string {
	return BuildRequest(VerbSearch, nil)
}

// WakeupMessage builds the WAKEUP request that carries the captured
// credential to power on or resume a console.
func WakeupMessage(credential string) string {
	return BuildRequest(VerbWakeup, credentialPayload(credential))
}

// LaunchMessage builds the LAUNCH request sent just before opening the TCP
// control connection, to ensure the console's listener is alive.
func LaunchMessage(credential string) string {
	return BuildRequest(VerbLaunch, credentialPayload(credential))
}

func credentialPayload(credential string) []KV {
	return []KV{
		{Key: "user-credential", Value: credential},
		{Key: "client-type", Value: "a"},
		{Key: "auth-type", Value: "C"},
	}
}

// ParseResponse parses a DDP response ("HTTP/1.1 <code> <status>" followed
// by colon-delimited key:value lines) into a map. Each non-status
// line is split at the FIRST colon only, since values such as
// running-app-name may themselves contain colons. Empty lines are skipped.
func ParseResponse(raw string) (map[string]string, error) {
	data := make(map[string]string)
	lines := strings.Split(raw, "\n")
	sawStatus := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "HTTP/1.1 ") {
			rest := strings.TrimPrefix(line, "HTTP/1.1 ")
			parts := strings.SplitN(rest, " ", 2)
			code, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, fmt.Errorf("ddp: invalid status code %q: %w", parts[0], err)
			}
			data["status_code"] = strconv.Itoa(code)
			if len(parts) == 2 {
				data["status"] = parts[1]
			} else {
				data["status"] = ""
			}
			sawStatus = true
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		data[key] = value
	}
	if !sawStatus && len(data) == 0 {
		return nil, fmt.Errorf("ddp: response had no status line and no fields")
	}
	return data, nil
}

// ParseVerb determines which DDP request verb a raw datagram carries, for
// servers (the credential capture responder, the multiplexer's listener)
// that must branch on request type rather than parse a status response.
func ParseVerb(raw string) (Verb, error) {
	firstLine := raw
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		firstLine = raw[:idx]
	}
	for _, v := range []Verb{VerbSearch, VerbWakeup, VerbLaunch} {
		if strings.HasPrefix(firstLine, string(v)+" ") {
			return v, nil
		}
	}
	return "", fmt.Errorf("ddp: unrecognized request verb in %q", firstLine)
}

// FieldValue extracts a single key's value out of a raw request's payload
// lines without fully parsing it as a response (used by the credential
// server to pull user-credential out of a WAKEUP datagram).
func FieldValue(raw, key string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		if strings.TrimSpace(line[:idx]) == key {
			return strings.TrimSpace(line[idx+1:]), true
		}
	}
	return "", false
}
