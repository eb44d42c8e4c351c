package ddp

import "fmt"

// BuildResponse renders a DDP response line ("HTTP/1.1 <status>") followed
// by key:value payload lines and the mandatory trailing version line. It
// is the server-side counterpart to BuildRequest, used by the
// credential-capture responder to answer a SRCH with a fabricated
// standby identity.
func BuildResponse(status string, payload []KV) string {
	var b []byte
	b = append(b, "HTTP/1.1 "...)
	b = append(b, status...)
	b = append(b, '\n')
	for _, kv := range payload {
		b = append(b, fmt.Sprintf("%s:%s\n", kv.Key, kv.Value)...)
	}
	b = append(b, fmt.Sprintf("device-discovery-protocol-version:%s\n", ProtocolVersion)...)
	return string(b)
}
