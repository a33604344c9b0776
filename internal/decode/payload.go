package decode

import (
	"encoding/base64"
	"strings"
)

const programDataMarker = "Program data: "

// Payload is one candidate event extracted from a transaction's log output.
type Payload struct {
	Discriminator [8]byte
	Body          []byte
}

// ExtractPayloads scans transaction log lines for the program data marker and
// base64-decodes the token that follows it. Lines without the marker, with no
// token, or decoding to fewer than 8 bytes are dropped; most log lines are
// unrelated diagnostic output. Line order is preserved, which reflects
// instruction order within the transaction.
func ExtractPayloads(logLines []string) []Payload {
	var payloads []Payload
	for _, line := range logLines {
		idx := strings.Index(line, programDataMarker)
		if idx < 0 {
			continue
		}

		fields := strings.Fields(line[idx+len(programDataMarker):])
		if len(fields) == 0 {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil || len(raw) < 8 {
			continue
		}

		var payload Payload
		copy(payload.Discriminator[:], raw[:8])
		payload.Body = raw[8:]
		payloads = append(payloads, payload)
	}
	return payloads
}
