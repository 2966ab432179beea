// Package credential encodes and decodes the QR payload printed on tickets.
package credential

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// Payload is the structured content of a ticket QR code.
type Payload struct {
	RegID   string `json:"regId"`
	EventID string `json:"eventId"`
}

// Encode serialises the payload the verifier reverses.
func Encode(regID, eventID string) string {
	data, _ := json.Marshal(Payload{RegID: regID, EventID: eventID})
	return string(data)
}

// Parser tries to extract a registration id from a scanned string.
type Parser func(raw string) (string, bool)

var bareID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{2,63}$`)

// DefaultChain is tried in order: structured JSON first, then a validation
// URL, then a bare identifier.
var DefaultChain = []Parser{ParseJSON, ParseURL, ParseBare}

// Decode runs the default chain.
func Decode(raw string) (string, bool) {
	return DecodeWith(DefaultChain, raw)
}

// DecodeWith returns the first id any parser yields.
func DecodeWith(chain []Parser, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, parse := range chain {
		if id, ok := parse(raw); ok {
			return id, true
		}
	}
	return "", false
}

// ParseJSON reads {"regId": ...}; older tickets used "registrationId".
func ParseJSON(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "{") {
		return "", false
	}
	var doc struct {
		RegID          string `json:"regId"`
		RegistrationID string `json:"registrationId"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", false
	}
	id := strings.TrimSpace(doc.RegID)
	if id == "" {
		id = strings.TrimSpace(doc.RegistrationID)
	}
	if !bareID.MatchString(id) {
		return "", false
	}
	return id, true
}

// ParseURL reads links or paths ending in /validate/{regId}.
func ParseURL(raw string) (string, bool) {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/validate/")
	if idx < 0 {
		return "", false
	}
	id := path[idx+len("/validate/"):]
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	if !bareID.MatchString(id) {
		return "", false
	}
	return id, true
}

// ParseBare accepts the identifier itself.
func ParseBare(raw string) (string, bool) {
	if !bareID.MatchString(raw) {
		return "", false
	}
	return raw, true
}
