package pdg

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Payload is the body returned by the backend for one scanned file.
//
// PDGData is kept undecoded. It may be absent or null, a JSON object in
// the structured shape, or a JSON string holding either that object
// encoded as JSON or DOT-like text. Normalize decides which.
type Payload struct {
	PDGData json.RawMessage `json:"pdg_data,omitempty"`
}

// dataKind discriminates the shapes PDGData can take.
type dataKind int

const (
	kindAbsent dataKind = iota
	kindObject
	kindString
	kindOther
)

func (k dataKind) String() string {
	switch k {
	case kindAbsent:
		return "absent"
	case kindObject:
		return "object"
	case kindString:
		return "string"
	default:
		return "other"
	}
}

// kind reports the JSON type of PDGData from its first significant byte.
func (p *Payload) kind() dataKind {
	if p == nil {
		return kindAbsent
	}
	data := bytes.TrimSpace(p.PDGData)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return kindAbsent
	}
	switch data[0] {
	case '{':
		return kindObject
	case '"':
		return kindString
	default:
		return kindOther
	}
}

// PayloadFromValue wraps an already-decoded value as pdg_data. The value
// is re-encoded with encoding/json, so Go maps end up with sorted keys.
// A value that cannot be encoded yields an absent payload.
func PayloadFromValue(v any) *Payload {
	if v == nil {
		return &Payload{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return &Payload{}
	}
	return &Payload{PDGData: data}
}

// PayloadFromText wraps a textual pdg_data value (JSON or DOT-like text).
func PayloadFromText(text string) *Payload {
	data, _ := json.Marshal(text) // marshalling a string cannot fail
	return &Payload{PDGData: data}
}

// DecodePayload reads a raw response body. A JSON object is decoded as
// the payload envelope. Anything else that mentions "digraph" is taken to
// be DOT-like text for pdg_data; everything else is an absent payload.
func DecodePayload(data []byte) *Payload {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p Payload
		if err := json.Unmarshal(trimmed, &p); err == nil {
			return &p
		}
	}
	if strings.Contains(string(trimmed), "digraph") {
		return PayloadFromText(string(trimmed))
	}
	return &Payload{}
}
