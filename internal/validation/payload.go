package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"taskhub/internal/domain/errors"
)

// Payload is a decoded request body. Numbers are kept as json.Number so that
// integers and floats stay distinguishable.
type Payload map[string]any

// Decode reads a request body. An empty body decodes to nil so that
// ValidatePayload can report it as missing; malformed JSON is an error.
func Decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Validation("Payload must be a valid JSON object")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.Validation("Payload must be a valid JSON object")
	}
	return raw, nil
}

// AsPayload checks the shape of a decoded body and returns it as a Payload.
func AsPayload(raw any) (Payload, error) {
	if err := ValidatePayload(raw); err != nil {
		return nil, err
	}
	if p, ok := raw.(Payload); ok {
		return p, nil
	}
	return Payload(raw.(map[string]any)), nil
}

// ValidatePayload fails if the payload is absent, not an object, or empty.
func ValidatePayload(payload any) error {
	var m map[string]any
	switch p := payload.(type) {
	case nil:
		return errors.Validation("Payload is missing")
	case Payload:
		if p == nil {
			return errors.Validation("Payload is missing")
		}
		m = p
	case map[string]any:
		if p == nil {
			return errors.Validation("Payload is missing")
		}
		m = p
	default:
		return errors.Validation("Payload must be a valid JSON object")
	}
	if len(m) == 0 {
		return errors.Validation("Payload cannot be empty")
	}
	return nil
}

func (p Payload) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// IsNull reports whether field is present with an explicit null.
func (p Payload) IsNull(field string) bool {
	v, ok := p[field]
	return ok && v == nil
}

func (p Payload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

func (p Payload) Int(field string) (int, bool) {
	return asInt(p[field])
}

func (p Payload) Float(field string) (float64, bool) {
	return asNumber(p[field])
}

// Text is the stringified, trimmed form of a field.
func (p Payload) Text(field string) string {
	v, ok := p[field]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if strings.ContainsAny(n.String(), ".eE") {
			return 0, false
		}
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		if !strings.ContainsAny(n.String(), ".eE") {
			return 0, false
		}
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asNumber accepts either an integer or a float.
func asNumber(v any) (float64, bool) {
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return asFloat(v)
}
