// Package signal encodes and decodes the out-of-band events attached to an
// HTMX response through the HX-Trigger header.
//
// A response carries zero or more signals. They are serialized as a single
// JSON object whose keys are the signal names, in the order they were
// attached. A signal without payload is written as `true`.
package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	HeaderTrigger  = "HX-Trigger"
	HeaderRedirect = "HX-Redirect"

	ShowFlashMessage = "showFlashMessage"
	CloseModal       = "closeModal"
)

// FlashType is the visual kind of a flash message.
type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashError   FlashType = "error"
	FlashInfo    FlashType = "info"
)

// Flash is the payload of a showFlashMessage signal.
type Flash struct {
	Type    FlashType `json:"type"`
	Message string    `json:"message"`
}

// Signal is one named client event with an optional payload.
type Signal struct {
	Name    string
	Payload any
}

// Success returns a showFlashMessage signal of type success.
func Success(message string) Signal {
	return Signal{Name: ShowFlashMessage, Payload: Flash{Type: FlashSuccess, Message: message}}
}

// Close returns a closeModal signal.
func Close() Signal {
	return Signal{Name: CloseModal}
}

// Encode serializes signals into an HX-Trigger header value. An empty list
// encodes to "". When a name repeats, the entry keeps its first position and
// the later payload wins.
func Encode(signals []Signal) (string, error) {
	if len(signals) == 0 {
		return "", nil
	}

	order := make([]string, 0, len(signals))
	payloads := make(map[string]any, len(signals))
	for _, s := range signals {
		if s.Name == "" {
			return "", errors.New("signal: empty name")
		}
		if _, seen := payloads[s.Name]; !seen {
			order = append(order, s.Name)
		}
		payloads[s.Name] = s.Payload
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return "", fmt.Errorf("signal: encode name %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		p := payloads[name]
		if p == nil {
			buf.WriteString("true")
			continue
		}
		val, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("signal: encode payload of %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// Decode parses an HX-Trigger header value. Both the JSON object form and the
// plain comma-separated list of names are accepted. Payloads are returned as
// json.RawMessage; `true` and `null` decode to a nil payload.
func Decode(header string) ([]Signal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, "{") {
		var out []Signal
		for _, name := range strings.Split(header, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, Signal{Name: name})
			}
		}
		return out, nil
	}

	dec := json.NewDecoder(strings.NewReader(header))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("signal: decode: %w", err)
	}

	var out []Signal
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("signal: decode: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("signal: decode: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("signal: decode %q: %w", name, err)
		}

		var payload any
		if v := bytes.TrimSpace(raw); !bytes.Equal(v, []byte("true")) && !bytes.Equal(v, []byte("null")) {
			payload = raw
		}
		if i, seen := index[name]; seen {
			out[i].Payload = payload
			continue
		}
		index[name] = len(out)
		out = append(out, Signal{Name: name, Payload: payload})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("signal: decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("signal: decode: trailing data")
	}
	return out, nil
}

// DecodeFlash unmarshals a showFlashMessage payload obtained from Decode.
func DecodeFlash(s Signal) (Flash, error) {
	var f Flash
	raw, ok := s.Payload.(json.RawMessage)
	if !ok {
		return f, fmt.Errorf("signal: %s has no payload", s.Name)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("signal: decode flash: %w", err)
	}
	return f, nil
}
