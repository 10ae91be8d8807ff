package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxEnvelopeBytes bounds how much of a response body is read into memory.
const maxEnvelopeBytes = 4 << 20

// Envelope is the server's uniform response wrapper: {ok, data?, message?}.
//
// When the body is not valid JSON, the raw text is kept in Raw and OK is
// derived from the status code; downstream code must tolerate an envelope
// without structured data.
type Envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`

	// Status is the HTTP status the envelope arrived with.
	Status int `json:"-"`

	// Raw holds the body verbatim when it was not parseable JSON.
	Raw string `json:"-"`
}

// Decode unmarshals the envelope's data payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return errors.New("envelope has no data")
	}
	return json.Unmarshal(e.Data, v)
}

// Err returns nil for a successful envelope, otherwise an *APIError carrying
// the server's message (or a generic fallback when the server sent none).
// Some endpoints report the message at the top level, some nest it under
// data; both are honored.
func (e Envelope) Err() error {
	if e.OK {
		return nil
	}
	msg := e.Message
	if msg == "" && len(e.Data) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Data, &nested); err == nil {
			msg = nested.Message
		}
	}
	if msg == "" {
		msg = genericFailureMessage
	}
	return &APIError{Status: e.Status, Message: msg}
}

// readEnvelope drains and closes the response body and parses the envelope.
func readEnvelope(resp *http.Response) (Envelope, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return Envelope{}, fmt.Errorf("read response: %w (%v)", ErrNetwork, err)
	}

	env := Envelope{Status: resp.StatusCode}
	if jsonErr := json.Unmarshal(body, &env); jsonErr != nil {
		// Opaque body: keep it readable, never fail the call over it.
		env = Envelope{
			OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
			Status: resp.StatusCode,
			Raw:    string(body),
		}
	}
	return env, nil
}
