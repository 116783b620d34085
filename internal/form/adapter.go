package form

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Adapter persists records for one collection.
type Adapter interface {
	Create(ctx context.Context, payload Payload) (Record, error)
	Update(ctx context.Context, id string, payload Payload) (Record, error)
	Remove(ctx context.Context, id string) (string, error)
}

// Payload is the body sent to Create and Update. A nil value is the explicit
// absent marker and is encoded as JSON null, so a partial update clears the
// field instead of leaving it unspecified.
type Payload map[string]any

// BuildPayload converts validated field values into a Payload:
//   - blank optional values become nil
//   - KindNumber values, and Numeric select values, become json.Number
//   - a value that was a JSON number or bool in seed keeps that type
//   - everything else is sent as a trimmed string
//
// seed is the record the form was opened with (nil for new records), so an
// untouched edit form sends back the same JSON types it received.
func BuildPayload(fields []Field, values map[string]string, seed Record) Payload {
	p := make(Payload, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" {
			// Required fields cannot be blank after validation; an unvalidated
			// blank still goes out as null rather than "".
			p[f.Name] = nil
			continue
		}
		p[f.Name] = payloadValue(f, v, seed[f.Name])
	}
	return p
}

func payloadValue(f Field, v string, seeded any) any {
	_, numErr := ParseNumber(v)
	if f.Kind == KindNumber || f.Numeric {
		if numErr == nil {
			return json.Number(v)
		}
		return v
	}
	switch seeded.(type) {
	case json.Number, float64, float32, int, int64:
		if numErr == nil {
			return json.Number(v)
		}
	case bool:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// ServerDetailer is implemented by errors that carry a message chosen by the
// server (the API client's error type).
type ServerDetailer interface {
	ServerDetail() string
}

// FallbackMessage is shown when an error carries no usable message.
const FallbackMessage = "Something went wrong. Please try again."

// SubmissionMessage picks the single message shown for a failed submission:
// the server-provided detail, then the transport error text, then
// FallbackMessage.
func SubmissionMessage(err error) string {
	if err == nil {
		return FallbackMessage
	}
	var sd ServerDetailer
	if errors.As(err, &sd) {
		if detail := strings.TrimSpace(sd.ServerDetail()); detail != "" {
			return detail
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}

// NewSubmissionError reduces err to a SubmissionError.
func NewSubmissionError(err error) *SubmissionError {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se
	}
	return &SubmissionError{Message: SubmissionMessage(err), cause: err}
}
