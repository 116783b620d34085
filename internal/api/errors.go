package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response.
type Error struct {
	Status   int
	Message  string // server-provided detail, may be empty
	Response *Response
}

func newError(resp *Response) *Error {
	return &Error{
		Status:   resp.Status,
		Message:  detailFromBody(resp.Data),
		Response: resp,
	}
}

func (e *Error) Error() string {
	text := fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	if e.Message != "" {
		return text + ": " + e.Message
	}
	return text
}

// ServerDetail returns the message the server chose for the operator.
func (e *Error) ServerDetail() string { return e.Message }

// NotFound reports a 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// detailFromBody extracts the first usable message from a JSON error body,
// checking "detail", then "message", then "error". A detail given as a list of
// {"msg": ...} objects is joined.
func detailFromBody(data []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		if msg := messageFrom(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func messageFrom(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		var parts []string
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				parts = append(parts, m)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
