package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// decodeResponse reads resp and decodes a 2xx JSON body into v. Any other
// outcome becomes a *domain.Error. v may be nil to discard the body.
func decodeResponse[T any](resp *http.Response, v *T) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.Error{
			Kind:       domain.ErrorKindTransport,
			Message:    "cannot read backend response",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}

	if StatusCodeRangeOf(resp) != Status2xx {
		return statusError(resp, body)
	}

	if msg, ok := embeddedError(body); ok {
		kind := domain.ErrorKindValidation
		if strings.Contains(strings.ToLower(msg), "not found") {
			kind = domain.ErrorKindNotFound
		}
		return &domain.Error{Kind: kind, Message: msg, StatusCode: resp.StatusCode}
	}

	if v == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &domain.Error{
			Kind:       domain.ErrorKindServer,
			Message:    fmt.Sprintf("unexpected response from backend (status code = %d)", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// statusError builds the error for a non-2xx response.
func statusError(resp *http.Response, body []byte) error {
	msg := parseErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = StatusCodeRangeOf(resp).String()
	}
	return &domain.Error{
		Kind:       kindForStatus(resp.StatusCode),
		Message:    msg,
		StatusCode: resp.StatusCode,
	}
}

func kindForStatus(code int) domain.ErrorKind {
	switch {
	case code == http.StatusNotFound:
		return domain.ErrorKindNotFound
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return domain.ErrorKindTransport
	case 400 <= code && code < 500:
		return domain.ErrorKindValidation
	case 500 <= code && code < 600:
		return domain.ErrorKindServer
	default:
		return domain.ErrorKindTransport
	}
}

// parseErrorMessage extracts a message from {"message": ...} or the
// FastAPI {"detail": ...} shape. Detail may be a string or a list of
// validation entries with a "msg" field.
func parseErrorMessage(body []byte) string {
	var payload struct {
		Message *string         `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != nil && *payload.Message != "" {
		return *payload.Message
	}
	if len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// embeddedError detects a 2xx body whose only field is "error", the shape
// the backend uses for unknown identities.
func embeddedError(body []byte) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || len(obj) != 1 {
		return "", false
	}
	raw, ok := obj["error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil || msg == "" {
		return "", false
	}
	return msg, true
}
