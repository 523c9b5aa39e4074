package rest

import "net/http"

// StatusCodeRange groups HTTP status codes by their first digit.
type StatusCodeRange int

const (
	Status1xx StatusCodeRange = iota
	Status2xx
	Status3xx
	Status4xx
	Status5xx
	StatusUnknown
)

// StatusCodeRangeOf classifies a response.
func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	switch code := resp.StatusCode; {
	case 100 <= code && code < 200:
		return Status1xx
	case 200 <= code && code < 300:
		return Status2xx
	case 300 <= code && code < 400:
		return Status3xx
	case 400 <= code && code < 500:
		return Status4xx
	case 500 <= code && code < 600:
		return Status5xx
	default:
		return StatusUnknown
	}
}

func (s StatusCodeRange) String() string {
	switch s {
	case Status1xx:
		return "informational response"
	case Status2xx:
		return "success"
	case Status3xx:
		return "redirection"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return "unknown status"
	}
}
