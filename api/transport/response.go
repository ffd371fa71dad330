package transport

import "encoding/json"

// ErrorBody is returned for every failed request.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// NewError returns an error body.
func NewError(code string, detail string) ErrorBody {
	return ErrorBody{Detail: detail, Code: code}
}

// Ack confirms an operation that has no resource to return.
type Ack struct {
	OK bool `json:"ok"`
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e ErrorBody) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
