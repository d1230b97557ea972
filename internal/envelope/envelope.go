// Package envelope wraps every structured response of the catalog in a
// uniform {success, result | error} body.
//
// The success flag is derived from the status code and nothing else, so the
// body and the transport status can never disagree.
package envelope

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-catalog/internal/logging"
)

// ContentType is the media type of every enveloped response.
const ContentType = "application/json"

// DefaultError is the message used when a failure carries no message.
const DefaultError = "Internal Server Error"

// Body is the serialized envelope. Result is set only on success and Error
// only on failure.
type Body struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// IsSuccess reports whether status is in the 2xx class.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// New builds the envelope for status. On success a nil result becomes an
// empty object; on failure an empty message becomes DefaultError.
func New(status int, result interface{}, errMsg string) Body {
	if IsSuccess(status) {
		if result == nil {
			result = struct{}{}
		}
		return Body{Success: true, Result: result}
	}

	if errMsg == "" {
		errMsg = DefaultError
	}
	return Body{Success: false, Error: errMsg}
}

// Write sends the envelope for status to w.
func Write(w http.ResponseWriter, status int, result interface{}, errMsg string) {
	body := New(status, result, errMsg)

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// OK writes a 200 envelope around result.
func OK(w http.ResponseWriter, result interface{}) {
	Write(w, http.StatusOK, result, "")
}

// Fail writes a failure envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, errMsg string) {
	Write(w, status, nil, errMsg)
}
