package envelope

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every status the service emits.
var serviceStatuses = []int{
	http.StatusOK,
	http.StatusNoContent,
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

// The service statuses plus the class boundaries.
var statuses = append([]int{199, 200, 299, 300, 399, 499, 599}, serviceStatuses...)

func TestSuccessFollowsStatusClass(t *testing.T) {
	for _, status := range statuses {
		body := New(status, map[string]string{"k": "v"}, "boom")
		want := status >= 200 && status <= 299
		assert.Equal(t, want, body.Success, "status %d", status)
		assert.Equal(t, IsSuccess(status), body.Success, "status %d", status)
	}
}

func TestSuccessBodyShape(t *testing.T) {
	raw := encode(t, New(http.StatusOK, "abcd1234", ""))

	assert.Equal(t, true, raw["success"])
	assert.Equal(t, "abcd1234", raw["result"])
	assert.NotContains(t, raw, "error")
}

func TestSuccessWithoutResultIsEmptyObject(t *testing.T) {
	raw := encode(t, New(http.StatusNoContent, nil, ""))

	assert.Equal(t, true, raw["success"])
	assert.Equal(t, map[string]interface{}{}, raw["result"])
}

func TestFailureBodyShape(t *testing.T) {
	raw := encode(t, New(http.StatusNotFound, "ignored", "file not found"))

	assert.Equal(t, false, raw["success"])
	assert.Equal(t, "file not found", raw["error"])
	assert.NotContains(t, raw, "result")
}

func TestFailureDefaultsMessage(t *testing.T) {
	body := New(http.StatusInternalServerError, nil, "")
	assert.Equal(t, DefaultError, body.Error)
	assert.Equal(t, "Internal Server Error", body.Error)
}

func TestEmptySliceResultStaysArray(t *testing.T) {
	raw := encode(t, New(http.StatusOK, []string{}, ""))
	assert.Equal(t, []interface{}{}, raw["result"])
}

func TestWriteSetsHeadersAndStatus(t *testing.T) {
	for _, status := range serviceStatuses {
		rec := httptest.NewRecorder()
		Write(rec, status, nil, "")

		assert.Equal(t, status, rec.Code)
		assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))

		var body Body
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, IsSuccess(status), body.Success, "status %d", status)
	}
}

func TestOKAndFail(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, []int{1, 2})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"result":[1,2]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Fail(rec, http.StatusBadRequest, "content id is required")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"content id is required"}`, rec.Body.String())
}

func encode(t *testing.T, body Body) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}
