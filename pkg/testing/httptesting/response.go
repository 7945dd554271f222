package httptesting

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

func BuildResponse(code int, payload []byte) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Status:        http.StatusText(code),
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(payload)),
		ContentLength: int64(len(payload)),
	}
}

func BuildResponseString(code int, payload string) *http.Response {
	return BuildResponse(code, []byte(payload))
}

// BuildResponseJson marshals payload into a JSON response. A marshal failure yields a 500.
func BuildResponseJson(code int, payload interface{}) *http.Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return BuildResponseString(http.StatusInternalServerError, err.Error())
	}

	resp := BuildResponse(code, data)
	SetHeader(resp, "Content-Type", "application/json")
	return resp
}

func SetHeader(resp *http.Response, name string, value string) *http.Response {
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	resp.Header.Set(name, value)
	return resp
}
