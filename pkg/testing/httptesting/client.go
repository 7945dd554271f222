package httptesting

import (
	"encoding/json"
	"net/http"
)

// EchoSave replies every request with the same content and stores the last request
// into the caller's variable so tests can inspect headers and body.
type EchoSave struct {
	saveTo  **http.Request
	status  int
	content string
	err     error
}

func (st *EchoSave) RoundTrip(req *http.Request) (*http.Response, error) {
	if st.saveTo != nil {
		*st.saveTo = req
	}

	if st.err != nil {
		return nil, st.err
	}

	status := st.status
	if status == 0 {
		status = http.StatusOK
	}

	resp := BuildResponseString(status, st.content)
	SetHeader(resp, "Content-Type", "application/json")
	return resp, nil
}

func HttpClientWithContent(content string) *http.Client {
	return &http.Client{Transport: &EchoSave{content: content}}
}

func HttpClientWithStatus(status int, content string) *http.Client {
	return &http.Client{Transport: &EchoSave{status: status, content: content}}
}

func HttpClientWithError(err error) *http.Client {
	return &http.Client{Transport: &EchoSave{err: err}}
}

func HttpClientWithJson(jsonData interface{}) *http.Client {
	jsonBytes, err := json.Marshal(jsonData)
	return &http.Client{Transport: &EchoSave{err: err, content: string(jsonBytes)}}
}

// HttpClientSaverWithJson replies jsonData and saves the last request into saved.
func HttpClientSaverWithJson(saved **http.Request, jsonData interface{}) *http.Client {
	jsonBytes, err := json.Marshal(jsonData)
	return &http.Client{Transport: &EchoSave{saveTo: saved, err: err, content: string(jsonBytes)}}
}
