package testing

import (
	"bytes"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"net/http/httptest"
)

// PerformRequest Helper for performing requests in tests.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			panic("failed to marshal request body: " + err.Error())
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

// As returns the headers the upstream gateway sets for an authenticated caller.
func As(principal string) map[string]string {
	return map[string]string{"x-principal": principal}
}

// DecodeBody unmarshals a recorded JSON response into T.
func DecodeBody[T any](res *httptest.ResponseRecorder) T {
	var out T
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		panic("failed to unmarshal response body: " + err.Error())
	}
	return out
}
