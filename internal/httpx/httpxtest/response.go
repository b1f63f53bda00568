// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package httpxtest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

func Body(b string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(b)))
}

// BytesBody is like Body for binary payloads such as archives.
func BytesBody(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}

// Response builds a response with the given status code and body.
func Response(code int, body []byte) *http.Response {
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode: code,
		Body:       BytesBody(body),
	}
}

// OK is a 200 response carrying body.
func OK(body string) *http.Response {
	return Response(http.StatusOK, []byte(body))
}
