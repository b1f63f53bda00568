// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpxtest provides a scripted httpx.BasicClient for tests.
package httpxtest

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Call is one scripted exchange of a MockClient.
type Call struct {
	Method   string
	URL      string
	Response *http.Response
	Error    error
}

// MockClient replays Calls in order. It is safe for concurrent use, but
// callers issuing requests concurrently should use SkipURLValidation or
// ByURL since the order of arrival is not fixed.
type MockClient struct {
	Calls []Call
	// ByURL matches each request against the first unused Call with the same URL instead of by position.
	ByURL             bool
	URLValidator      func(expected, actual string)
	SkipURLValidation bool

	mu        sync.Mutex
	used      []bool
	callCount int
	requests  []*http.Request
}

func (m *MockClient) next(req *http.Request) Call {
	if m.used == nil {
		m.used = make([]bool, len(m.Calls))
	}
	if m.ByURL {
		for i, c := range m.Calls {
			if !m.used[i] && c.URL == req.URL.String() {
				m.used[i] = true
				return c
			}
		}
		panic("unexpected request: " + req.URL.String())
	}
	if m.callCount >= len(m.Calls) {
		panic("unexpected request: " + req.URL.String())
	}
	m.used[m.callCount] = true
	return m.Calls[m.callCount]
}

func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.next(req)
	m.callCount++
	m.requests = append(m.requests, req)

	if !m.SkipURLValidation && (m.URLValidator == nil) {
		panic("URL validation requested but not configured")
	} else if m.SkipURLValidation && (m.URLValidator != nil) {
		panic("URL validation disabled but configured")
	}
	if m.URLValidator != nil {
		if call.Method != "" {
			m.URLValidator(call.Method+" "+call.URL, req.Method+" "+req.URL.String())
		} else {
			m.URLValidator(call.URL, req.URL.String())
		}
	}
	if call.Response != nil && call.Response.Request == nil {
		call.Response.Request = req
	}
	return call.Response, call.Error
}

// CallCount is the number of requests served so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns the received requests in order of arrival.
func (m *MockClient) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

func NewURLValidator(t *testing.T) func(string, string) {
	return func(expected, actual string) {
		t.Helper()
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("URL mismatch (-want +got):\n%s", diff)
		}
	}
}
