// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package mockpool provides an in-process stand-in for a Sui gas pool and a
// Sui fullnode, for tests.
package mockpool

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// MockServer provides a mock HTTP server for gas pool and fullnode endpoints
type MockServer struct {
	server   *httptest.Server
	routes   map[string]MockRoute
	mu       sync.RWMutex
	requests []Request
}

// MockRoute defines the response configuration for a specific endpoint.
// Raw, when set, is written verbatim instead of encoding Body.
type MockRoute struct {
	StatusCode int
	Body       interface{}
	Raw        string
	Headers    map[string]string
}

// NewMockServer creates a new mock server with the given routes, keyed by path
func NewMockServer(routes map[string]MockRoute) *MockServer {
	ms := &MockServer{
		routes: make(map[string]MockRoute),
	}

	for path, route := range routes {
		ms.routes[path] = route
	}

	ms.server = httptest.NewServer(http.HandlerFunc(ms.handleRequest))

	return ms
}

func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	route, exists := ms.routes[r.URL.Path]
	ms.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: fmt.Sprintf("endpoint not found: %s", r.URL.Path),
		}); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
		return
	}

	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(route.StatusCode)

	if route.Raw != "" {
		_, _ = io.WriteString(w, route.Raw)
		return
	}
	if route.Body != nil {
		if err := json.NewEncoder(w).Encode(route.Body); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close stops the mock server
func (ms *MockServer) Close() {
	if ms.server != nil {
		ms.server.Close()
	}
}

// AddRoute adds or updates a route in the running server
func (ms *MockServer) AddRoute(path string, route MockRoute) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.routes[path] = route
}

// CallCount returns the number of times a specific path was called
func (ms *MockServer) CallCount(path string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	n := 0
	for _, r := range ms.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of requests received on any path.
func (ms *MockServer) TotalCalls() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.requests)
}

// Requests returns a copy of every recorded request in arrival order.
func (ms *MockServer) Requests() []Request {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Request, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// LastRequest returns the most recent request to path.
func (ms *MockServer) LastRequest(path string) (Request, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for i := len(ms.requests) - 1; i >= 0; i-- {
		if ms.requests[i].Path == path {
			return ms.requests[i], true
		}
	}
	return Request{}, false
}

// Reset forgets all recorded requests
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
}

// ErrorResponse is the gas pool's error body shape
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorRoute creates a route answering with statusCode and an error body
func ErrorRoute(statusCode int, detail string) MockRoute {
	return MockRoute{
		StatusCode: statusCode,
		Body:       ErrorResponse{Error: detail},
	}
}

// RateLimitRoute creates a route that simulates rate limiting (HTTP 429)
func RateLimitRoute() MockRoute {
	return MockRoute{
		StatusCode: http.StatusTooManyRequests,
		Body:       ErrorResponse{Error: "too many requests"},
	}
}

// SuccessRoute creates a route with a successful response
func SuccessRoute(body interface{}) MockRoute {
	return MockRoute{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// Coin is a gas coin as the gas pool encodes it.
type Coin struct {
	ObjectID string `json:"objectId"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest"`
}

// ReserveGasRoute answers /v1/reserve_gas with a reservation.
func ReserveGasRoute(sponsor string, reservationID uint64, coins ...Coin) MockRoute {
	if coins == nil {
		coins = []Coin{}
	}
	return SuccessRoute(map[string]interface{}{
		"result": map[string]interface{}{
			"sponsor_address": sponsor,
			"reservation_id":  reservationID,
			"gas_coins":       coins,
		},
	})
}

// ExecuteTxRoute answers /v1/execute_tx with effects carrying digest.
func ExecuteTxRoute(digest string) MockRoute {
	return SuccessRoute(map[string]interface{}{
		"effects": map[string]interface{}{
			"transactionDigest": digest,
		},
	})
}

// EventsRoute answers a fullnode sui_getEvents call with the given events.
func EventsRoute(events ...map[string]interface{}) MockRoute {
	if events == nil {
		events = []map[string]interface{}{}
	}
	return SuccessRoute(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  events,
	})
}
