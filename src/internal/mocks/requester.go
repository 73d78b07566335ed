package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Call is one request seen by MockRequester.
type Call struct {
	Method string
	Path   string
	Body   any
}

// MockRequester is a mock implementation of the authenticated dispatcher.
//
// It allows tests to provide custom behavior for each method through function fields.
// If a function field is nil, the call succeeds with an empty result.
//
// Example usage:
//
//	mock := &MockRequester{
//	    GetFunc: func(ctx context.Context, path string) (json.RawMessage, error) {
//	        return json.RawMessage(`[{"id": 1}]`), nil
//	    },
//	}
//	tasks, err := resources.NewDownload(mock).Tasks(ctx)
type MockRequester struct {
	// GetFunc is called by Get if not nil
	GetFunc func(ctx context.Context, path string) (json.RawMessage, error)

	// PostFunc is called by Post if not nil
	PostFunc func(ctx context.Context, path string, body any) (json.RawMessage, error)

	// PutFunc is called by Put if not nil
	PutFunc func(ctx context.Context, path string, body any) (json.RawMessage, error)

	// DeleteFunc is called by Delete if not nil
	DeleteFunc func(ctx context.Context, path string, body any) (json.RawMessage, error)

	// RawFunc is called by Raw if not nil
	RawFunc func(ctx context.Context, path string) (*transport.Response, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockRequester answers every call with result.
func NewMockRequester(result string) *MockRequester {
	raw := json.RawMessage(result)
	answer := func(ctx context.Context, path string, body any) (json.RawMessage, error) {
		return raw, nil
	}
	return &MockRequester{
		GetFunc: func(ctx context.Context, path string) (json.RawMessage, error) {
			return raw, nil
		},
		PostFunc:   answer,
		PutFunc:    answer,
		DeleteFunc: answer,
	}
}

// Calls returns the recorded calls in order.
func (m *MockRequester) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// LastCall returns the most recent call, or a zero Call.
func (m *MockRequester) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Call{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *MockRequester) record(method, path string, body any) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Path: path, Body: body})
	m.mu.Unlock()
}

// Get records the call and delegates to GetFunc.
func (m *MockRequester) Get(ctx context.Context, path string) (json.RawMessage, error) {
	m.record(http.MethodGet, path, nil)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, path)
	}
	return nil, nil
}

// Post records the call and delegates to PostFunc.
func (m *MockRequester) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	m.record(http.MethodPost, path, body)
	if m.PostFunc != nil {
		return m.PostFunc(ctx, path, body)
	}
	return nil, nil
}

// Put records the call and delegates to PutFunc.
func (m *MockRequester) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	m.record(http.MethodPut, path, body)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, path, body)
	}
	return nil, nil
}

// Delete records the call and delegates to DeleteFunc.
func (m *MockRequester) Delete(ctx context.Context, path string, body any) (json.RawMessage, error) {
	m.record(http.MethodDelete, path, body)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path, body)
	}
	return nil, nil
}

// Raw records the call and delegates to RawFunc. By default it answers
// an empty octet stream.
func (m *MockRequester) Raw(ctx context.Context, path string) (*transport.Response, error) {
	m.record(http.MethodGet, path, nil)
	if m.RawFunc != nil {
		return m.RawFunc(ctx, path)
	}
	return &transport.Response{StatusCode: http.StatusOK, ContentType: "application/octet-stream"}, nil
}
