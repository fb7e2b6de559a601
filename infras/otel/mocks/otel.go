package mocks

import (
	"context"
	"cowork/infras/otel"
	"sync"
)

// Recorder is an in-memory otel.Otel. Every scope it opens is kept so tests
// can assert span names, attributes and traced errors.
type Recorder struct {
	mu     sync.Mutex
	scopes []*Scope
}

func NewOtel() otel.Otel {
	return NewRecorder()
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewScope implements otel.Otel.
func (r *Recorder) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	scope := &Scope{
		ScopeName:  scopeName,
		SpanName:   spanName,
		Attributes: map[string]any{},
	}

	r.mu.Lock()
	r.scopes = append(r.scopes, scope)
	r.mu.Unlock()

	return ctx, scope
}

// Scopes returns the scopes opened so far, oldest first.
func (r *Recorder) Scopes() []*Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Scope(nil), r.scopes...)
}

// Find returns the first scope with the given span name.
func (r *Recorder) Find(spanName string) (*Scope, bool) {
	for _, scope := range r.Scopes() {
		if scope.SpanName == spanName {
			return scope, true
		}
	}

	return nil, false
}

type Scope struct {
	mu         sync.Mutex
	ScopeName  string
	SpanName   string
	Attributes map[string]any
	Events     []string
	Errors     []error
	Ended      bool
}

// AddEvent implements otel.Scope.
func (s *Scope) AddEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Events = append(s.Events, name)
}

// End implements otel.Scope.
func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ended = true
}

// SetAttribute implements otel.Scope.
func (s *Scope) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attributes[key] = value
}

// SetAttributes implements otel.Scope.
func (s *Scope) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}

// TraceError implements otel.Scope.
func (s *Scope) TraceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Errors = append(s.Errors, err)
}

// TraceIfError implements otel.Scope.
func (s *Scope) TraceIfError(err *error) {
	if err != nil && *err != nil {
		s.TraceError(*err)
	}
}
