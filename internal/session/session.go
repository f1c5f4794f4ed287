// Package session runs generation requests against a ready model handle.
// A session holds at most one in-flight request; a second call while one is
// pending is rejected, never run concurrently against the same handle.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fuoco/internal/logging"
	"fuoco/internal/model"
	"fuoco/internal/model/runtime"
)

// Sentinel errors for the generation taxonomy.
var (
	// ErrBusy rejects a second Complete call while one is in flight.
	ErrBusy = errors.New("a generation request is already in flight")

	// ErrGeneration wraps failures of the underlying model call.
	ErrGeneration = errors.New("generation failed")
)

// Session wraps a verified model handle and its runtime.
type Session struct {
	handle *model.Handle
	rt     runtime.Runtime

	mu       sync.Mutex
	inFlight bool
}

// New creates a session for the given handle and runtime.
func New(handle *model.Handle, rt runtime.Runtime) *Session {
	return &Session{handle: handle, rt: rt}
}

// Complete executes one request, forwarding token chunks to onToken as they
// are produced, and resolves with the accumulated text. The runtime's final
// text is authoritative when it differs from the stream accumulation.
//
// Cancellation is cooperative: once ctx is cancelled no further tokens are
// forwarded and the call settles with Cancelled set; that is a normal
// resolution, not an error. The session is reusable after cancellation or
// failure.
func (s *Session) Complete(ctx context.Context, req runtime.GenerationRequest, onToken func(token string)) (runtime.GenerationResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return runtime.GenerationResult{}, ErrBusy
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	logging.Session("complete: %d prompt bytes, max %d tokens", len(req.Prompt), req.MaxTokens)

	stream, err := s.rt.Stream(ctx, req)
	if err != nil {
		return runtime.GenerationResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var sb strings.Builder
	for {
		token, ok := stream.Next(ctx)
		if !ok {
			break
		}
		// A token that races a cancellation is dropped, not forwarded.
		if ctx.Err() != nil {
			break
		}
		sb.WriteString(token)
		if onToken != nil {
			onToken(token)
		}
	}

	// Cancellation at a token boundary settles promptly with whatever
	// accumulated; the abandoned producer winds down on the same ctx.
	if ctx.Err() != nil {
		logging.Session("complete: cancelled after %d bytes", sb.Len())
		return runtime.GenerationResult{Text: sb.String(), Cancelled: true}, nil
	}

	final, streamErr := stream.Result()
	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) {
			return runtime.GenerationResult{Text: sb.String(), Cancelled: true}, nil
		}
		return runtime.GenerationResult{}, fmt.Errorf("%w: %v", ErrGeneration, streamErr)
	}

	// The complete-text value wins over the token accumulation.
	text := final
	if text == "" {
		text = sb.String()
	}
	logging.Session("complete: %d bytes generated", len(text))
	return runtime.GenerationResult{Text: text}, nil
}

// Handle returns the model handle this session runs against.
func (s *Session) Handle() *model.Handle {
	return s.handle
}
