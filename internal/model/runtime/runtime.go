// Package runtime abstracts the generation backend behind the model
// handle. A Runtime turns a request into a finite, non-restartable stream
// of token chunks; cancellation is cooperative through the context at
// every yield point.
package runtime

import (
	"context"
	"sync"
)

// GenerationRequest is one classification-or-generation request.
type GenerationRequest struct {
	Prompt        string
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// GenerationResult is the settled outcome of a request. Cancelled results
// are not errors; Text holds whatever had accumulated by then.
type GenerationResult struct {
	Text      string
	Cancelled bool
}

// Runtime produces a token stream for a request. Implementations must stop
// producing promptly once ctx is cancelled.
type Runtime interface {
	Stream(ctx context.Context, req GenerationRequest) (*TokenStream, error)
}

// TokenStream is a lazy, finite sequence of token chunks. It is not
// restartable: once exhausted, Result holds the authoritative final text
// (which may differ from the concatenation of the streamed chunks) and any
// terminal error.
type TokenStream struct {
	ch   chan string
	done chan struct{}

	mu    sync.Mutex
	final string
	err   error
}

// NewTokenStream creates an open stream. Producers call Emit for each
// chunk and Finish exactly once.
func NewTokenStream() *TokenStream {
	return &TokenStream{
		ch:   make(chan string),
		done: make(chan struct{}),
	}
}

// Emit yields one token chunk. It returns false when the consumer is gone
// (ctx cancelled), in which case the producer should stop.
func (s *TokenStream) Emit(ctx context.Context, token string) bool {
	select {
	case s.ch <- token:
		return true
	case <-ctx.Done():
		return false
	}
}

// Finish closes the stream with the authoritative final text and terminal
// error. Calling it more than once is a no-op.
func (s *TokenStream) Finish(final string, err error) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	s.final = final
	s.err = err
	close(s.done)
	s.mu.Unlock()
	close(s.ch)
}

// Next blocks for the next token chunk. ok is false once the stream is
// exhausted or ctx is cancelled; the caller distinguishes the two through
// ctx.Err().
func (s *TokenStream) Next(ctx context.Context) (token string, ok bool) {
	select {
	case token, ok = <-s.ch:
		return token, ok
	case <-ctx.Done():
		return "", false
	}
}

// Result returns the final text and terminal error. Valid once the stream
// is exhausted.
func (s *TokenStream) Result() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final, s.err
}
