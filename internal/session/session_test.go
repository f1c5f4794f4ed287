package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"fuoco/internal/model"
	"fuoco/internal/model/runtime"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedRuntime emits a fixed token script, optionally holding the stream
// open until release is closed.
type scriptedRuntime struct {
	tokens  []string
	final   string
	err     error
	release chan struct{} // nil = finish immediately after the script
}

func (r *scriptedRuntime) Stream(ctx context.Context, _ runtime.GenerationRequest) (*runtime.TokenStream, error) {
	s := runtime.NewTokenStream()
	go func() {
		for _, token := range r.tokens {
			if !s.Emit(ctx, token) {
				s.Finish("", ctx.Err())
				return
			}
		}
		if r.release != nil {
			select {
			case <-r.release:
			case <-ctx.Done():
				s.Finish("", ctx.Err())
				return
			}
		}
		s.Finish(r.final, r.err)
	}()
	return s, nil
}

func testHandle() *model.Handle {
	return &model.Handle{ID: "gemma-2b-q4", Version: "v2", Path: "/tmp/x.gguf"}
}

func TestCompleteStreamsAndUsesFinalText(t *testing.T) {
	rt := &scriptedRuntime{tokens: []string{"Olá", ", ", "mundo"}, final: "Olá, mundo!"}
	s := New(testHandle(), rt)

	var streamed []string
	got, err := s.Complete(context.Background(), runtime.GenerationRequest{Prompt: "p"}, func(token string) {
		streamed = append(streamed, token)
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Cancelled {
		t.Error("unexpected cancellation")
	}
	if got.Text != "Olá, mundo!" {
		t.Errorf("text = %q, want the authoritative final text", got.Text)
	}
	if joined := strings.Join(streamed, ""); joined != "Olá, mundo" {
		t.Errorf("streamed = %q", joined)
	}
}

func TestCompleteRejectsSecondInFlight(t *testing.T) {
	release := make(chan struct{})
	rt := &scriptedRuntime{tokens: []string{"tok"}, final: "tok", release: release}
	s := New(testHandle(), rt)

	firstToken := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.Complete(context.Background(), runtime.GenerationRequest{}, func(string) {
			close(firstToken)
		})
		done <- err
	}()

	<-firstToken
	if _, err := s.Complete(context.Background(), runtime.GenerationRequest{}, nil); !errors.Is(err, ErrBusy) {
		t.Errorf("second call err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first call: %v", err)
	}

	// The slot frees up once the first request settles.
	if _, err := s.Complete(context.Background(), runtime.GenerationRequest{}, nil); errors.Is(err, ErrBusy) {
		t.Error("session still busy after settlement")
	}
}

func TestCompleteCancellationIsNotAnError(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	rt := &scriptedRuntime{tokens: []string{"parcial"}, final: "nunca", release: release}
	s := New(testHandle(), rt)

	ctx, cancel := context.WithCancel(context.Background())
	got, err := s.Complete(ctx, runtime.GenerationRequest{}, func(string) {
		cancel()
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !got.Cancelled {
		t.Error("result not marked cancelled")
	}
	if got.Text != "parcial" {
		t.Errorf("text = %q, want the partial accumulation", got.Text)
	}
}

func TestCompleteNoTokensAfterCancel(t *testing.T) {
	rt := &scriptedRuntime{tokens: []string{"um", "dois", "três"}, final: "umdoistrês"}
	s := New(testHandle(), rt)

	ctx, cancel := context.WithCancel(context.Background())
	var tokens []string
	got, err := s.Complete(ctx, runtime.GenerationRequest{}, func(token string) {
		tokens = append(tokens, token)
		cancel()
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !got.Cancelled {
		t.Error("result not marked cancelled")
	}
	if len(tokens) != 1 {
		t.Errorf("tokens after cancel = %v, want only the first", tokens)
	}
}

func TestCompleteWrapsGenerationErrors(t *testing.T) {
	rt := &scriptedRuntime{err: errors.New("model exploded")}
	s := New(testHandle(), rt)

	_, err := s.Complete(context.Background(), runtime.GenerationRequest{}, nil)
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}

	// A failed request leaves the session reusable.
	rt.err = nil
	rt.final = "recuperado"
	got, err := s.Complete(context.Background(), runtime.GenerationRequest{}, nil)
	if err != nil || got.Text != "recuperado" {
		t.Errorf("retry = %+v, %v", got, err)
	}
}

func TestHandle(t *testing.T) {
	h := testHandle()
	s := New(h, &scriptedRuntime{final: "x"})
	if s.Handle() != h {
		t.Error("Handle() did not return the session's handle")
	}
}
