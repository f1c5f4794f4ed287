package pacer

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRevealCompletes(t *testing.T) {
	p := New(time.Millisecond, time.Millisecond)

	var mu sync.Mutex
	var prefixes []string
	done := make(chan string, 1)

	err := p.Start("olá!", func(revealed string) {
		mu.Lock()
		prefixes = append(prefixes, revealed)
		mu.Unlock()
	}, func(revealed string) {
		done <- revealed
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case final := <-done:
		if final != "olá!" {
			t.Errorf("final = %q, want %q", final, "olá!")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reveal never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(prefixes) != 4 {
		t.Fatalf("got %d prefixes, want one per rune", len(prefixes))
	}
	for i, prefix := range prefixes {
		if !strings.HasPrefix("olá!", prefix) {
			t.Errorf("prefix %d = %q is not a prefix of the final text", i, prefix)
		}
	}
	if prefixes[len(prefixes)-1] != "olá!" {
		t.Errorf("last prefix = %q, want the full text", prefixes[len(prefixes)-1])
	}
	if p.Revealing() {
		t.Error("still revealing after completion")
	}
}

func TestStartRejectsEmptyText(t *testing.T) {
	p := New(time.Millisecond, time.Millisecond)
	if err := p.Start("", nil, nil); err != ErrEmptyText {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestClearStopsReveal(t *testing.T) {
	p := New(5*time.Millisecond, 5*time.Millisecond)

	done := make(chan string, 1)
	long := strings.Repeat("x", 500)
	if err := p.Start(long, nil, func(revealed string) { done <- revealed }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !p.Revealing() {
		t.Fatal("not revealing after Start")
	}

	p.Clear()
	if p.Revealing() {
		t.Error("still revealing after Clear")
	}

	select {
	case <-done:
		t.Error("onDone fired for a cleared reveal")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClearIsIdempotent(t *testing.T) {
	p := New(time.Millisecond, time.Millisecond)
	p.Clear()
	p.Clear()

	if err := p.Start("abc", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	p.Clear()
	p.Clear()
}

func TestStartReplacesPreviousReveal(t *testing.T) {
	p := New(time.Millisecond, time.Millisecond)

	firstDone := make(chan string, 1)
	long := strings.Repeat("a", 1000)
	if err := p.Start(long, nil, func(revealed string) { firstDone <- revealed }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	secondDone := make(chan string, 1)
	if err := p.Start("ok", nil, func(revealed string) { secondDone <- revealed }); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	select {
	case got := <-secondDone:
		if got != "ok" {
			t.Errorf("second reveal = %q, want %q", got, "ok")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second reveal never completed")
	}

	select {
	case got := <-firstDone:
		t.Errorf("superseded reveal completed with %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIntervalStaysWithinBand(t *testing.T) {
	p := New(2*time.Millisecond, 8*time.Millisecond)

	done := make(chan struct{})
	start := time.Now()
	if err := p.Start("abcde", nil, func(string) { close(done) }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-done

	elapsed := time.Since(start)
	if elapsed < 5*2*time.Millisecond {
		t.Errorf("reveal finished in %v, faster than the minimum interval allows", elapsed)
	}
}
