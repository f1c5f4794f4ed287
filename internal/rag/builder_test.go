package rag

import (
	"context"
	"strings"
	"sync"
	"testing"

	"fuoco/internal/store"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{m: make(map[string][]byte)}
}

func (k *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = append([]byte(nil), value...)
	return nil
}

func (k *memKV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

func TestBuildPromptSeedsDefaults(t *testing.T) {
	b := NewContextBuilder(newMemKV())
	ctx := context.Background()

	prompt, err := b.BuildPrompt(ctx, "como usar a técnica pomodoro?", PersonaFuoco, true)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	if !strings.Contains(prompt, "Você é o Fuoco") {
		t.Error("prompt missing persona instructions")
	}
	if !strings.Contains(prompt, "Técnica Pomodoro") {
		t.Error("prompt missing the relevant seeded document")
	}
	if !strings.HasSuffix(prompt, "Usuário: como usar a técnica pomodoro?\nAssistente:") {
		t.Errorf("prompt does not end with the query block:\n%s", prompt)
	}

	docs, err := b.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != len(DefaultDocuments()) {
		t.Errorf("seeded %d documents, want %d", len(docs), len(DefaultDocuments()))
	}
}

func TestBuildPromptWithoutDefaults(t *testing.T) {
	b := NewContextBuilder(newMemKV())
	ctx := context.Background()

	prompt, err := b.BuildPrompt(ctx, "qualquer coisa", PersonaSage, false)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if strings.Contains(prompt, "Conhecimento relevante") {
		t.Error("empty store should produce no knowledge block")
	}
	if !strings.Contains(prompt, "Você é o Sage") {
		t.Error("prompt missing sage instructions")
	}

	docs, _ := b.ListDocuments(ctx)
	if len(docs) != 0 {
		t.Errorf("documents were seeded despite includeDefaults=false: %d", len(docs))
	}
}

func TestBuildPromptIncludesRecentHistory(t *testing.T) {
	b := NewContextBuilder(newMemKV())
	ctx := context.Background()

	turns := []string{"um", "dois", "três", "quatro", "cinco"}
	for _, content := range turns {
		if err := b.AppendHistory(ctx, store.RoleUser, content); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	prompt, err := b.BuildPrompt(ctx, "pergunta", PersonaFuoco, false)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	// Only the most recent window appears.
	if strings.Contains(prompt, "Usuário: um\n") || strings.Contains(prompt, "Usuário: dois\n") {
		t.Error("old turns leaked into the prompt")
	}
	for _, want := range []string{"três", "quatro", "cinco"} {
		if !strings.Contains(prompt, "Usuário: "+want) {
			t.Errorf("prompt missing recent turn %q", want)
		}
	}
}

func TestAppendHistoryTruncates(t *testing.T) {
	b := NewContextBuilder(newMemKV())
	ctx := context.Background()

	for i := 0; i < store.HistoryCap+7; i++ {
		if err := b.AppendHistory(ctx, store.RoleUser, "turn"); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}
	history, err := b.RecentHistory(ctx, 0)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(history) != store.HistoryCap {
		t.Errorf("history len = %d, want %d", len(history), store.HistoryCap)
	}
}

func TestAddDocument(t *testing.T) {
	b := NewContextBuilder(newMemKV())
	ctx := context.Background()

	id, err := b.AddDocument(ctx, "Notas", "conteúdo novo", "geral", []string{"nota"})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if id == "" {
		t.Fatal("empty document id")
	}

	docs, err := b.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != id || docs[0].Metadata.Title != "Notas" {
		t.Errorf("stored document = %+v", docs)
	}
}

func TestParsePersona(t *testing.T) {
	for name, want := range map[string]Persona{
		"":      PersonaFuoco,
		"fuoco": PersonaFuoco,
		"sage":  PersonaSage,
		"coach": PersonaCoach,
	} {
		got, err := ParsePersona(name)
		if err != nil || got != want {
			t.Errorf("ParsePersona(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParsePersona("pirate"); err == nil {
		t.Error("expected an error for an unknown persona")
	}
}
