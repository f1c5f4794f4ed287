package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fuoco/internal/logging"
	"fuoco/internal/store"
)

// How much context goes into a prompt.
const (
	topDocuments  = 3
	historyWindow = 3
)

// ContextBuilder owns the document store and the conversation history and
// assembles persona-specific prompts.
type ContextBuilder struct {
	kv store.KV
}

// NewContextBuilder creates a builder over the given key-value store.
func NewContextBuilder(kv store.KV) *ContextBuilder {
	return &ContextBuilder{kv: kv}
}

// BuildPrompt assembles the full generation prompt for a query: the
// persona's system instruction, a relevant-knowledge block from the top
// scored documents, the recent conversation, and the query itself. On first
// use with includeDefaults the built-in document set is seeded into the
// store.
func (b *ContextBuilder) BuildPrompt(ctx context.Context, query string, persona Persona, includeDefaults bool) (string, error) {
	timer := logging.StartTimer(logging.CategoryRetrieval, "BuildPrompt")
	defer timer.Stop()

	docs, err := store.LoadDocuments(ctx, b.kv)
	if err != nil {
		return "", fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 && includeDefaults {
		docs = DefaultDocuments()
		if err := store.SaveDocuments(ctx, b.kv, docs); err != nil {
			return "", fmt.Errorf("seed documents: %w", err)
		}
		logging.Retrieval("seeded %d default documents", len(docs))
	}

	relevant := SearchRelevant(query, docs, topDocuments)

	history, err := store.LoadHistory(ctx, b.kv)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var sb strings.Builder
	sb.WriteString(persona.Instructions())
	sb.WriteString("\n")

	if len(relevant) > 0 {
		sb.WriteString("\nConhecimento relevante:\n")
		for _, doc := range relevant {
			title := doc.Metadata.Title
			if title == "" {
				title = doc.ID
			}
			fmt.Fprintf(&sb, "- %s: %s\n", title, doc.Content)
		}
	}

	if len(history) > 0 {
		sb.WriteString("\nConversa até agora:\n")
		for _, entry := range history {
			fmt.Fprintf(&sb, "%s: %s\n", roleLabel(entry.Role), entry.Content)
		}
	}

	fmt.Fprintf(&sb, "\nUsuário: %s\nAssistente:", query)
	return sb.String(), nil
}

func roleLabel(r store.Role) string {
	if r == store.RoleAssistant {
		return "Assistente"
	}
	return "Usuário"
}

// AppendHistory appends a turn and persists the history, truncated to the
// most recent entries. Load-mutate-save is atomic for the single logical
// caller this design supports.
func (b *ContextBuilder) AppendHistory(ctx context.Context, role store.Role, content string) error {
	history, err := store.LoadHistory(ctx, b.kv)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	history = append(history, store.HistoryEntry{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return store.SaveHistory(ctx, b.kv, history)
}

// RecentHistory returns the last n history entries.
func (b *ContextBuilder) RecentHistory(ctx context.Context, n int) ([]store.HistoryEntry, error) {
	history, err := store.LoadHistory(ctx, b.kv)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	return history, nil
}

// AddDocument stores a new immutable document and returns its id.
func (b *ContextBuilder) AddDocument(ctx context.Context, title, content, category string, tags []string) (string, error) {
	docs, err := store.LoadDocuments(ctx, b.kv)
	if err != nil {
		return "", fmt.Errorf("load documents: %w", err)
	}
	doc := store.Document{
		ID:      uuid.NewString(),
		Content: content,
		Metadata: store.DocumentMeta{
			Title:     title,
			Category:  category,
			Tags:      tags,
			CreatedAt: time.Now().UTC(),
		},
	}
	docs = append(docs, doc)
	if err := store.SaveDocuments(ctx, b.kv, docs); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// ListDocuments returns every stored document in insertion order.
func (b *ContextBuilder) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return store.LoadDocuments(ctx, b.kv)
}

// DefaultDocuments is the fixed built-in knowledge set seeded on first use.
func DefaultDocuments() []store.Document {
	seeded := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, title, content string, tags ...string) store.Document {
		return store.Document{
			ID:      id,
			Content: content,
			Metadata: store.DocumentMeta{
				Title:     title,
				Category:  "produtividade",
				Tags:      tags,
				CreatedAt: seeded,
			},
		}
	}
	return []store.Document{
		mk("doc-pomodoro", "Técnica Pomodoro",
			"Trabalhe em blocos de 25 minutos com pausas de 5 minutos. A cada quatro blocos, faça uma pausa longa de 15 a 30 minutos.",
			"foco", "tempo"),
		mk("doc-eisenhower", "Matriz de Eisenhower",
			"Classifique tarefas por urgência e importância: faça o urgente e importante, agende o importante, delegue o urgente, elimine o resto.",
			"prioridade", "tarefas"),
		mk("doc-dois-minutos", "Regra dos 2 minutos",
			"Se uma tarefa leva menos de dois minutos, faça imediatamente em vez de anotá-la para depois.",
			"tarefas", "habito"),
		mk("doc-50-30-20", "Orçamento 50/30/20",
			"Divida a renda em 50% para necessidades, 30% para desejos e 20% para poupança e quitação de dívidas.",
			"financas", "orcamento"),
		mk("doc-habitos", "Hábitos atômicos",
			"Melhorias de 1% ao dia se acumulam. Torne o hábito óbvio, atraente, fácil e satisfatório.",
			"habito", "rotina"),
	}
}
