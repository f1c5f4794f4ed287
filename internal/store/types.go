package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys. Documents and history are JSON blobs; model metadata is one
// blob per logical model identity.
const (
	KeyDocuments = "documents"
	KeyHistory   = "history"

	modelMetaPrefix = "model_meta:"
)

// HistoryCap bounds the conversation history: the most recent entries win,
// oldest are evicted first.
const HistoryCap = 20

// ModelMetaKey returns the metadata key for a logical model identity.
func ModelMetaKey(modelID string) string {
	return modelMetaPrefix + modelID
}

// DocumentMeta is the optional metadata attached to a stored document.
type DocumentMeta struct {
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is an immutable knowledge snippet; identity is ID.
type Document struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Metadata DocumentMeta `json:"metadata"`
}

// Role identifies the author of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry is one conversation turn.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LoadDocuments reads the document collection; absent key means empty.
func LoadDocuments(ctx context.Context, kv KV) ([]Document, error) {
	raw, ok, err := kv.Get(ctx, KeyDocuments)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// SaveDocuments writes the document collection.
func SaveDocuments(ctx context.Context, kv KV, docs []Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	return kv.Set(ctx, KeyDocuments, raw)
}

// LoadHistory reads the conversation history; absent key means empty.
func LoadHistory(ctx context.Context, kv KV) ([]HistoryEntry, error) {
	raw, ok, err := kv.Get(ctx, KeyHistory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// SaveHistory writes the conversation history, truncated to HistoryCap.
func SaveHistory(ctx context.Context, kv KV, entries []HistoryEntry) error {
	entries = TruncateHistory(entries)
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return kv.Set(ctx, KeyHistory, raw)
}

// TruncateHistory keeps the most recent HistoryCap entries (FIFO eviction).
func TruncateHistory(entries []HistoryEntry) []HistoryEntry {
	if len(entries) <= HistoryCap {
		return entries
	}
	return entries[len(entries)-HistoryCap:]
}
