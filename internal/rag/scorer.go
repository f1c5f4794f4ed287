// Package rag builds the generation prompt: it keeps a small document
// store and a bounded conversation history in the key-value store, scores
// documents against the query by keyword overlap, and assembles a
// persona-specific prompt. Scoring is keyword-based on purpose; there is no
// embedding retrieval here.
package rag

import (
	"sort"
	"strings"

	"fuoco/internal/logging"
	"fuoco/internal/nlp"
	"fuoco/internal/store"
)

// Field weights for keyword hits.
const (
	titleWeight   = 3
	tagWeight     = 2
	contentWeight = 1
)

// SearchRelevant scores documents against the query and returns the top-k
// with a positive score. Query words shorter than three runes are ignored.
// Ties keep the original insertion order (stable sort).
func SearchRelevant(query string, docs []store.Document, k int) []store.Document {
	words := queryWords(query)
	if len(words) == 0 || k <= 0 {
		return nil
	}

	type scored struct {
		doc   store.Document
		score int
	}
	var hits []scored
	for _, doc := range docs {
		s := scoreDocument(words, doc)
		if s > 0 {
			hits = append(hits, scored{doc: doc, score: s})
		}
	}

	// No positive score means an absent result, not an empty slice.
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]store.Document, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	logging.RetrievalDebug("search %q: %d/%d documents matched", query, len(out), len(docs))
	return out
}

// queryWords folds the query and keeps words longer than two runes.
func queryWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(nlp.Fold(query)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func scoreDocument(words []string, doc store.Document) int {
	title := nlp.Fold(doc.Metadata.Title)
	content := nlp.Fold(doc.Content)
	tags := make([]string, len(doc.Metadata.Tags))
	for i, t := range doc.Metadata.Tags {
		tags[i] = nlp.Fold(t)
	}

	score := 0
	for _, w := range words {
		if strings.Contains(title, w) {
			score += titleWeight
		}
		for _, tag := range tags {
			if strings.Contains(tag, w) {
				score += tagWeight
				break
			}
		}
		if strings.Contains(content, w) {
			score += contentWeight
		}
	}
	return score
}
