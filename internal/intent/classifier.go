// Package intent decides what a chat message is asking for: registering an
// expense, scheduling a task, or neither (which falls through to the
// generative model). The decision is a fixed precedence over extractor
// presence and four independent keyword signals, so identical input always
// yields the identical intent.
package intent

import (
	"regexp"
	"strings"
	"time"

	"fuoco/internal/logging"
	"fuoco/internal/nlp"
)

// Intent is the classifier's output category. Exactly one per input.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentExpense
	IntentTask
)

// String returns the canonical lowercase name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentExpense:
		return "expense"
	case IntentTask:
		return "task"
	default:
		return "unknown"
	}
}

// Signals is the full detector breakdown behind a classification. Exposed
// so callers (and the CLI) can show why a message classified the way it did.
type Signals struct {
	HasExpense       bool
	HasDate          bool
	StrongFinancial  bool
	StrongTask       bool
	Ambiguous        bool
	HasTimeIndicator bool
}

// Detector lexicons, matched whole-word against normalized text. The
// normalizer maps Portuguese vocabulary onto the canonical entries, and the
// lexicons additionally carry terms the normalizer leaves untouched.
var (
	financialVerbs = wordSet(
		"spent", "spend", "bought", "buy", "paid", "pay", "cost",
		"received", "receive", "earned", "earn", "sold", "sell",
	)
	financialNouns = wordSet(
		"reais", "real", "money", "salary", "bill", "rent", "income",
		"pix", "boleto", "fatura", "parcela", "cartao",
	)
	taskWords = wordSet(
		"meeting", "appointment", "remind", "reminder", "schedule",
		"deadline", "deliver", "dentista", "medico", "aula", "prova",
	)
	timeOfDayWords = wordSet("morning", "afternoon", "evening")
	weekdayWords   = wordSet(
		"monday", "tuesday", "wednesday", "thursday", "friday",
		"saturday", "sunday",
	)
	relativeDayWords = wordSet("today", "tomorrow")
	ambiguousPlaces  = wordSet(
		"mercado", "market", "farmacia", "pharmacy", "padaria",
		"feira", "shopping", "loja",
	)

	currencyTokenRe = regexp.MustCompile(`(?i)r?\$`)
	clockTimeRe     = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Classify resolves the intent of a message relative to the current clock.
func Classify(text string) Intent {
	return ClassifyAt(text, time.Now())
}

// ClassifyAt is Classify with an explicit reference time, for reproducible
// date extraction.
func ClassifyAt(text string, now time.Time) Intent {
	intent, signals := Resolve(text, now)
	logging.ClassifierDebug("%q -> %s %+v", text, intent, signals)
	return intent
}

// Resolve runs the extractors and detectors and applies the precedence
// order, returning both the intent and the signal breakdown.
func Resolve(text string, now time.Time) (Intent, Signals) {
	_, hasExpense := nlp.ExtractExpense(text)
	_, hasDate := nlp.ExtractDate(text, now)

	normalized := nlp.Normalize(text)
	s := Signals{
		HasExpense:       hasExpense,
		HasDate:          hasDate,
		StrongFinancial:  detectStrongFinancial(normalized),
		StrongTask:       detectStrongTask(normalized),
		Ambiguous:        detectAmbiguous(normalized),
		HasTimeIndicator: detectTimeIndicator(normalized),
	}
	return resolve(s), s
}

// resolve applies the precedence order; first match wins.
func resolve(s Signals) Intent {
	switch {
	case s.HasTimeIndicator && !s.StrongFinancial:
		return IntentTask

	case s.HasExpense && s.StrongFinancial && !s.StrongTask:
		return IntentExpense

	case s.HasDate && s.StrongTask && !s.StrongFinancial:
		return IntentTask

	case s.HasExpense && s.HasDate:
		if s.Ambiguous {
			if s.StrongFinancial {
				return IntentExpense
			}
			if s.StrongTask || s.HasTimeIndicator {
				return IntentTask
			}
		}
		if s.HasTimeIndicator && !s.StrongFinancial {
			return IntentTask
		}
		// Financial interpretation is the tie-break default.
		return IntentExpense

	case s.HasExpense:
		return IntentExpense

	case s.HasDate:
		return IntentTask

	default:
		return IntentUnknown
	}
}

func detectStrongFinancial(normalized string) bool {
	if currencyTokenRe.MatchString(normalized) {
		return true
	}
	return containsAny(normalized, financialVerbs, financialNouns)
}

func detectStrongTask(normalized string) bool {
	if clockTimeRe.MatchString(normalized) {
		return true
	}
	return containsAny(normalized, taskWords, timeOfDayWords, weekdayWords, relativeDayWords)
}

func detectAmbiguous(normalized string) bool {
	return containsAny(normalized, ambiguousPlaces)
}

// detectTimeIndicator is a strict subset of detectStrongTask's rules:
// explicit clock times and relative-day tokens only.
func detectTimeIndicator(normalized string) bool {
	if clockTimeRe.MatchString(normalized) {
		return true
	}
	return containsAny(normalized, relativeDayWords)
}

func containsAny(normalized string, sets ...map[string]struct{}) bool {
	for _, token := range strings.Fields(normalized) {
		token = strings.Trim(token, ".,;:!?")
		for _, set := range sets {
			if _, ok := set[token]; ok {
				return true
			}
		}
	}
	return false
}
