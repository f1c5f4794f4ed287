// Package nlp provides the pure text-analysis layer: vocabulary
// normalization, calendar-phrase extraction and monetary-amount extraction.
// Everything in this package is deterministic and side-effect free.
package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lexicon maps folded Brazilian-Portuguese vocabulary to the canonical
// English lexicon the downstream heuristics and the fallback date parser are
// tuned against. Matching is whole-word over folded text.
var lexicon = map[string]string{
	// relative days
	"hoje":   "today",
	"amanha": "tomorrow",
	"ontem":  "yesterday",

	// weekdays
	"segunda": "monday",
	"terca":   "tuesday",
	"quarta":  "wednesday",
	"quinta":  "thursday",
	"sexta":   "friday",
	"sabado":  "saturday",
	"domingo": "sunday",

	// time of day
	"manha": "morning",
	"tarde": "afternoon",
	"noite": "evening",

	// prepositions that matter for clock phrases
	"as": "at",

	// task vocabulary
	"reuniao":     "meeting",
	"consulta":    "appointment",
	"compromisso": "appointment",
	"encontro":    "meeting",
	"lembrar":     "remind",
	"lembra":      "remind",
	"lembrete":    "reminder",
	"marcar":      "schedule",
	"agendar":     "schedule",
	"prazo":       "deadline",
	"entregar":    "deliver",

	// financial vocabulary
	"gastei":   "spent",
	"gastar":   "spend",
	"comprei":  "bought",
	"comprar":  "buy",
	"paguei":   "paid",
	"pagar":    "pay",
	"custou":   "cost",
	"recebi":   "received",
	"receber":  "receive",
	"ganhei":   "earned",
	"ganhar":   "earn",
	"vendi":    "sold",
	"vender":   "sell",
	"salario":  "salary",
	"dinheiro": "money",
	"conta":    "bill",
	"aluguel":  "rent",
}

var (
	foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:-[\p{L}\p{N}]+)*`)

	// 14h, 14h30, 9hs, 8horas -> 14:00, 14:30, 9:00, 8:00
	clockSuffixRe = regexp.MustCompile(`(?i)\b(\d{1,2})h(?:s|rs|oras)?(\d{2})?\b`)
)

// Fold lowercases the text and strips diacritics, so that "Reunião" and
// "reuniao" compare equal.
func Fold(text string) string {
	folded, _, err := transform.String(foldTransform, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// RewriteClockTimes rewrites clock suffixes ("14h", "14h30", "8horas") into
// colon form ("14:00", "14:30", "8:00"), leaving everything else untouched.
func RewriteClockTimes(text string) string {
	return clockSuffixRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := clockSuffixRe.FindStringSubmatch(m)
		hour, minute := parts[1], parts[2]
		if minute == "" {
			minute = "00"
		}
		return hour + ":" + minute
	})
}

// Normalize maps domain vocabulary in the input language onto the canonical
// lexicon and rewrites clock suffixes ("14h30") into colon form ("14:30").
// The result is folded. Unknown words pass through untouched.
func Normalize(text string) string {
	folded := RewriteClockTimes(Fold(text))

	return wordRe.ReplaceAllStringFunc(folded, func(word string) string {
		// Compound weekday names: "segunda-feira" -> "segunda".
		if base, ok := strings.CutSuffix(word, "-feira"); ok {
			word = base
		}
		if canonical, ok := lexicon[word]; ok {
			return canonical
		}
		return word
	})
}
