package nlp

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the direction of a money flow.
type Direction int

const (
	DirectionLoss Direction = iota
	DirectionGain
)

// String returns the canonical lowercase name of the direction.
func (d Direction) String() string {
	if d == DirectionGain {
		return "gain"
	}
	return "loss"
}

// ParsedExpense is a monetary movement extracted from free text.
// Amount is always strictly positive; extraction fails (returns false)
// rather than producing a zero-amount record.
type ParsedExpense struct {
	Title     string
	Amount    decimal.Decimal
	Direction Direction
}

var (
	numeralRe = regexp.MustCompile(`^\d{1,9}(?:[.,]\d{1,2})?$`)

	// Glued currency forms the token scan misses: "R$50", "r$ 12,90", "$7".
	currencyAmountRe = regexp.MustCompile(`(?i)r?\$\s*(\d{1,9}(?:[.,]\d{1,2})?)`)

	// No trailing boundary after the symbol form: "$" is not a word char.
	currencyWordRe = regexp.MustCompile(`(?i)\b(?:reais|real)\b|(?i)r?\$`)
)

// Direction lexicons over normalized (canonical) tokens. Nouns are checked
// before the verb heuristic so "salary 3000" classifies as gain even
// without a verb.
var (
	gainNouns = tokenSet("salary", "income", "bonus", "refund", "renda", "premio", "reembolso")
	lossNouns = tokenSet("bill", "rent", "fine", "boleto", "fatura", "multa", "parcela")
	gainVerbs = tokenSet("received", "receive", "earned", "earn", "sold", "sell")
	lossVerbs = tokenSet("spent", "spend", "bought", "buy", "paid", "pay", "cost")
)

func tokenSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// ExtractExpense pulls a positive monetary amount and a flow direction out
// of free text. Numeral tokens are tried first, then currency-glued
// patterns. Absence of a positive amount is a hard failure.
func ExtractExpense(text string) (ParsedExpense, bool) {
	normalized := Normalize(text)

	amount, amountSpan, ok := findAmount(normalized)
	if !ok || !amount.IsPositive() {
		return ParsedExpense{}, false
	}

	return ParsedExpense{
		Title:     expenseTitle(text, amountSpan),
		Amount:    amount,
		Direction: classifyDirection(normalized),
	}, true
}

// findAmount returns the first positive amount in the text along with the
// matched span.
func findAmount(normalized string) (decimal.Decimal, string, bool) {
	for _, token := range strings.Fields(normalized) {
		if !numeralRe.MatchString(token) {
			continue
		}
		if d, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ".")); err == nil && d.IsPositive() {
			return d, token, true
		}
	}

	if m := currencyAmountRe.FindStringSubmatch(normalized); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ".")); err == nil && d.IsPositive() {
			return d, m[0], true
		}
	}

	return decimal.Zero, "", false
}

// classifyDirection resolves the flow direction: noun lexicon first, then
// the verb heuristic, defaulting to loss when nothing matches.
func classifyDirection(normalized string) Direction {
	tokens := strings.Fields(normalized)

	for _, t := range tokens {
		if _, ok := gainNouns[t]; ok {
			return DirectionGain
		}
		if _, ok := lossNouns[t]; ok {
			return DirectionLoss
		}
	}
	for _, t := range tokens {
		if _, ok := gainVerbs[t]; ok {
			return DirectionGain
		}
		if _, ok := lossVerbs[t]; ok {
			return DirectionLoss
		}
	}
	return DirectionLoss
}

// expenseTitle strips the amount span and currency words from the original
// text, leaving a human-readable label.
func expenseTitle(text, amountSpan string) string {
	title := text
	if amountSpan != "" {
		// The span came from normalized text; remove the matching raw token too.
		for _, candidate := range []string{amountSpan, strings.ReplaceAll(amountSpan, ".", ",")} {
			title = strings.Replace(title, candidate, "", 1)
		}
	}
	title = currencyWordRe.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")
	title = strings.Trim(title, " .,;:-")
	if title == "" {
		return "movimentação"
	}
	return title
}
