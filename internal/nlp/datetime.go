package nlp

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/br"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"fuoco/internal/logging"
)

// ParsedDate is a calendar phrase resolved to an absolute instant together
// with the span of text that produced it. Time is always valid and Span is
// never empty when a ParsedDate is returned.
type ParsedDate struct {
	Time time.Time
	Span string
}

var (
	primaryParser  = newParser(br.All)
	fallbackParser = newParser(en.All)
)

func newParser(rs []rules.Rule) *when.Parser {
	w := when.New(nil)
	w.Add(rs...)
	w.Add(common.All...)
	return w
}

// ExtractDate finds the first calendar phrase in text and resolves it
// relative to now. The primary pass runs the Portuguese rules; clock
// suffixes are rewritten to colon form first, since the Portuguese rule set
// resolves "14:00" but not "14h", and a day-word match alone would drop the
// clock component. When the primary pass yields nothing, the text is
// normalized to the canonical lexicon and re-parsed with the
// general-purpose English rules.
func ExtractDate(text string, now time.Time) (ParsedDate, bool) {
	text = RewriteClockTimes(text)

	if r, err := primaryParser.Parse(text, now); err == nil && r != nil && r.Text != "" {
		logging.NLPDebug("date: primary rules matched %q", r.Text)
		return ParsedDate{Time: r.Time, Span: r.Text}, true
	}

	normalized := Normalize(text)
	if r, err := fallbackParser.Parse(normalized, now); err == nil && r != nil && r.Text != "" {
		logging.NLPDebug("date: fallback rules matched %q in %q", r.Text, normalized)
		return ParsedDate{Time: r.Time, Span: r.Text}, true
	}

	return ParsedDate{}, false
}
