// Package assistant wires the message-handling cycle together: a message is
// classified, and either becomes a structured record (expense or task) via
// the record-creation collaborators, or falls through to a retrieval-
// augmented generation request against the local model.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fuoco/internal/intent"
	"fuoco/internal/logging"
	"fuoco/internal/model"
	"fuoco/internal/model/runtime"
	"fuoco/internal/nlp"
	"fuoco/internal/pacer"
	"fuoco/internal/rag"
	"fuoco/internal/session"
	"fuoco/internal/store"
)

// RecordCreator is the persistence collaborator for structured records.
type RecordCreator interface {
	CreateExpenseRecord(ctx context.Context, title string, amount decimal.Decimal, direction, userID, date, timeOfDay string) (string, error)
	CreateTaskRecord(ctx context.Context, title, content, isoDatetime, userID string) (string, error)
}

// Generation holds the default generation parameters for fallback requests.
type Generation struct {
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// Assistant orchestrates one conversation.
type Assistant struct {
	builder *rag.ContextBuilder
	records RecordCreator
	models  *model.Manager
	rt      runtime.Runtime
	pace    *pacer.Pacer
	persona rag.Persona
	gen     Generation

	mu   sync.Mutex
	sess *session.Session // created lazily on the first generative request
}

// New creates an assistant.
func New(builder *rag.ContextBuilder, records RecordCreator, models *model.Manager, rt runtime.Runtime, pace *pacer.Pacer, persona rag.Persona, gen Generation) *Assistant {
	return &Assistant{
		builder: builder,
		records: records,
		models:  models,
		rt:      rt,
		pace:    pace,
		persona: persona,
		gen:     gen,
	}
}

// Outcome is the settled result of handling one message.
type Outcome struct {
	Intent    intent.Intent
	RecordID  string // set for expense/task outcomes
	Reply     string // final generated text for unknown outcomes
	Cancelled bool
}

// Callbacks observe a generative turn. All fields are optional.
type Callbacks struct {
	// OnToken receives raw token chunks as generation produces them.
	OnToken func(token string)
	// OnProgress receives model download progress in percent.
	OnProgress func(pct float64)
	// OnReveal receives the paced revealed prefix.
	OnReveal func(revealed string)
	// OnRevealDone fires once the reveal completed and the assistant turn
	// was appended to history.
	OnRevealDone func(final string)
}

// HandleMessage runs the full cycle for one user message.
func (a *Assistant) HandleMessage(ctx context.Context, userID, text string, cb Callbacks) (Outcome, error) {
	now := time.Now()
	msgIntent, signals := intent.Resolve(text, now)
	logging.Classifier("%q -> %s %+v", text, msgIntent, signals)

	switch msgIntent {
	case intent.IntentExpense:
		return a.handleExpense(ctx, userID, text, now)
	case intent.IntentTask:
		return a.handleTask(ctx, userID, text, now)
	default:
		return a.handleGenerative(ctx, text, cb)
	}
}

func (a *Assistant) handleExpense(ctx context.Context, userID, text string, now time.Time) (Outcome, error) {
	expense, ok := nlp.ExtractExpense(text)
	if !ok {
		// The classifier saw financial signals but no parseable amount;
		// degrade silently to the generative fallback.
		return a.handleGenerative(ctx, text, Callbacks{})
	}

	date := now.Format("2006-01-02")
	timeOfDay := ""
	if parsed, found := nlp.ExtractDate(text, now); found {
		date = parsed.Time.Format("2006-01-02")
		timeOfDay = parsed.Time.Format("15:04")
	}

	id, err := a.records.CreateExpenseRecord(ctx, expense.Title, expense.Amount, expense.Direction.String(), userID, date, timeOfDay)
	if err != nil {
		return Outcome{Intent: intent.IntentExpense}, fmt.Errorf("create expense: %w", err)
	}
	return Outcome{Intent: intent.IntentExpense, RecordID: id}, nil
}

func (a *Assistant) handleTask(ctx context.Context, userID, text string, now time.Time) (Outcome, error) {
	title := text
	iso := ""
	if parsed, found := nlp.ExtractDate(text, now); found {
		iso = parsed.Time.Format(time.RFC3339)
		title = taskTitle(text, parsed.Span)
	}

	id, err := a.records.CreateTaskRecord(ctx, title, text, iso, userID)
	if err != nil {
		return Outcome{Intent: intent.IntentTask}, fmt.Errorf("create task: %w", err)
	}
	return Outcome{Intent: intent.IntentTask, RecordID: id}, nil
}

// handleGenerative runs the retrieval-augmented fallback. The prompt is
// assembled before the user turn is appended, so the query appears in the
// prompt exactly once (as the trailing line, not also inside the
// conversation block). The turn is still persisted before the model call,
// so a generation failure keeps the user's message but appends no
// assistant turn.
func (a *Assistant) handleGenerative(ctx context.Context, text string, cb Callbacks) (Outcome, error) {
	prompt, err := a.builder.BuildPrompt(ctx, text, a.persona, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("build prompt: %w", err)
	}

	if err := a.builder.AppendHistory(ctx, store.RoleUser, text); err != nil {
		return Outcome{}, fmt.Errorf("append history: %w", err)
	}

	sess, err := a.ensureSession(ctx, cb.OnProgress)
	if err != nil {
		return Outcome{}, err
	}

	result, err := sess.Complete(ctx, runtime.GenerationRequest{
		Prompt:        prompt,
		MaxTokens:     a.gen.MaxTokens,
		Temperature:   a.gen.Temperature,
		StopSequences: a.gen.StopSequences,
	}, cb.OnToken)
	if err != nil {
		return Outcome{}, err
	}
	if result.Cancelled {
		return Outcome{Cancelled: true, Reply: result.Text}, nil
	}

	onDone := func(revealed string) {
		appendCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.builder.AppendHistory(appendCtx, store.RoleAssistant, revealed); err != nil {
			logging.Get(logging.CategorySession).Error("append assistant turn: %v", err)
		}
		if cb.OnRevealDone != nil {
			cb.OnRevealDone(revealed)
		}
	}
	if err := a.pace.Start(result.Text, cb.OnReveal, onDone); err != nil {
		// Nothing to reveal; still record the assistant turn.
		onDone(result.Text)
	}

	return Outcome{Reply: result.Text}, nil
}

// ensureSession lazily obtains a verified model handle and builds the
// session for it, exactly once per assistant.
func (a *Assistant) ensureSession(ctx context.Context, onProgress func(pct float64)) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess != nil {
		return a.sess, nil
	}

	handle, err := a.models.Ensure(ctx, onProgress)
	if err != nil {
		return nil, fmt.Errorf("ensure model: %w", err)
	}
	a.sess = session.New(handle, a.rt)
	return a.sess, nil
}

// ClearReveal stops any reveal in progress, e.g. when the user leaves the
// conversation.
func (a *Assistant) ClearReveal() {
	a.pace.Clear()
}

// taskTitle strips the matched date span from the text to form a title.
// The span may come from normalized text, so removal is attempted on the
// folded form; when it cannot be located the full text stays as the title.
func taskTitle(text, span string) string {
	title := text
	if span != "" {
		folded := nlp.Fold(text)
		if len(folded) == len(text) {
			if idx := strings.Index(folded, nlp.Fold(span)); idx >= 0 {
				title = text[:idx] + text[idx+len(span):]
			}
		}
	}
	title = strings.Join(strings.Fields(title), " ")
	title = strings.Trim(title, " .,;:-")
	if title == "" {
		return text
	}
	return title
}
