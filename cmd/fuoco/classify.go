package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fuoco/internal/intent"
	"fuoco/internal/nlp"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Classify a message without executing it",
	Long: `Classify runs the deterministic intent classifier over a message and
prints the resolved intent along with the signals that drove the decision.
Nothing is persisted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		resolved, signals := intent.Resolve(text, time.Now())

		fmt.Printf("intent: %s\n", resolved)
		fmt.Printf("signals:\n")
		fmt.Printf("  expense amount:  %v\n", signals.HasExpense)
		fmt.Printf("  date:            %v\n", signals.HasDate)
		fmt.Printf("  financial terms: %v\n", signals.StrongFinancial)
		fmt.Printf("  task terms:      %v\n", signals.StrongTask)
		fmt.Printf("  ambiguous place: %v\n", signals.Ambiguous)
		fmt.Printf("  time indicator:  %v\n", signals.HasTimeIndicator)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <message>",
	Short: "Show what the extractors would pull from a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		now := time.Now()

		if expense, ok := nlp.ExtractExpense(text); ok {
			fmt.Printf("expense: %s %s (%s)\n", expense.Amount, expense.Title, expense.Direction)
		} else {
			fmt.Println("expense: none")
		}

		if parsed, ok := nlp.ExtractDate(text, now); ok {
			fmt.Printf("date:    %s (matched %q)\n", parsed.Time.Format(time.RFC3339), parsed.Span)
		} else {
			fmt.Println("date:    none")
		}

		fmt.Printf("folded:  %s\n", nlp.Normalize(text))
		return nil
	},
}
