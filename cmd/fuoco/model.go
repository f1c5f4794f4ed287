package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the local model artifact",
}

var modelEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Download and verify the model artifact if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		lastPct := -1.0
		handle, err := a.manager.Ensure(cmd.Context(), func(pct float64) {
			// Print whole-percent steps only; the fetcher reports far more often.
			if pct-lastPct >= 1 || pct >= 100 {
				lastPct = pct
				fmt.Printf("\rdownloading... %3.0f%%", pct)
			}
		})
		if err != nil {
			fmt.Println()
			return err
		}
		if lastPct >= 0 {
			fmt.Println()
		}
		fmt.Printf("ready: %s version %s at %s (%d bytes)\n", handle.ID, handle.Version, handle.Path, handle.Size)
		return nil
	},
}

var modelStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the model lifecycle state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.manager.CurrentStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("model:   %s\n", st.ModelID)
		fmt.Printf("version: %s\n", st.Version)
		fmt.Printf("state:   %s\n", st.State)
		if st.Path != "" {
			fmt.Printf("path:    %s\n", st.Path)
			fmt.Printf("size:    %d bytes\n", st.Bytes)
		}
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelEnsureCmd)
	modelCmd.AddCommand(modelStatusCmd)
}
