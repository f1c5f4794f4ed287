package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the personal knowledge base",
}

var (
	docTitle    string
	docCategory string
	docTags     []string
)

var docsAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a document to the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		content := strings.Join(args, " ")
		id, err := a.builder.AddDocument(cmd.Context(), docTitle, content, docCategory, docTags)
		if err != nil {
			return err
		}
		fmt.Printf("added document %s\n", id)
		return nil
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.builder.ListDocuments(cmd.Context())
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("no documents stored (defaults are seeded on first chat)")
			return nil
		}
		for _, doc := range docs {
			title := doc.Metadata.Title
			if title == "" {
				title = doc.ID
			}
			fmt.Printf("%-36s  %-24s  %s\n", doc.ID, title, strings.Join(doc.Metadata.Tags, ","))
		}
		return nil
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List created expense and task records",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.store.ListRecords(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no records yet")
			return nil
		}
		for _, r := range records {
			switch r.Kind {
			case "expense":
				fmt.Printf("%s  expense  %-28s  %s %s  %s\n", r.ID[:8], r.Title, r.Amount, r.Direction, r.DueAt)
			default:
				fmt.Printf("%s  task     %-28s  %s\n", r.ID[:8], r.Title, r.DueAt)
			}
		}
		return nil
	},
}

func init() {
	docsAddCmd.Flags().StringVarP(&docTitle, "title", "t", "", "document title")
	docsAddCmd.Flags().StringVar(&docCategory, "category", "geral", "document category")
	docsAddCmd.Flags().StringSliceVar(&docTags, "tags", nil, "comma-separated tags")

	docsCmd.AddCommand(docsAddCmd)
	docsCmd.AddCommand(docsListCmd)
}
