package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tessera-ai/tessera-go/notebooks"
)

var (
	notebooksSearch string
	notebooksStatus string
	notebooksLimit  int
)

var notebooksCmd = &cobra.Command{
	Use:   "notebooks",
	Short: "Inspect notebooks",
}

var notebooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks",
	RunE:  runNotebooksList,
}

var notebooksGetCmd = &cobra.Command{
	Use:   "get <notebook-id>",
	Short: "Show a single notebook",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotebooksGet,
}

func init() {
	rootCmd.AddCommand(notebooksCmd)
	notebooksCmd.AddCommand(notebooksListCmd)
	notebooksCmd.AddCommand(notebooksGetCmd)

	notebooksListCmd.Flags().StringVar(&notebooksSearch, "search", "", "filter by title substring")
	notebooksListCmd.Flags().StringVar(&notebooksStatus, "status", "", "filter by status")
	notebooksListCmd.Flags().IntVar(&notebooksLimit, "limit", 20, "page size")
}

func runNotebooksList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	svc := notebooks.New(client)
	items, err := svc.ListAll(cmd.Context(), notebooks.ListParams{
		Limit:  notebooksLimit,
		Search: notebooksSearch,
		Status: notebooksStatus,
	})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notebooks found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tUPDATED")
	for _, nb := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", nb.ID, nb.Title, nb.Status, nb.UpdatedAt)
	}
	return w.Flush()
}

func runNotebooksGet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	svc := notebooks.New(client)
	nb, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", nb.ID)
	fmt.Fprintf(out, "Title:       %s\n", nb.Title)
	if nb.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", nb.Description)
	}
	if nb.Status != "" {
		fmt.Fprintf(out, "Status:      %s\n", nb.Status)
	}
	if nb.UpdatedAt != "" {
		fmt.Fprintf(out, "Updated:     %s\n", nb.UpdatedAt)
	}
	return nil
}
