package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

var historyColumns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Name", Width: 40},
	{Title: "Type", Width: 14},
	{Title: "Folder", Width: 8},
	{Title: "Saved", Width: 19},
}

func historyRow(h types.HistoryItem) table.Row {
	return table.Row{
		strconv.FormatInt(h.ID, 10),
		h.Label(),
		h.CalculationType,
		types.FormatID(h.FolderID),
		h.Timestamp.String(),
	}
}

func newSearchCmd(app *App) *cobra.Command {
	var (
		interactive bool
		height      int
	)
	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Find histories by name across every folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := app.folio.Drive().Mutations.Search(cmd.Context(), args[0])
			if err != nil {
				return app.failure(err)
			}
			rows := make([]table.Row, len(found))
			for i, h := range found {
				rows[i] = historyRow(h)
			}
			if interactive {
				return runTable(cmd, historyColumns, rows, height)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d histories\n", len(rows))
			printRows(out, rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the results in a table")
	cmd.Flags().IntVarP(&height, "height", "H", 10, "table height")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show HISTORY-ID",
		Short: "Print one history with its input and result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid history id %q", args[0])
			}
			h, err := app.folio.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", h.Label())
			fmt.Fprintf(out, "type:   %s\n", h.CalculationType)
			fmt.Fprintf(out, "saved:  %s\n", h.Timestamp)
			fmt.Fprintf(out, "folder: %s\n", types.FormatID(h.FolderID))
			fmt.Fprintf(out, "input:  %s\n", h.Input)
			printResult(out, h.Output)
			return nil
		},
	}
}

// printResult renders a stored output by its kind, or verbatim when it is
// not a tagged result
func printResult(w io.Writer, output string) {
	var res types.Result
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		fmt.Fprintf(w, "output: %s\n", output)
		return
	}
	switch res.Kind {
	case types.ResultText:
		fmt.Fprintf(w, "output: %s\n", res.Text)
	case types.ResultTable:
		fmt.Fprintln(w, "output:")
		rows := []table.Row{res.Table.Columns}
		for _, r := range res.Table.Rows {
			rows = append(rows, r)
		}
		printRows(w, rows)
	case types.ResultChart:
		title := res.Chart.Title
		if title == "" {
			title = "chart"
		}
		names := make([]string, len(res.Chart.Series))
		for i, s := range res.Chart.Series {
			names[i] = fmt.Sprintf("%s (%d points)", s.Name, len(s.X))
		}
		fmt.Fprintf(w, "output: %s: %s\n", title, strings.Join(names, ", "))
	}
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Copy every folder and history into DIR as JSON files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.CopyFS(args[0], app.folio.AsFS(cmd.Context())); err != nil {
				return fmt.Errorf("failed to export drive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported drive to %s\n", args[0])
			return nil
		},
	}
}
