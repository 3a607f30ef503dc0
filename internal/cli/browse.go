package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Project-Sylos/Folio/internal/drive"
	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

func parseRef(kind, rawID string) (types.ItemRef, error) {
	return types.ParseItemRef(kind + ":" + rawID)
}

func printTrail(w io.Writer, crumbs []types.Breadcrumb) {
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	fmt.Fprintln(w, strings.Join(names, " / "))
}

func itemRow(item types.Item) table.Row {
	detail := ""
	switch {
	case item.Folder != nil:
		detail = fmt.Sprintf("%d items", item.Folder.ChildrenCount)
	case item.History != nil:
		detail = fmt.Sprintf("%dB", item.History.Size)
	}
	return table.Row{string(item.Type), strconv.FormatInt(item.ID, 10), item.Name, detail}
}

var itemColumns = []table.Column{
	{Title: "Type", Width: 8},
	{Title: "ID", Width: 6},
	{Title: "Name", Width: 40},
	{Title: "Detail", Width: 12},
}

func printRows(w io.Writer, rows []table.Row) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func newLsCmd(app *App) *cobra.Command {
	var (
		interactive bool
		height      int
	)
	cmd := &cobra.Command{
		Use:   "ls [FOLDER-ID...]",
		Short: "List a folder; each id descends one level from My Drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nav := app.folio.Drive().Navigator
			if err := nav.GoToRoot(ctx); err != nil {
				return app.failure(err)
			}
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid folder id %q", arg)
				}
				name := "#" + arg
				if item, ok := nav.Find(types.ItemRef{Type: types.ItemTypeFolder, ID: id}); ok {
					name = item.Name
				}
				if err := nav.EnterFolder(ctx, &id, name); err != nil {
					return app.failure(err)
				}
			}

			items := nav.Items()
			rows := make([]table.Row, len(items))
			for i, item := range items {
				rows[i] = itemRow(item)
			}
			if interactive {
				return runTable(cmd, itemColumns, rows, height)
			}
			out := cmd.OutOrStdout()
			printTrail(out, nav.Breadcrumbs())
			if len(rows) == 0 {
				fmt.Fprintln(out, "(empty)")
				return nil
			}
			printRows(out, rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the listing in a table")
	cmd.Flags().IntVarP(&height, "height", "H", 10, "table height")
	return cmd
}

func newMkdirCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := types.ParseID(parent)
			if err != nil {
				return err
			}
			folder, err := app.folio.Drive().Mutations.CreateFolder(cmd.Context(), args[0], parentID)
			if errors.Is(err, drive.ErrEmptyName) {
				return fmt.Errorf("folder name must not be empty")
			}
			if err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (id %d)\n", folder.Name, folder.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "root", "parent folder id")
	return cmd
}

// newMvCmd runs the move through the drag engine as a drop onto a folder
// row or onto the root breadcrumb, the same path a pointer drag takes
func newMvCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv TYPE:ID TARGET",
		Short: "Move a folder or history into TARGET (a folder id or root)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := types.ParseItemRef(args[0])
			if err != nil {
				return err
			}
			target, err := types.ParseID(args[1])
			if err != nil {
				return err
			}
			dropOn := drive.BreadcrumbDroppableID(nil)
			if target != nil {
				dropOn = drive.FolderDroppableID(*target)
			}

			engine := app.folio.Drive().Engine
			if err := engine.OnDragStart(src); err != nil {
				return err
			}
			err = engine.HandleDrop(cmd.Context(), drive.DropResult{
				DragUpdate: drive.DragUpdate{
					DraggableID: src.String(),
					Source:      drive.DragLocation{DroppableID: drive.ListDroppableID},
					Combine:     &drive.Combine{DraggableID: dropOn, DroppableID: drive.ListDroppableID},
				},
				Reason: drive.ReasonDrop,
			})
			if errors.Is(err, drive.ErrSelfNesting) {
				return fmt.Errorf("cannot move %s into itself", src)
			}
			if err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", src, types.FormatID(target))
			return nil
		},
	}
}

// promptConfirmer asks on out and approves only an explicit y
func promptConfirmer(in io.Reader, out io.Writer) drive.Confirmer {
	return drive.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, _ := bufio.NewReader(in).ReadString('\n')
		answer := strings.TrimSpace(line)
		return answer == "y" || answer == "Y"
	})
}

func newRmCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm TYPE ID",
		Short: "Delete a folder with everything below it, or a history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			confirm := promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = drive.Confirmed
			}

			m := app.folio.Drive().Mutations
			if ref.Type == types.ItemTypeFolder {
				err = m.DeleteFolder(cmd.Context(), ref.ID, confirm)
			} else {
				err = m.DeleteHistory(cmd.Context(), ref.ID, confirm)
			}
			if errors.Is(err, drive.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "Delete operation cancelled.")
				return nil
			}
			if err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", ref)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without confirmation")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename TYPE ID NAME",
		Short: "Rename a folder or history",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			err = app.folio.Drive().Mutations.Rename(cmd.Context(), ref, args[2])
			if errors.Is(err, drive.ErrEmptyName) {
				return fmt.Errorf("name must not be empty")
			}
			if err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", ref, strings.TrimSpace(args[2]))
			return nil
		},
	}
}
