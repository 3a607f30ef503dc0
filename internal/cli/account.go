package cli

import (
	"fmt"
	"strconv"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/spf13/cobra"
)

func newStorageCmd(app *App) *cobra.Command {
	var recalculate bool
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Show storage usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage := app.folio.Drive().Storage
			load := storage.Load
			if recalculate {
				load = storage.Recalculate
			}
			if err := load(cmd.Context()); err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.1f%%)\n", storage.Display(), storage.Percent())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recalculate, "recalculate", "r", false, "recount usage from the stored histories first")
	return cmd
}

func newDefaultCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "default [FOLDER-ID]",
		Short: "Show or set the folder new results are saved into",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := app.folio.Drive().Mutations
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid folder id %q", args[0])
				}
				if err := m.SetDefaultFolder(cmd.Context(), id); err != nil {
					return app.failure(err)
				}
			}
			def, err := m.DefaultFolder(cmd.Context())
			if err != nil {
				return app.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default folder: %s (%s)\n", def.Path, types.FormatID(def.DefaultFolderID))
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.folio.Whoami(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Username, user.Email)
			if user.IsAdmin {
				fmt.Fprintln(out, "role: admin")
			}
			if user.SubscriptionEnd != nil {
				fmt.Fprintf(out, "subscription ends: %s\n", user.SubscriptionEnd.Format("2006-01-02"))
			}
			return nil
		},
	}
}
