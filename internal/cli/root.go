package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/Project-Sylos/Folio/internal/config"
	"github.com/Project-Sylos/Folio/internal/logging"
	"github.com/Project-Sylos/Folio/sdk"
	"github.com/spf13/cobra"
)

// App carries the global flags and the handle built from them
type App struct {
	ConfigPath string
	Debug      bool

	folio *sdk.Folio
}

// NewRootCmd builds the folio command tree
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Browse and organise calculation history from the terminal",
		Long: `Folio browses the folder tree of a calculation history service,
moves items between folders, and reports storage usage.`,
		SilenceUsage: true,
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if err := logging.Setup(cfg.Log, app.Debug); err != nil {
			return err
		}
		app.folio = sdk.NewWithConfig(cfg)
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.folio == nil {
			return nil
		}
		return app.folio.Close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "path to config.json (defaults plus FOLIO_* environment variables when empty)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newLsCmd(app),
		newMkdirCmd(app),
		newMvCmd(app),
		newRmCmd(app),
		newRenameCmd(app),
		newSearchCmd(app),
		newShowCmd(app),
		newExportCmd(app),
		newStorageCmd(app),
		newDefaultCmd(app),
		newWhoamiCmd(app),
	)
	return cmd
}

// Execute runs the folio command tree against os.Args
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// failure prefers the banner text, which carries the service's own message
func (a *App) failure(err error) error {
	if msg := a.folio.Drive().Banner.Message(); msg != "" {
		return errors.New(msg)
	}
	return err
}
