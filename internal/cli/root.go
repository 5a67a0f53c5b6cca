// Package cli wires the wimitasks commands: the mock API server and the
// client commands that log in and work on tasks.
package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"wimitasks/internal/config"
	"wimitasks/internal/logging"
)

// App is shared by every command of one invocation.
type App struct {
	ConfigFile string
	LogLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "wimitasks",
		Short:        "Task lists over a REST API, with a mock API server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the mock API with sample data
  wimitasks serve

  # Log in and show your lists
  wimitasks login --email john.doe@example.com
  wimitasks board

  # Interactive dashboard
  wimitasks tui
`),
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "config file (default "+config.DefaultDir()+"/wimitasks.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "override log.level")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigFile)
		if err != nil {
			return err
		}
		if app.LogLevel != "" {
			cfg.Log.Level = app.LogLevel
		}
		app.cfg = cfg
		app.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
		slog.SetDefault(app.logger)
		return nil
	}

	cmd.AddCommand(
		newServeCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newBoardCmd(app),
		newShowCmd(app),
		newAddCmd(app),
		newToggleCmd(app),
		newEditCmd(app),
		newDeleteCmd(app),
		newTUICmd(app),
	)
	return cmd
}
