package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/finder/internal/app"
	"github.com/five82/finder/internal/config"
	"github.com/five82/finder/internal/finder"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	prefsPath  string
	apiURL     string
	poll       time.Duration
	json       bool
}

func (g *globals) appOptions() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		APIURL:     g.apiURL,
		PollEvery:  g.poll,
	}
}

// NewRootCommand builds the finder command tree. Without a subcommand the
// root command starts the terminal UI.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "finder",
		Short:         "Find where you left things",
		Long:          "finder talks to an object-finding service: teach it objects, upload videos for it to scan, and ask where things are.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), g.appOptions())
		},
	}

	setupFlags(rootCmd, g)

	rootCmd.AddCommand(
		healthCommand(g),
		uploadCommand(g),
		statusCommand(g),
		teachCommand(g),
		listCommand(g),
		showCommand(g),
		deleteCommand(g),
		searchCommand(g),
		historyCommand(g),
		suggestionsCommand(g),
		commonCommand(g),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, g *globals) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Path to config file (default ~/.config/finder/config.toml)")
	flags.StringVar(&g.prefsPath, "prefs", "", "Path to preferences file (default ~/.config/finder/prefs.toml)")
	flags.StringVar(&g.apiURL, "api-url", "", "Service base URL, overrides config and "+config.EnvAPIURL)
	flags.DurationVar(&g.poll, "poll", 0, "Background refresh interval for the UI (default from config)")
	flags.BoolVar(&g.json, "json", false, "Print raw JSON responses")
}

// runFunc is a subcommand body with a ready client.
type runFunc func(cmd *cobra.Command, client finder.Service, args []string) error

// withClient sets up config, logging and the client, then runs fn.
func withClient(g *globals, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(g.appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		env.Logger.Debug("cli command", "component", "cli", "command", cmd.Name())
		if err := fn(cmd, env.Client, args); err != nil {
			env.Logger.Warn("cli command failed", "component", "cli", "command", cmd.Name(), "error", err)
			return err
		}
		return nil
	}
}

// Execute runs the command tree with args and reports errors on stderr.
// It returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "finder: %v\n", err)
		return 1
	}
	return 0
}
