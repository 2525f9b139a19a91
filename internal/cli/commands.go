package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/finder/internal/finder"
)

func healthCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is reachable",
		Args:  cobra.NoArgs,
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			health, err := client.CheckHealth(cmd.Context())
			if err != nil {
				return fmt.Errorf("check health: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), health)
			}
			printHealth(cmd.OutOrStdout(), health)
			return nil
		}),
	}
}

func uploadCommand(g *globals) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a video for the service to scan",
		Long:  fmt.Sprintf("Upload a video file (up to %s) so the service can locate tracked objects in it.", humanize.IBytes(uint64(finder.MaxVideoSize))),
		Args:  cobra.ExactArgs(1),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			file, err := finder.OpenVideoFile(args[0])
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			defer file.Close()

			if !quiet && !g.json {
				file.Progress = newProgressPrinter(cmd.ErrOrStderr(), file.Name)
			}

			result, err := client.UploadVideo(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printUpload(cmd.OutOrStdout(), result)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print upload progress")
	return cmd
}

func statusCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status VIDEO_NO",
		Short: "Show processing status for an uploaded video",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			status, err := client.GetUploadStatus(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get upload status: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		}),
	}
}

func teachCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "teach NAME DESCRIPTION",
		Short: "Teach the service a new object to track",
		Example: `  finder teach keys "car keys with a blue keychain"
  finder teach wallet "brown leather wallet"`,
		Args: cobra.ExactArgs(2),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			obj, err := client.TeachObject(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("teach %q: %w", args[0], err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), obj)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now tracking %s (id %s)\n", obj.Name, obj.ID)
			return nil
		}),
	}
}

func listCommand(g *globals) *cobra.Command {
	var filter finder.ObjectFilter
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked objects",
		Args:    cobra.NoArgs,
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			objects, err := client.FindTrackedObjects(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list objects: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), objects)
			}
			if len(objects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tracked objects.")
				return nil
			}
			printObjects(cmd.OutOrStdout(), objects)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 0, fmt.Sprintf("Maximum number of objects (1-%d)", finder.MaxListLimit))
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Only objects whose name or description matches")
	return cmd
}

func showCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one tracked object",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			obj, err := client.GetTrackedObject(cmd.Context(), finder.ObjectID(args[0]))
			if err != nil {
				return fmt.Errorf("show object %s: %w", args[0], err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), obj)
			}
			printObject(cmd.OutOrStdout(), obj)
			return nil
		}),
	}
}

func deleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Stop tracking an object",
		Args:    cobra.ExactArgs(1),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			conf, err := client.DeleteTrackedObject(cmd.Context(), finder.ObjectID(args[0]))
			if err != nil {
				return fmt.Errorf("delete object %s: %w", args[0], err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), conf)
			}
			msg := strings.TrimSpace(conf.Message)
			if msg == "" {
				msg = "Deleted object " + args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
}

func searchCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "search QUERY...",
		Aliases: []string{"where"},
		Short:   "Ask where an object is",
		Example: `  finder search where are my keys
  finder where wallet`,
		Args: cobra.MinimumNArgs(1),
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			query := strings.Join(args, " ")
			result, err := client.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if g.json {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printSearch(cmd.OutOrStdout(), result)
			}
			// A failed call reads as "not found" on screen but still fails the
			// process so scripts can tell the two apart.
			if result.Failure != nil {
				return fmt.Errorf("search: %w", result.Failure)
			}
			return nil
		}),
	}
}

func historyCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recently located objects",
		Args:  cobra.NoArgs,
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			history, err := client.GetSearchHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("get search history: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), history)
			}
			printHistory(cmd.OutOrStdout(), history)
			return nil
		}),
	}
}

func suggestionsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "suggestions",
		Short: "Print example queries",
		Args:  cobra.NoArgs,
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			suggestions, err := client.GetSearchSuggestions(cmd.Context())
			if err != nil {
				return fmt.Errorf("get suggestions: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), suggestions)
			}
			for _, s := range suggestions {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		}),
	}
}

func commonCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "common",
		Short: "Print quick-add templates for common objects",
		Args:  cobra.NoArgs,
		RunE: withClient(g, func(cmd *cobra.Command, client finder.Service, args []string) error {
			common, err := client.GetCommonObjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("get common objects: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), common)
			}
			for _, tpl := range common {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", tpl.Name, tpl.Alias)
			}
			return nil
		}),
	}
}
