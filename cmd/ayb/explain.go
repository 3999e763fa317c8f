// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allyourbase/allyourbase/internal/issue"
)

func newExplainCommand(app *App, root *rootFlags) *cobra.Command {
	var style string
	explainCmd := &cobra.Command{
		Use:   "explain [topic]",
		Short: "Explain a finding and how to resolve it",
		Long:  "Explain a finding and how to resolve it.\n\nRun without a topic to list all topics.",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			topics := make([]string, 0, len(issue.Values()))
			for _, is := range issue.Values() {
				topics = append(topics, is.Topic())
			}
			return topics, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listTopics(app)
				return nil
			}
			return explainTopic(cmd, app, root, args[0], style)
		},
	}
	explainCmd.Flags().StringVar(&style, "style", "", "glamour style: dark, light, or notty (default from ui.color_scheme)")
	return explainCmd
}

func listTopics(app *App) {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Topics"))
	for _, is := range issue.Values() {
		fmt.Fprintf(app.stdout, "  %-26s %s\n", CmdStyle.Render(is.Topic()), SubtitleStyle.Render(is.Summary()))
	}
}

func explainTopic(cmd *cobra.Command, app *App, root *rootFlags, topic, style string) error {
	is, ok := issue.Lookup(strings.ToLower(topic))
	if !ok {
		return issue.NewErrorContext().
			WithOperation("explain").
			WithResource(topic).
			WithSuggestion("Run 'ayb explain' to list the available topics").
			Wrap(fmt.Errorf("unknown topic %q", topic)).
			BuildError()
	}

	if style == "" {
		cfg, _, _ := loadConfigWithFallback(cmd.Context(), app.Config, root.loadOptions())
		style = glamourStyle(cfg.UI.ColorScheme)
	}
	rendered, err := is.Render(style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(app.stdout, rendered)
	return err
}
