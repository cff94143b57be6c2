package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
	"github.com/five82/tmplplay/internal/prefs"
)

func newThemesCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "themes [filter]",
		Short: "List the available themes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(*opts)
			if err != nil {
				return err
			}
			defer env.Close()

			current := env.Theme(prefs.Read(env.Store)).ID
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range env.Catalog.Filter(query) {
				mark := " "
				if t.ID == current {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, t.ID, t.Name)
			}
			return tw.Flush()
		},
	}
}
