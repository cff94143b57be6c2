package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
	"github.com/five82/tmplplay/internal/config"
	"github.com/five82/tmplplay/internal/logtail"
)

func newLogCmd(opts *app.Options) *cobra.Command {
	var (
		lines  int
		filter logtail.Filter
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the end of the debug log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			entries, err := logtail.Read(cfg.Log.File, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintln(out, logtail.Colorize(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 40, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&filter.Cat, "cat", "", "only show one category (app, session, debounce, highlight, store, ui, watch)")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "minimum level (debug, info, warn, error)")
	return cmd
}
