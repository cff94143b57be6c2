package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
	"github.com/five82/tmplplay/internal/share"
)

func newShareCmd(opts *app.Options) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print a share link for the buffers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(*opts)
			if err != nil {
				return err
			}
			defer env.Close()

			structSrc, tmplSrc, err := env.Sources(*opts)
			if err != nil {
				return err
			}
			if base == "" {
				base = env.Config.ShareBase
			}
			link, err := share.Link(base, structSrc, tmplSrc)
			if err != nil {
				return fmt.Errorf("share: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "link base URL (default: share_base from config)")
	return cmd
}
