package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
	"github.com/five82/tmplplay/internal/compiler"
	"github.com/five82/tmplplay/internal/export"
	"github.com/five82/tmplplay/internal/prefs"
)

func newExportCmd(opts *app.Options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the highlighted buffers as an HTML page",
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
			src := export.Sources{
				Struct:   structSrc,
				Template: tmplSrc,
				Code:     compiler.Compile(structSrc, tmplSrc),
			}
			th := env.Theme(prefs.Read(env.Store))
			if opts.Theme != "" {
				th = env.Theme(prefs.State{prefs.ThemeKey: opts.Theme})
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create export: %w", err)
				}
				defer f.Close()
				w = f
			}
			return export.Write(w, env.Renderer, th, src)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}
