package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
	"github.com/five82/tmplplay/internal/compiler"
)

// errDiagnostics makes compile exit non-zero after printing diagnostics.
var errDiagnostics = errors.New("compilation failed")

func newCompileCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Print the generated Render method",
		Long: `Compile the persisted buffers, or those given by --saved, --struct-file and
--template-file, and print the generated Go code. Diagnostics go to
stderr and the command exits non-zero.`,
		Args: cobra.NoArgs,
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
			code, err := compiler.Generate(structSrc, tmplSrc)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), compiler.Diagnostic(err))
				return errDiagnostics
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(code, "\n"))
			return err
		},
	}
}
